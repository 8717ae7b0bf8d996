// Package locator turns a stored resume reference into bytes that can be extracted.
//
// The direct URL is always tried first. A signed URL is requested only after a
// 401 or 403, and fetched exactly once.
package locator

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"jobmatch-backend/internal/shared/storage/object"
	"jobmatch-backend/internal/shared/telemetry"
)

const DefaultFetchTimeout = 10 * time.Second

// Reference is everything known about where a candidate's resume lives.
type Reference struct {
	// ProfileURL is the resume URL on the profile record.
	ProfileURL string
	// LegacyURL is the older user-level resume URL.
	LegacyURL string
	// StorageID is the blob-store object id, when the upload recorded one.
	StorageID string
}

// Empty reports whether no reference of any kind is present.
func (r Reference) Empty() bool {
	return strings.TrimSpace(r.ProfileURL) == "" &&
		strings.TrimSpace(r.LegacyURL) == "" &&
		strings.TrimSpace(r.StorageID) == ""
}

// Resolution is a successful lookup. URL is what was actually fetched (the
// signed URL on the fallback path). SourceURL is the reference URL that was
// chosen, or "object:<id>" when only a storage id was known; it stays stable
// across signed URLs and keys the text cache.
type Resolution struct {
	URL       string
	SourceURL string
	Reason    string
	Data      []byte
}

// Options tune a Resolver.
type Options struct {
	// Bucket lets object ids be derived from S3 URLs when no storage id is recorded.
	Bucket       string
	FetchTimeout time.Duration
	SignedURLTTL time.Duration
}

// Resolver runs the direct-then-signed fetch chain.
type Resolver struct {
	fetcher Fetcher
	signer  object.Signer
	opts    Options
}

// New builds a Resolver. signer may be nil, in which case 401/403 ends the chain.
func New(fetcher Fetcher, signer object.Signer, opts Options) *Resolver {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	opts.SignedURLTTL = object.ClampTTL(opts.SignedURLTTL)
	return &Resolver{fetcher: fetcher, signer: signer, opts: opts}
}

// Resolve fetches the resume behind ref.
//
// Errors: ErrNoResumeReference when ref is empty, *DirectFetchError for a
// direct failure other than 401/403, *NoResumeFoundError when the signed
// fallback could not run or failed.
func (r *Resolver) Resolve(ctx context.Context, ref Reference) (Resolution, error) {
	source := ChooseURL(ref)
	storageID := strings.TrimSpace(ref.StorageID)

	if source == "" {
		if storageID != "" {
			return r.signed(ctx, source, storageID, ReasonSignedNoDirect)
		}
		if ref.Empty() {
			return Resolution{}, ErrNoResumeReference
		}
		return Resolution{}, &NoResumeFoundError{Reason: ReasonNoAbsoluteURL}
	}

	data, err := r.fetch(ctx, source)
	if err == nil {
		return Resolution{URL: source, SourceURL: source, Reason: ReasonDirectOK, Data: data}, nil
	}

	var direct *DirectFetchError
	if !errors.As(err, &direct) || !direct.Unauthorized() {
		return Resolution{}, err
	}

	telemetry.Info("locator.direct.denied", map[string]any{"status": direct.Status})
	if storageID != "" {
		return r.signed(ctx, source, storageID, ReasonSignedAfter401)
	}
	key := ObjectIDFromURL(source, r.opts.Bucket)
	if key == "" {
		return Resolution{}, &NoResumeFoundError{Reason: ReasonNoObjectID, Err: err}
	}
	return r.signedKey(ctx, source, key, ReasonSignedAfter401)
}

// signedKey signs a key read from the stored URL. It already carries any
// bucket prefix, so a KeySigner signs it as is.
func (r *Resolver) signedKey(ctx context.Context, source, key, reason string) (Resolution, error) {
	ks, ok := r.signer.(object.KeySigner)
	if !ok {
		return r.signed(ctx, source, key, reason)
	}
	signedURL, err := ks.SignKey(ctx, key, r.opts.SignedURLTTL)
	if err != nil {
		return Resolution{}, &NoResumeFoundError{Reason: ReasonSignedURLFailed, Err: err}
	}
	return r.fetchSigned(ctx, source, key, signedURL, reason)
}

func (r *Resolver) signed(ctx context.Context, source, objectID, reason string) (Resolution, error) {
	if r.signer == nil {
		return Resolution{}, &NoResumeFoundError{Reason: ReasonSignedURLFailed, Err: errors.New("no signer configured")}
	}
	signedURL, err := r.signer.SignURL(ctx, objectID, r.opts.SignedURLTTL)
	if err != nil {
		return Resolution{}, &NoResumeFoundError{Reason: ReasonSignedURLFailed, Err: err}
	}
	return r.fetchSigned(ctx, source, objectID, signedURL, reason)
}

func (r *Resolver) fetchSigned(ctx context.Context, source, objectID, signedURL, reason string) (Resolution, error) {
	data, err := r.fetch(ctx, signedURL)
	if err != nil {
		return Resolution{}, &NoResumeFoundError{Reason: ReasonSignedFetchFailed, Err: err}
	}
	if source == "" {
		source = "object:" + objectID
	}
	return Resolution{URL: signedURL, SourceURL: source, Reason: reason, Data: data}, nil
}

func (r *Resolver) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
	defer cancel()
	return r.fetcher.Fetch(ctx, rawURL)
}

// ChooseURL returns the profile URL when absolute, else the legacy URL when absolute, else "".
func ChooseURL(ref Reference) string {
	for _, candidate := range []string{ref.ProfileURL, ref.LegacyURL} {
		if isAbsolute(candidate) {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

func isAbsolute(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "file":
		return u.Path != ""
	default:
		return false
	}
}

// ObjectIDFromURL derives an S3 object key from a virtual-hosted
// (https://bucket.s3.region.amazonaws.com/key) or path-style
// (https://s3.region.amazonaws.com/bucket/key) URL. It returns "" when the
// URL does not name bucket, or any S3 host when bucket is empty.
func ObjectIDFromURL(rawURL, bucket string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	path := strings.TrimPrefix(u.Path, "/")
	bucket = strings.TrimSpace(bucket)

	if bucket != "" {
		if strings.HasPrefix(host, strings.ToLower(bucket)+".") {
			return path
		}
		if rest, ok := strings.CutPrefix(path, bucket+"/"); ok {
			return rest
		}
		return ""
	}

	switch {
	case strings.Contains(host, ".s3.") || strings.Contains(host, ".s3-"):
		return path
	case strings.HasPrefix(host, "s3.") || strings.HasPrefix(host, "s3-"):
		if _, key, ok := strings.Cut(path, "/"); ok {
			return key
		}
	}
	return ""
}
