package locator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSigner struct {
	calls int32
	url   string
	err   error
	got   string
	ttl   time.Duration
}

func (s *fakeSigner) SignURL(ctx context.Context, objectID string, ttl time.Duration) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	s.got = objectID
	s.ttl = ttl
	return s.url, s.err
}

// keySigner also signs bucket-absolute keys.
type keySigner struct {
	fakeSigner
	keyCalls int32
	key      string
}

func (s *keySigner) SignKey(ctx context.Context, key string, ttl time.Duration) (string, error) {
	atomic.AddInt32(&s.keyCalls, 1)
	s.key = key
	return s.url, s.err
}

// newSource serves /direct with directStatus and /signed with signedStatus,
// counting hits on each path.
func newSource(t *testing.T, directStatus, signedStatus int) (*httptest.Server, *int32, *int32) {
	t.Helper()
	var direct, signed int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := directStatus
		if r.URL.Path == "/signed" {
			atomic.AddInt32(&signed, 1)
			status = signedStatus
		} else {
			atomic.AddInt32(&direct, 1)
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte("%PDF-1.4 body"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &direct, &signed
}

func TestResolveDirectOK(t *testing.T) {
	srv, direct, _ := newSource(t, http.StatusOK, http.StatusOK)
	signer := &fakeSigner{url: srv.URL + "/signed"}

	res, err := New(NewHTTPFetcher(srv.Client()), signer, Options{}).Resolve(context.Background(), Reference{ProfileURL: srv.URL + "/cv.pdf", StorageID: "users/1/cv.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Reason != ReasonDirectOK || res.URL != srv.URL+"/cv.pdf" || res.SourceURL != res.URL {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if string(res.Data) != "%PDF-1.4 body" {
		t.Fatalf("unexpected data %q", res.Data)
	}
	if atomic.LoadInt32(direct) != 1 || atomic.LoadInt32(&signer.calls) != 0 {
		t.Fatalf("expected one direct fetch and no signing, got direct=%d sign=%d", atomic.LoadInt32(direct), atomic.LoadInt32(&signer.calls))
	}
}

func TestResolveUnauthorizedFallsBackToSignedOnce(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv, direct, signed := newSource(t, status, http.StatusOK)
		signer := &fakeSigner{url: srv.URL + "/signed"}

		res, err := New(NewHTTPFetcher(srv.Client()), signer, Options{SignedURLTTL: time.Hour}).Resolve(context.Background(), Reference{ProfileURL: srv.URL + "/cv.pdf", StorageID: "users/1/cv.pdf"})
		if err != nil {
			t.Fatalf("status %d: Resolve: %v", status, err)
		}
		if res.Reason != ReasonSignedAfter401 || res.URL != srv.URL+"/signed" || res.SourceURL != srv.URL+"/cv.pdf" {
			t.Fatalf("status %d: unexpected resolution %+v", status, res)
		}
		if atomic.LoadInt32(direct) != 1 || atomic.LoadInt32(signed) != 1 || atomic.LoadInt32(&signer.calls) != 1 {
			t.Fatalf("status %d: expected 1/1/1 got direct=%d signed=%d sign=%d", status, atomic.LoadInt32(direct), atomic.LoadInt32(signed), atomic.LoadInt32(&signer.calls))
		}
		if signer.got != "users/1/cv.pdf" || signer.ttl != 600*time.Second {
			t.Fatalf("status %d: unexpected signer args %q %v", status, signer.got, signer.ttl)
		}
	}
}

func TestResolveURLDerivedKeyUsesKeySigner(t *testing.T) {
	srv, _, signed := newSource(t, http.StatusForbidden, http.StatusOK)
	signer := &keySigner{fakeSigner: fakeSigner{url: srv.URL + "/signed"}}

	res, err := New(NewHTTPFetcher(srv.Client()), signer, Options{Bucket: "bucket"}).Resolve(context.Background(), Reference{ProfileURL: srv.URL + "/bucket/resumes/cv.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Reason != ReasonSignedAfter401 || atomic.LoadInt32(signed) != 1 {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if signer.key != "resumes/cv.pdf" || atomic.LoadInt32(&signer.keyCalls) != 1 || atomic.LoadInt32(&signer.calls) != 0 {
		t.Fatalf("expected SignKey(resumes/cv.pdf) only, got key=%q keyCalls=%d signCalls=%d", signer.key, signer.keyCalls, signer.calls)
	}

	// A recorded storage id still goes through SignURL.
	signer = &keySigner{fakeSigner: fakeSigner{url: srv.URL + "/signed"}}
	if _, err := New(NewHTTPFetcher(srv.Client()), signer, Options{Bucket: "bucket"}).Resolve(context.Background(), Reference{ProfileURL: srv.URL + "/bucket/resumes/cv.pdf", StorageID: "cv.pdf"}); err != nil {
		t.Fatalf("Resolve with storage id: %v", err)
	}
	if signer.got != "cv.pdf" || atomic.LoadInt32(&signer.keyCalls) != 0 {
		t.Fatalf("expected SignURL(cv.pdf), got got=%q keyCalls=%d", signer.got, signer.keyCalls)
	}
}

func TestResolveNotFoundSkipsSigning(t *testing.T) {
	srv, _, signed := newSource(t, http.StatusNotFound, http.StatusOK)
	signer := &fakeSigner{url: srv.URL + "/signed"}

	_, err := New(NewHTTPFetcher(srv.Client()), signer, Options{}).Resolve(context.Background(), Reference{ProfileURL: srv.URL + "/cv.pdf", StorageID: "users/1/cv.pdf"})
	var direct *DirectFetchError
	if !errors.As(err, &direct) || direct.Status != http.StatusNotFound {
		t.Fatalf("expected DirectFetchError 404, got %v", err)
	}
	if atomic.LoadInt32(&signer.calls) != 0 || atomic.LoadInt32(signed) != 0 {
		t.Fatalf("expected no signed attempt, got sign=%d fetch=%d", atomic.LoadInt32(&signer.calls), atomic.LoadInt32(signed))
	}
}

func TestResolveSignedFetchFails(t *testing.T) {
	srv, _, signed := newSource(t, http.StatusUnauthorized, http.StatusForbidden)
	signer := &fakeSigner{url: srv.URL + "/signed"}

	_, err := New(NewHTTPFetcher(srv.Client()), signer, Options{}).Resolve(context.Background(), Reference{ProfileURL: srv.URL + "/cv.pdf", StorageID: "k"})
	var notFound *NoResumeFoundError
	if !errors.As(err, &notFound) || notFound.Reason != ReasonSignedFetchFailed {
		t.Fatalf("expected signed-fetch-failed, got %v", err)
	}
	if !errors.Is(err, ErrNoResumeFound) {
		t.Fatal("expected errors.Is ErrNoResumeFound")
	}
	if atomic.LoadInt32(signed) != 1 {
		t.Fatalf("expected exactly one signed fetch, got %d", atomic.LoadInt32(signed))
	}
}

func TestResolveSigningErrors(t *testing.T) {
	srv, _, _ := newSource(t, http.StatusUnauthorized, http.StatusOK)
	ref := Reference{ProfileURL: srv.URL + "/cv.pdf", StorageID: "k"}

	tests := []struct {
		name   string
		signer *fakeSigner
		ref    Reference
		reason string
	}{
		{name: "signer error", signer: &fakeSigner{err: errors.New("denied")}, ref: ref, reason: ReasonSignedURLFailed},
		{name: "no object id", signer: &fakeSigner{url: srv.URL + "/signed"}, ref: Reference{ProfileURL: srv.URL + "/cv.pdf"}, reason: ReasonNoObjectID},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(NewHTTPFetcher(srv.Client()), tt.signer, Options{}).Resolve(context.Background(), tt.ref)
			var notFound *NoResumeFoundError
			if !errors.As(err, &notFound) || notFound.Reason != tt.reason {
				t.Fatalf("expected reason %q, got %v", tt.reason, err)
			}
		})
	}

	_, err := New(NewHTTPFetcher(srv.Client()), nil, Options{}).Resolve(context.Background(), ref)
	if !errors.Is(err, ErrNoResumeFound) {
		t.Fatalf("expected ErrNoResumeFound without signer, got %v", err)
	}
}

func TestResolveScenarioForbiddenDerivesObjectID(t *testing.T) {
	srv, _, _ := newSource(t, http.StatusForbidden, http.StatusOK)
	signer := &fakeSigner{url: srv.URL + "/signed"}

	res, err := New(NewHTTPFetcher(srv.Client()), signer, Options{Bucket: "resumes"}).Resolve(context.Background(), Reference{ProfileURL: srv.URL + "/resumes/users/9/cv.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.URL != srv.URL+"/signed" || res.Reason != "signed-after-401" {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if signer.got != "users/9/cv.pdf" {
		t.Fatalf("expected derived object id, got %q", signer.got)
	}
}

func TestResolveReferenceSelection(t *testing.T) {
	srv, _, _ := newSource(t, http.StatusOK, http.StatusOK)
	signer := &fakeSigner{url: srv.URL + "/signed"}
	r := New(NewHTTPFetcher(srv.Client()), signer, Options{})

	res, err := r.Resolve(context.Background(), Reference{ProfileURL: "/uploads/cv.pdf", LegacyURL: srv.URL + "/legacy.pdf"})
	if err != nil || res.URL != srv.URL+"/legacy.pdf" {
		t.Fatalf("expected legacy url, got %+v %v", res, err)
	}

	res, err = r.Resolve(context.Background(), Reference{StorageID: "users/2/cv.pdf"})
	if err != nil || res.Reason != ReasonSignedNoDirect || res.SourceURL != "object:users/2/cv.pdf" {
		t.Fatalf("expected signed-no-direct, got %+v %v", res, err)
	}

	if _, err := r.Resolve(context.Background(), Reference{}); !errors.Is(err, ErrNoResumeReference) {
		t.Fatalf("expected ErrNoResumeReference, got %v", err)
	}

	_, err = r.Resolve(context.Background(), Reference{ProfileURL: "uploads/cv.pdf"})
	var notFound *NoResumeFoundError
	if !errors.As(err, &notFound) || notFound.Reason != ReasonNoAbsoluteURL {
		t.Fatalf("expected no-absolute-url, got %v", err)
	}
}

func TestResolveTransportErrorIsDirectFetchError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/cv.pdf"
	srv.Close()

	_, err := New(NewHTTPFetcher(nil), &fakeSigner{}, Options{FetchTimeout: time.Second}).Resolve(context.Background(), Reference{ProfileURL: target})
	var direct *DirectFetchError
	if !errors.As(err, &direct) || direct.Status != 0 {
		t.Fatalf("expected transport DirectFetchError, got %v", err)
	}
}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := NewFileFetcher("/", time.Second).Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	if err != nil || string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected fetch %q %v", data, err)
	}
}

func TestFileFetcherStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "secret.pdf")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, target := range []string{"file://" + filepath.ToSlash(outside), "file:///../" + filepath.Base(outside)} {
		data, err := NewFileFetcher(root, time.Second).Fetch(context.Background(), target)
		var direct *DirectFetchError
		if !errors.As(err, &direct) || direct.Status != http.StatusNotFound {
			t.Fatalf("Fetch(%q): expected 404 DirectFetchError, got %q %v", target, data, err)
		}
	}
}

func TestObjectIDFromURL(t *testing.T) {
	tests := []struct {
		url    string
		bucket string
		want   string
	}{
		{url: "https://resumes.s3.us-east-1.amazonaws.com/users/1/cv.pdf", bucket: "resumes", want: "users/1/cv.pdf"},
		{url: "https://s3.us-east-1.amazonaws.com/resumes/users/1/cv.pdf", bucket: "resumes", want: "users/1/cv.pdf"},
		{url: "https://cdn.example.com/users/1/cv.pdf", bucket: "resumes", want: ""},
		{url: "https://other.s3.amazonaws.com/users/1/cv.pdf", bucket: "", want: "users/1/cv.pdf"},
		{url: "https://s3.eu-west-1.amazonaws.com/bucket/a/b.pdf", bucket: "", want: "a/b.pdf"},
		{url: "https://cdn.example.com/a.pdf", bucket: "", want: ""},
		{url: "not a url", bucket: "resumes", want: ""},
	}
	for _, tt := range tests {
		if got := ObjectIDFromURL(tt.url, tt.bucket); got != tt.want {
			t.Fatalf("ObjectIDFromURL(%q, %q) = %q, want %q", tt.url, tt.bucket, got, tt.want)
		}
	}
}
