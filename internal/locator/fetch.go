package locator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultMaxBytes caps a downloaded resume.
const DefaultMaxBytes = 10 << 20

// Fetcher downloads the bytes behind a URL. Non-2xx responses return *DirectFetchError.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher is the net/http Fetcher.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPFetcher wraps client. A nil client uses a plain http.Client.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{client: client, maxBytes: DefaultMaxBytes}
}

// NewFileFetcher is an HTTPFetcher that also reads file:// URLs. File paths
// resolve inside root, so file:///a/b.pdf reads root/a/b.pdf.
func NewFileFetcher(root string, timeout time.Duration) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir(root)))
	return NewHTTPFetcher(&http.Client{Transport: transport, Timeout: timeout})
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &DirectFetchError{URL: rawURL, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &DirectFetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &DirectFetchError{URL: rawURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &DirectFetchError{URL: rawURL, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &DirectFetchError{URL: rawURL, Err: fmt.Errorf("resume exceeds %d bytes", f.maxBytes)}
	}
	return data, nil
}
