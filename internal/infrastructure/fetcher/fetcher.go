package fetcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/ports"
)

const (
	DefaultUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	DefaultTimeout        = 20 * time.Second

	maxBodyBytes = 8 << 20
)

// Identity is the request identity presented to every source.
type Identity struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

// HTTPFetcher retrieves source pages with one attempt per call.
type HTTPFetcher struct {
	client   *http.Client
	identity Identity
	maxBody  int64
}

var _ ports.Fetcher = (*HTTPFetcher)(nil)

// New wires an HTTP client; a nil client gets a transport with the given timeout.
func New(client *http.Client, identity Identity, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = newHTTPClient(timeout)
	}
	if identity.UserAgent == "" {
		identity.UserAgent = DefaultUserAgent
	}
	if identity.Accept == "" {
		identity.Accept = DefaultAccept
	}
	if identity.AcceptLanguage == "" {
		identity.AcceptLanguage = DefaultAcceptLanguage
	}
	return &HTTPFetcher{client: client, identity: identity, maxBody: maxBodyBytes}
}

// Fetch returns the raw page body. Non-2xx responses and transport failures
// are reported as *domain.FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Cause: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", f.identity.UserAgent)
	req.Header.Set("Accept", f.identity.Accept)
	req.Header.Set("Accept-Language", f.identity.AcceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FetchError{URL: url, StatusCode: resp.StatusCode, Cause: fmt.Errorf("status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, &domain.FetchError{URL: url, Cause: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.maxBody {
		return nil, &domain.FetchError{URL: url, Cause: fmt.Errorf("body exceeds limit of %d bytes", f.maxBody)}
	}
	return body, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}
