package botapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"
)

const (
	defaultTimeout   = 60 * time.Second
	maxResponseBytes = 10 << 20 // prevent unbounded reads from API responses
)

// Transport performs one HTTP exchange against the Bot API. The response
// status is ignored; the body carries the envelope. Implementations must
// not retry.
type Transport interface {
	Do(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, error)
}

// HTTPTransport is the default Transport backed by net/http.
type HTTPTransport struct {
	http *http.Client
}

// NewHTTPTransport creates a transport with the default 60s client timeout.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		http: &http.Client{Timeout: defaultTimeout},
	}
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("botapi: create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		// url.Error prints the full URL, which carries the token. Keep only
		// the inner error so the token never appears in error messages.
		var uerr *neturl.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("botapi: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("botapi: read response: %w", err)
	}
	return respBody, nil
}
