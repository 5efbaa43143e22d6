// Package botapi is a thin wrapper around the Bot API wire protocol: URL
// construction, request submission through a Transport, and envelope
// unwrapping. It knows nothing about what the calls mean; that is the bot
// package's business.
package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/botwire/botwire/internal/metrics"
	"github.com/botwire/botwire/internal/wire"
)

// Client issues Bot API calls against a fixed base URL and token.
type Client struct {
	token   string
	baseURL string
	tr      Transport
}

// NewClient creates a Client. A nil transport selects the default
// HTTP transport.
func NewClient(token, baseURL string, tr Transport) *Client {
	if tr == nil {
		tr = NewHTTPTransport()
	}
	return &Client{token: token, baseURL: baseURL, tr: tr}
}

// methodURL returns the endpoint for a Bot API method name.
func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// FileURL returns the download endpoint for a file path from getFile.
func (c *Client) FileURL(filePath string) string {
	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, filePath)
}

// call submits one request, unwraps the envelope, and records metrics.
func (c *Client) call(ctx context.Context, httpMethod, method string, headers map[string]string, body []byte) (wire.Result[json.RawMessage], error) {
	start := time.Now()
	resp, err := c.tr.Do(ctx, httpMethod, c.methodURL(method), headers, body)
	if err != nil {
		metrics.ObserveAPICall(method, "transport_error", time.Since(start).Seconds())
		return wire.Result[json.RawMessage]{}, fmt.Errorf("%s: %w", method, err)
	}

	res := wire.DecodeEnvelope(resp)
	status := "ok"
	if !res.OK() {
		status = "api_error"
	}
	metrics.ObserveAPICall(method, status, time.Since(start).Seconds())
	return res, nil
}

// Invoke POSTs a JSON request body to the given method and unwraps the
// envelope. The returned error is transport-level only; an ok:false
// envelope comes back as a failed Result, ordinary data for continuations.
func (c *Client) Invoke(ctx context.Context, method string, body []byte) (wire.Result[json.RawMessage], error) {
	return c.call(ctx, http.MethodPost, method, map[string]string{"Content-Type": "application/json"}, body)
}

// InvokeMultipart POSTs a multipart form body built by wire.EncodeMultipart.
func (c *Client) InvokeMultipart(ctx context.Context, method, boundary string, body []byte) (wire.Result[json.RawMessage], error) {
	headers := map[string]string{
		"Content-Type": fmt.Sprintf("multipart/form-data; boundary=%s", boundary),
	}
	return c.call(ctx, http.MethodPost, method, headers, body)
}

// Get issues a parameterless GET to the given method.
func (c *Client) Get(ctx context.Context, method string) (wire.Result[json.RawMessage], error) {
	return c.call(ctx, http.MethodGet, method, nil, nil)
}

// Download fetches raw file bytes for a path previously resolved via the
// getFile method. The response is not an envelope.
func (c *Client) Download(ctx context.Context, filePath string) ([]byte, error) {
	data, err := c.tr.Do(ctx, http.MethodGet, c.FileURL(filePath), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", filePath, err)
	}
	return data, nil
}
