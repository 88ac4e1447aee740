package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenSource mints the bearer token sent with every gateway call.
type TokenSource interface {
	Token(tenantID string) (string, error)
}

// TokenFunc adapts a plain function to a TokenSource.
type TokenFunc func(tenantID string) (string, error)

func (f TokenFunc) Token(tenantID string) (string, error) { return f(tenantID) }

// HTTPClient speaks JSON over HTTP to the cloud gateway. Both
// directions use the same response envelope the local API serves, so
// the cloud twin and the device stay wire compatible.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type uploadRequest struct {
	TenantID string      `json:"tenantId"`
	Records  interface{} `json:"records"`
}

// Upload pushes the full local record set for one class.
func (c *HTTPClient) Upload(ctx context.Context, tenantID, class string, records interface{}) (UploadResult, error) {
	body, err := json.Marshal(uploadRequest{TenantID: tenantID, Records: records})
	if err != nil {
		return UploadResult{}, fmt.Errorf("encode %s upload: %w", class, err)
	}

	url := fmt.Sprintf("%s/api/v1/sync/%s/upload", c.baseURL, class)
	data, err := c.call(ctx, http.MethodPost, url, tenantID, bytes.NewReader(body))
	if err != nil {
		return UploadResult{}, err
	}

	var result UploadResult
	if len(data) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			return UploadResult{}, fmt.Errorf("decode %s upload ack: %w", class, err)
		}
	}
	return result, nil
}

// Download fetches the cloud record set for one class into out.
func (c *HTTPClient) Download(ctx context.Context, tenantID, class string, out interface{}) error {
	url := fmt.Sprintf("%s/api/v1/sync/%s/download?tenantId=%s", c.baseURL, class, tenantID)
	data, err := c.call(ctx, http.MethodGet, url, tenantID, nil)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s download: %w", class, err)
	}
	return nil
}

// call runs one request and unwraps the response envelope. Transport
// failures come back wrapping ErrOffline; an HTTP error status is a
// real gateway answer and does not.
func (c *HTTPClient) call(ctx context.Context, method, url, tenantID string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(tenantID)
		if err != nil {
			return nil, fmt.Errorf("gateway token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOffline, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrOffline, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("gateway sent malformed response (HTTP %d)", resp.StatusCode)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("gateway rejected request (HTTP %d): %s", resp.StatusCode, msg)
	}
	return env.Data, nil
}
