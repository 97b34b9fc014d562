package presence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// manages HTTP requests to the viewers REST API
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Join(ctx context.Context, productID string) (string, error) {
	var resp joinResponse
	if err := c.do(ctx, http.MethodPost, "/viewers", joinRequest{ProductID: productID}, &resp); err != nil {
		return "", err
	}

	return resp.SessionID, nil
}

func (c *Client) Heartbeat(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPatch, "/viewers", heartbeatRequest{SessionID: sessionID}, nil)
}

func (c *Client) Leave(ctx context.Context, sessionID string) error {
	path := "/viewers?" + url.Values{"sessionId": {sessionID}}.Encode()
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) Count(ctx context.Context, productID string) (int, error) {
	var resp countResponse

	path := "/viewers?" + url.Values{"productId": {productID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}

	return resp.ViewerCount, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader

	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}

		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Code = errResp.Error
			apiErr.Message = errResp.Message
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
