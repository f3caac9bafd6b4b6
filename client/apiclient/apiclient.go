// Package apiclient talks to the postboard REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/postboard-dev/postboard/shared/api"
)

// NetworkError is returned for transport failures (StatusCode 0) and for
// any non-2xx response.
type NetworkError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return "network error: " + e.Message
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// APIClient struct handles all communication with the backend API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{},
	}
}

// SetToken sets the bearer token sent with every request. Empty clears it.
func (c *APIClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *APIClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// doJSON encodes in (if not nil), sends the request and decodes a 2xx body into out (if not nil).
func (c *APIClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, method, path, "application/json", body, out)
}

// do is the single, unified helper for making API requests.
func (c *APIClient) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create API request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return &NetworkError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{StatusCode: resp.StatusCode, Message: "cannot decode response: " + err.Error()}
	}
	return nil
}

func responseError(resp *http.Response) *NetworkError {
	nerr := &NetworkError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body api.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Error != "" {
		nerr.Message = body.Error
		nerr.Fields = body.Fields
	}
	return nerr
}
