package apiclient

import (
	"context"
	"net/http"

	"github.com/postboard-dev/postboard/shared/api"
)

// Register creates an account and keeps the returned token for later calls.
func (c *APIClient) Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return resp, err
	}
	c.SetToken(resp.Token)
	return resp, nil
}

// Login keeps the returned token for later calls.
func (c *APIClient) Login(ctx context.Context, req api.LoginRequest) (api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return resp, err
	}
	c.SetToken(resp.Token)
	return resp, nil
}
