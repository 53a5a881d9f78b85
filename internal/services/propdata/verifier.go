package propdata

import (
	"context"
	"fmt"
	"time"

	domrepo "HostPulse/internal/domain/repository"
	"HostPulse/pkg/config"
	xhttp "HostPulse/pkg/http"
)

// TokenClient validates websocket credentials against the identity service.
type TokenClient struct {
	verifyURL string
	client    *xhttp.Client
}

var _ domrepo.TokenVerifier = (*TokenClient)(nil)

func NewTokenClient(cfg *config.Config) *TokenClient {
	timeout := cfg.Auth.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &TokenClient{
		verifyURL: cfg.Auth.VerifyURL,
		client:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Verify posts the token for validation and resolves the owning account.
func (c *TokenClient) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("empty token")
	}

	var out struct {
		Valid   bool   `json:"valid"`
		OwnerID string `json:"owner_id"`
	}
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.verifyURL,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: map[string]string{"token": token},
	}, &out)
	if err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}
	if !out.Valid || out.OwnerID == "" {
		return "", fmt.Errorf("token rejected")
	}
	return out.OwnerID, nil
}
