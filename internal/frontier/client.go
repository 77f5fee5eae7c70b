package frontier

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/edcompanion/edcompanion/internal/config"
	"github.com/edcompanion/edcompanion/internal/logger"
	"go.uber.org/zap"
)

// Client performs authenticated GETs against the companion API. Every
// request reads the token store, so a login that completes mid-session is
// picked up without rebuilding the client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     *TokenStore
	lenient    bool
}

func NewClient(cfg *config.FrontierConfig, tokens *TokenStore) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.CAPIURL,
		tokens:     tokens,
		lenient:    cfg.LenientStatus,
	}
}

// Fetch GETs path from the resource server and maps the response status:
// 200 returns the body, 404 fails with ErrResourceUnavailable, 204 fails
// with ErrNotFound. Any other status fails with ErrUnhandledStatus, or —
// under the lenient policy — returns (nil, nil) so callers can treat the
// absence as non-fatal. Transport failures pass through unchanged.
//
// Without an access token Fetch fails immediately with
// ErrAuthenticationRequired and no network call is made.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	creds, ok := c.tokens.Credentials()
	if !ok {
		return nil, fmt.Errorf("%w: no access token for %s", ErrAuthenticationRequired, path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("failed to close response body", zap.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrResourceUnavailable, path)
	case http.StatusNoContent:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	default:
		logger.Warn("capi request returned unhandled status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		if c.lenient {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnhandledStatus, path, resp.StatusCode)
	}
}
