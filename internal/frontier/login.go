package frontier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/edcompanion/edcompanion/internal/config"
	"github.com/edcompanion/edcompanion/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// FlowState tracks one login attempt through the authorization-code
// exchange.
type FlowState int

const (
	StateIdle FlowState = iota
	StateAwaitingCallback
	StateExchangingToken
	StateAuthenticated
	StateFailed
)

func (s FlowState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingCallback:
		return "awaiting_callback"
	case StateExchangingToken:
		return "exchanging_token"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoginFlow drives the PKCE authorization-code exchange end to end: it
// builds the authorize URL, hands it to the interactive authenticator,
// validates the callback, and exchanges the code for tokens.
//
// Concurrent Login calls coalesce into a single in-flight attempt.
type LoginFlow struct {
	cfg           *config.FrontierConfig
	tokens        *TokenStore
	authenticator Authenticator
	httpClient    *http.Client

	group singleflight.Group

	mu      sync.RWMutex
	state   FlowState
	lastErr error
}

func NewLoginFlow(cfg *config.FrontierConfig, tokens *TokenStore, authenticator Authenticator) *LoginFlow {
	return &LoginFlow{
		cfg:           cfg,
		tokens:        tokens,
		authenticator: authenticator,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		state:         StateIdle,
	}
}

// State returns the state of the most recent login attempt.
func (f *LoginFlow) State() FlowState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Err returns the terminal error of the most recent login attempt, if any.
// It is set even when Login itself returned nil under the lenient status
// policy.
func (f *LoginFlow) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastErr
}

// Login runs one authorization-code exchange. On success the token store
// holds the new credential pair. A second Login while one is outstanding
// awaits the outstanding attempt and shares its result.
func (f *LoginFlow) Login(ctx context.Context) error {
	_, err, _ := f.group.Do("login", func() (interface{}, error) {
		return nil, f.login(ctx)
	})
	return err
}

func (f *LoginFlow) login(ctx context.Context) error {
	exchange := NewPKCEExchange()
	conf := f.oauthConfig()

	authURL := conf.AuthCodeURL(exchange.State,
		oauth2.SetAuthURLParam("audience", f.cfg.Audience),
		oauth2.SetAuthURLParam("code_challenge", exchange.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	f.setState(StateAwaitingCallback, nil)

	// Suspends until the user completes or abandons the browser flow.
	// Authenticator failures and cancellations surface unchanged.
	callback, err := f.authenticator.Authenticate(ctx, authURL, f.cfg.RedirectScheme)
	if err != nil {
		return f.fail(err)
	}

	f.setState(StateExchangingToken, nil)

	code, err := f.validateCallback(callback, exchange.State)
	if err != nil {
		return f.fail(err)
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()
	exchangeCtx = context.WithValue(exchangeCtx, oauth2.HTTPClient, f.httpClient)

	token, err := conf.Exchange(exchangeCtx, code,
		oauth2.SetAuthURLParam("code_verifier", exchange.CodeVerifier),
	)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if !errors.As(err, &retrieveErr) {
			// Transport failure, pass through unchanged
			return f.fail(err)
		}
		switch retrieveErr.Response.StatusCode {
		case http.StatusNotFound:
			return f.fail(fmt.Errorf("%w: token endpoint returned 404", ErrResourceUnavailable))
		default:
			unhandled := fmt.Errorf("%w: token endpoint returned %d", ErrUnhandledStatus, retrieveErr.Response.StatusCode)
			if f.cfg.LenientStatus {
				// Legacy policy: record the failure, return without raising
				f.setState(StateFailed, unhandled)
				logger.Warn("token exchange failed with unhandled status",
					zap.Int("status", retrieveErr.Response.StatusCode))
				return nil
			}
			return f.fail(unhandled)
		}
	}

	if err := f.tokens.SetCredentials(token.AccessToken, token.RefreshToken); err != nil {
		return f.fail(err)
	}

	f.setState(StateAuthenticated, nil)
	logger.Info("login complete", zap.String("state", StateAuthenticated.String()))
	return nil
}

// validateCallback parses the callback URL and returns the authorization
// code. The state parameter must exactly equal the one generated for this
// attempt; otherwise the token server is never contacted.
func (f *LoginFlow) validateCallback(callback, wantState string) (string, error) {
	u, err := url.Parse(callback)
	if err != nil {
		return "", fmt.Errorf("%w: unparseable callback URL: %v", ErrBadRequest, err)
	}

	query := u.Query()
	code := query.Get("code")
	gotState := query.Get("state")

	if code == "" || gotState == "" {
		return "", fmt.Errorf("%w: callback missing code or state", ErrProtocolViolation)
	}
	if gotState != wantState {
		return "", fmt.Errorf("%w: callback state mismatch", ErrProtocolViolation)
	}
	return code, nil
}

func (f *LoginFlow) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID: f.cfg.ClientID,
		Scopes:   f.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   f.cfg.AuthURL + "/auth",
			TokenURL:  f.cfg.AuthURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: f.cfg.RedirectScheme + "://auth",
	}
}

func (f *LoginFlow) setState(state FlowState, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	f.lastErr = err
}

func (f *LoginFlow) fail(err error) error {
	f.setState(StateFailed, err)
	logger.Error("login failed", zap.Error(err))
	return err
}
