package frontier

import (
	"os"

	"github.com/edcompanion/edcompanion/internal/config"
	"go.uber.org/fx"
)

// Module provides the frontier package dependencies
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			func(cfg *config.Config) (*FileSettings, error) {
				return NewFileSettings(cfg.Settings.Path)
			},
			fx.As(new(Settings)),
		),
		NewTokenStore,
		fx.Annotate(
			func() *BrowserAuthenticator {
				return &BrowserAuthenticator{In: os.Stdin, Out: os.Stdout}
			},
			fx.As(new(Authenticator)),
		),
		func(cfg *config.Config, tokens *TokenStore, authenticator Authenticator) *LoginFlow {
			return NewLoginFlow(&cfg.Frontier, tokens, authenticator)
		},
		func(cfg *config.Config, tokens *TokenStore) *Client {
			return NewClient(&cfg.Frontier, tokens)
		},
	),
)
