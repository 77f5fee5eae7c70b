package journal

import (
	"github.com/edcompanion/edcompanion/internal/config"
	"github.com/edcompanion/edcompanion/internal/frontier"
	"go.uber.org/fx"
)

// Module provides the journal package dependencies. The sqlite store is
// provided by the sqlstore package; it satisfies Store here.
var Module = fx.Options(
	fx.Provide(
		func(cfg *config.Config, client *frontier.Client, store Store) *Retriever {
			return NewRetriever(&cfg.Journal, client, store)
		},
	),
)
