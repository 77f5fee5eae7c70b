package sqlstore

import (
	"context"

	"github.com/edcompanion/edcompanion/internal/config"
	"github.com/edcompanion/edcompanion/internal/journal"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
)

// Module provides the sqlite-backed journal store
var Module = fx.Options(
	fx.Provide(
		func(cfg *config.Config) (*bun.DB, error) {
			return Open(cfg.Journal.DBPath)
		},
		New,
		func(s *Store) journal.Store { return s },
	),
	fx.Invoke(func(lc fx.Lifecycle, db *bun.DB, store *Store) {
		lc.Append(fx.Hook{
			OnStart: store.Init,
			OnStop: func(ctx context.Context) error {
				return db.Close()
			},
		})
	}),
)
