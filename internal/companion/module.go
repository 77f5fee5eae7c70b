package companion

import (
	"github.com/edcompanion/edcompanion/internal/frontier"
	"github.com/edcompanion/edcompanion/internal/journal"
	"go.uber.org/fx"
)

// Module provides the companion service
var Module = fx.Options(
	fx.Provide(
		func(client *frontier.Client, retriever *journal.Retriever) *Service {
			return NewService(client, retriever)
		},
	),
)
