package journal

import (
	"context"
	"errors"
	"time"

	"github.com/edcompanion/edcompanion/internal/config"
	"github.com/edcompanion/edcompanion/internal/frontier"
	"github.com/edcompanion/edcompanion/internal/logger"
	"go.uber.org/zap"
)

// dayKeyLayout formats a date the way the journal endpoint is indexed.
const dayKeyLayout = "2006/01/02"

// Fetcher is the authenticated resource access the retriever needs.
// *frontier.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Retriever finds the most recent day with journal data by scanning
// backward from today, one calendar day at a time, and persists exactly one
// record when it finds it.
type Retriever struct {
	fetcher     Fetcher
	store       Store
	maxLookback int
	now         func() time.Time
}

func NewRetriever(cfg *config.JournalConfig, fetcher Fetcher, store Store) *Retriever {
	maxLookback := cfg.MaxLookbackDays
	if maxLookback <= 0 {
		maxLookback = 365
	}
	return &Retriever{
		fetcher:     fetcher,
		store:       store,
		maxLookback: maxLookback,
		now:         time.Now,
	}
}

// FetchLatest scans backward from the current date until a day returns
// data, then persists it and stops. This is a single-shot "find the most
// recent day with data" scan, not a backfill.
//
// A day with no journal (204) steps the scan back 24 hours. An
// authentication failure propagates so the caller can prompt for re-login.
// Every other failure stops the scan, is logged, and is not propagated:
// journal data is best-effort for the broader load sequence. The scan also
// stops, silently, at the lookback bound or the 1970 epoch — a safety net
// against a server that reports every day as empty.
func (r *Retriever) FetchLatest(ctx context.Context) error {
	date := r.now()
	epoch := time.Unix(0, 0)

	for i := 0; i < r.maxLookback && date.After(epoch); i++ {
		dayKey := date.UTC().Format(dayKeyLayout)

		data, err := r.fetcher.Fetch(ctx, "/journal/"+dayKey)
		switch {
		case err == nil && data != nil:
			record := Record{DayKey: dayKey, Content: string(data)}
			if err := r.store.Save(ctx, record); err != nil {
				logger.Error("failed to persist journal record",
					zap.String("day", dayKey), zap.Error(err))
				return nil
			}
			logger.Info("journal loaded", zap.String("day", dayKey))
			return nil

		case err == nil:
			// Lenient-mode "no error, no data": non-fatal, nothing to save
			logger.Warn("journal fetch returned no data", zap.String("day", dayKey))
			return nil

		case errors.Is(err, frontier.ErrNotFound):
			// Day had no activity, try the previous one
			date = date.Add(-24 * time.Hour)
			logger.Debug("no journal for day, trying previous",
				zap.String("day", dayKey))

		case errors.Is(err, frontier.ErrAuthenticationRequired):
			return err

		default:
			logger.Error("failed to load journal",
				zap.String("day", dayKey), zap.Error(err))
			return nil
		}
	}

	logger.Warn("journal scan exhausted without finding data",
		zap.Int("max_lookback_days", r.maxLookback))
	return nil
}
