// Package companion coordinates the authenticated load sequence: profile
// first, then the latest journal.
package companion

import (
	"context"
	"errors"
	"sync"

	"github.com/edcompanion/edcompanion/internal/frontier"
	"github.com/edcompanion/edcompanion/internal/journal"
	"github.com/edcompanion/edcompanion/internal/logger"
	"go.uber.org/zap"
)

// JournalRetriever is the journal step of the load sequence.
// *journal.Retriever satisfies it.
type JournalRetriever interface {
	FetchLatest(ctx context.Context) error
}

// Service holds the in-memory commander snapshot and runs the combined
// load sequence. The snapshot supports concurrent reads while the active
// load replaces it.
type Service struct {
	client    *frontier.Client
	retriever JournalRetriever

	mu      sync.RWMutex
	profile *frontier.Profile
}

func NewService(client *frontier.Client, retriever JournalRetriever) *Service {
	return &Service{
		client:    client,
		retriever: retriever,
	}
}

// Profile returns the last successfully fetched snapshot, or nil before the
// first fetch.
func (s *Service) Profile() *frontier.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// RefreshProfile fetches /profile and replaces the snapshot in full.
func (s *Service) RefreshProfile(ctx context.Context) (*frontier.Profile, error) {
	profile, err := s.client.FetchProfile(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
	return profile, nil
}

// LoadAll runs the profile fetch and then the journal fetch. Only an
// authentication failure interrupts the sequence and propagates: the caller
// must prompt for re-login. Every other profile error is logged and the
// journal step still runs; the journal step applies the same policy
// internally.
func (s *Service) LoadAll(ctx context.Context) error {
	if _, err := s.RefreshProfile(ctx); err != nil {
		if errors.Is(err, frontier.ErrAuthenticationRequired) {
			return err
		}
		logger.Warn("profile load failed", zap.Error(err))
	}

	if err := s.retriever.FetchLatest(ctx); err != nil {
		if errors.Is(err, frontier.ErrAuthenticationRequired) {
			return err
		}
		logger.Warn("journal load failed", zap.Error(err))
	}
	return nil
}

var _ JournalRetriever = (*journal.Retriever)(nil)
