// Package block manages the deny list consulted first on every admission.
package block

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"deletionguard/internal/deletion/models"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/clock"
)

type Store interface {
	Get(ctx context.Context, userID string) (*models.BlockEntry, error)
	Put(ctx context.Context, entry *models.BlockEntry) error
	Delete(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context) ([]*models.BlockEntry, error)
}

type Service struct {
	store  Store
	clock  clock.Clock
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("block store is required")
	}
	svc := &Service{
		store:  store,
		clock:  clock.Real{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check returns the user's active block, or nil. An expired entry is
// removed and treated as absent.
func (s *Service) Check(ctx context.Context, userID string) (*models.BlockEntry, error) {
	entry, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read block registry")
	}
	if entry == nil {
		return nil, nil
	}
	if entry.IsExpired(s.clock.Now()) {
		if _, err := s.store.Delete(ctx, userID); err != nil {
			s.logger.WarnContext(ctx, "failed to purge expired block", "user_id", userID, "error", err)
		}
		return nil, nil
	}
	return entry, nil
}

// Block denies the user for duration. A zero duration blocks until a
// manual unblock.
func (s *Service) Block(ctx context.Context, userID string, duration time.Duration, reason string, source models.BlockSource) (*models.BlockEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user_id is required")
	}
	if duration < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "block duration must not be negative")
	}
	entry := models.NewBlockEntry(userID, s.clock.Now(), duration, reason, source)
	if err := s.store.Put(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write block")
	}
	return entry, nil
}

// Unblock reports whether an active block was lifted.
func (s *Service) Unblock(ctx context.Context, userID string) (bool, error) {
	active, err := s.Check(ctx, userID)
	if err != nil {
		return false, err
	}
	removed, err := s.store.Delete(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove block")
	}
	return active != nil && removed, nil
}

// List returns active blocks and purges expired ones it encounters.
func (s *Service) List(ctx context.Context) ([]*models.BlockEntry, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blocks")
	}
	now := s.clock.Now()
	active := make([]*models.BlockEntry, 0, len(all))
	for _, entry := range all {
		if entry.IsExpired(now) {
			if _, err := s.store.Delete(ctx, entry.UserID); err != nil {
				s.logger.WarnContext(ctx, "failed to purge expired block", "user_id", entry.UserID, "error", err)
			}
			continue
		}
		active = append(active, entry)
	}
	return active, nil
}

// PurgeExpired removes every expired entry and returns how many went.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blocks")
	}
	now := s.clock.Now()
	purged := 0
	for _, entry := range all {
		if !entry.IsExpired(now) {
			continue
		}
		removed, err := s.store.Delete(ctx, entry.UserID)
		if err != nil {
			return purged, dErrors.Wrap(err, dErrors.CodeInternal, "failed to purge block")
		}
		if removed {
			purged++
		}
	}
	return purged, nil
}
