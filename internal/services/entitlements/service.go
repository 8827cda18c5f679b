package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nrattyp233/create-a-date/internal/domain/rules"
)

var ErrValidation = errors.New("validation error")

type PremiumStore interface {
	GetPremium(ctx context.Context, userID int64) (bool, error)
}

type MessageCounter interface {
	CountBySender(ctx context.Context, senderID int64) (int, error)
}

type PremiumCache interface {
	Get(ctx context.Context, userID int64) (bool, bool, error)
	Set(ctx context.Context, userID int64, isPremium bool, ttl time.Duration) error
	Invalidate(ctx context.Context, userID int64) error
}

type Config struct {
	FreeMessageCap     int
	FreeVisibleMatches int
	CacheTTL           time.Duration
}

// Snapshot tells a client what the account can currently do.
type Snapshot struct {
	UserID             int64
	IsPremium          bool
	MessagesSent       int
	FreeMessageCap     int
	CanSendMessage     bool
	FreeVisibleMatches int
	CanRecall          bool
	CanUseAI           bool
}

type Service struct {
	store    PremiumStore
	messages MessageCounter
	cache    PremiumCache
	cfg      Config
}

func NewService(store PremiumStore, messages MessageCounter, cache PremiumCache, cfg Config) *Service {
	if cfg.FreeMessageCap <= 0 {
		cfg.FreeMessageCap = rules.FreeMessageCap
	}
	if cfg.FreeVisibleMatches <= 0 {
		cfg.FreeVisibleMatches = rules.FreeVisibleMatches
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}

	return &Service{
		store:    store,
		messages: messages,
		cache:    cache,
		cfg:      cfg,
	}
}

func (s *Service) IsPremium(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, ErrValidation
	}
	if s.store == nil {
		return false, fmt.Errorf("premium store is nil")
	}

	if s.cache != nil {
		if premium, found, err := s.cache.Get(ctx, userID); err == nil && found {
			return premium, nil
		}
	}

	premium, err := s.store.GetPremium(ctx, userID)
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, userID, premium, s.cfg.CacheTTL)
	}

	return premium, nil
}

// InvalidatePremium drops the cached flag. Called after a payment flips
// the account so the next gate check reflects the upgrade immediately.
func (s *Service) InvalidatePremium(ctx context.Context, userID int64) {
	if s.cache == nil || userID <= 0 {
		return
	}
	_ = s.cache.Invalidate(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, ErrValidation
	}

	premium, err := s.IsPremium(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	sent := 0
	if s.messages != nil {
		sent, err = s.messages.CountBySender(ctx, userID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("count sent messages: %w", err)
		}
	}

	return Snapshot{
		UserID:             userID,
		IsPremium:          premium,
		MessagesSent:       sent,
		FreeMessageCap:     s.cfg.FreeMessageCap,
		CanSendMessage:     rules.CanSendMessage(premium, sent, s.cfg.FreeMessageCap),
		FreeVisibleMatches: s.cfg.FreeVisibleMatches,
		CanRecall:          rules.CanRecall(premium),
		CanUseAI:           rules.CanUseAI(premium),
	}, nil
}
