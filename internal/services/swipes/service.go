package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nrattyp233/create-a-date/internal/domain/enums"
	"github.com/nrattyp233/create-a-date/internal/domain/rules"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidDirection = errors.New("invalid swipe direction")
	ErrNothingToRecall  = errors.New("no swipes to recall")
	ErrPremiumRequired  = errors.New("premium required")
)

type SwipeStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, direction string, now time.Time) (pgrepo.SwipeRecord, error)
	GetByPair(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (pgrepo.SwipeRecord, error)
	GetLastByActor(ctx context.Context, tx pgx.Tx, actorUserID int64) (pgrepo.SwipeRecord, error)
	DeleteByPair(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) error
	ListTargetsByDirection(ctx context.Context, actorUserID int64, direction string) ([]int64, error)
}

type MatchStore interface {
	InsertOrGet(ctx context.Context, tx pgx.Tx, userID, targetID int64) (pgrepo.MatchRecord, bool, error)
	PartnerIDs(ctx context.Context, userID int64) ([]int64, error)
	DeleteByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
}

type EntitlementStore interface {
	IsPremium(ctx context.Context, userID int64) (bool, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID int64) (int64, bool, error)
}

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return fmt.Sprintf("too many swipes, retry after %ds", e.RetryAfterSec)
}

type SwipeResult struct {
	Swipe   pgrepo.SwipeRecord
	IsMatch bool
	MatchID int64
}

type RecallResult struct {
	UndoneTargetID  int64
	UndoneDirection string
	MatchRemoved    bool
}

type Service struct {
	pool         *pgxpool.Pool
	swipeStore   SwipeStore
	matchStore   MatchStore
	entitlements EntitlementStore
	rateLimiter  RateLimiter
	logger       *zap.Logger
	now          func() time.Time
	withTx       func(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	SwipeStore   SwipeStore
	MatchStore   MatchStore
	Entitlements EntitlementStore
	RateLimiter  RateLimiter
	Logger       *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		pool:         deps.Pool,
		swipeStore:   deps.SwipeStore,
		matchStore:   deps.MatchStore,
		entitlements: deps.Entitlements,
		rateLimiter:  deps.RateLimiter,
		logger:       logger,
		now:          time.Now,
		withTx:       pgrepo.WithTx,
	}
}

// Swipe records the actor's latest decision on the target and reconciles a
// match when both sides have an active right swipe. Re-swiping the same
// target replaces the previous decision.
func (s *Service) Swipe(ctx context.Context, actorID, targetID int64, direction enums.SwipeDirection) (SwipeResult, error) {
	if actorID <= 0 || targetID <= 0 || actorID == targetID {
		return SwipeResult{}, ErrValidation
	}
	if !direction.Valid() {
		return SwipeResult{}, ErrInvalidDirection
	}
	if s.withTx == nil || s.swipeStore == nil || s.matchStore == nil {
		return SwipeResult{}, fmt.Errorf("swipe dependencies are not configured")
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, actorID)
		if err != nil {
			return SwipeResult{}, fmt.Errorf("apply swipe rate limiter: %w", err)
		}
		if !allowed {
			return SwipeResult{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()
	result := SwipeResult{}

	if err := s.withTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		swipe, err := s.swipeStore.Upsert(txCtx, tx, actorID, targetID, string(direction), now)
		if err != nil {
			return err
		}
		result.Swipe = swipe

		if direction != enums.SwipeRight {
			return nil
		}

		reverse, err := s.swipeStore.GetByPair(txCtx, tx, targetID, actorID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrSwipeNotFound) {
				return nil
			}
			// A broken reverse lookup must not lose the swipe itself. The
			// match is reconciled on the next swipe from either side.
			s.logger.Warn("reverse swipe lookup failed, skipping match reconciliation",
				zap.Int64("actor_id", actorID),
				zap.Int64("target_id", targetID),
				zap.Error(err),
			)
			return nil
		}
		if reverse.Direction != string(enums.SwipeRight) {
			return nil
		}

		match, _, err := s.matchStore.InsertOrGet(txCtx, tx, actorID, targetID)
		if err != nil {
			return err
		}
		result.IsMatch = true
		result.MatchID = match.ID
		return nil
	}); err != nil {
		return SwipeResult{}, err
	}

	return result, nil
}

// Recall undoes the actor's most recent swipe. The server resolves which
// swipe that is; clients never pass a target. Premium only.
func (s *Service) Recall(ctx context.Context, userID int64) (RecallResult, error) {
	if userID <= 0 {
		return RecallResult{}, ErrValidation
	}
	if s.withTx == nil || s.swipeStore == nil || s.matchStore == nil || s.entitlements == nil {
		return RecallResult{}, fmt.Errorf("swipe dependencies are not configured")
	}

	isPremium, err := s.entitlements.IsPremium(ctx, userID)
	if err != nil {
		return RecallResult{}, fmt.Errorf("resolve premium entitlement: %w", err)
	}
	if !rules.CanRecall(isPremium) {
		return RecallResult{}, ErrPremiumRequired
	}

	result := RecallResult{}

	if err := s.withTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		last, err := s.swipeStore.GetLastByActor(txCtx, tx, userID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrSwipeNotFound) {
				return ErrNothingToRecall
			}
			return err
		}

		if err := s.swipeStore.DeleteByPair(txCtx, tx, userID, last.TargetUserID); err != nil {
			return err
		}

		if last.Direction == string(enums.SwipeRight) {
			removed, err := s.matchStore.DeleteByUsers(txCtx, tx, userID, last.TargetUserID)
			if err != nil {
				return err
			}
			result.MatchRemoved = removed
		}

		result.UndoneTargetID = last.TargetUserID
		result.UndoneDirection = last.Direction
		return nil
	}); err != nil {
		return RecallResult{}, err
	}

	return result, nil
}

// Exclusions returns user ids the actor should not see in the deck again:
// anyone already swiped on plus current match partners.
func (s *Service) Exclusions(ctx context.Context, userID int64) ([]int64, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.swipeStore == nil || s.matchStore == nil {
		return nil, fmt.Errorf("swipe dependencies are not configured")
	}

	seen := map[int64]struct{}{}
	ordered := make([]int64, 0, 32)

	add := func(ids []int64) {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ordered = append(ordered, id)
		}
	}

	for _, direction := range []enums.SwipeDirection{enums.SwipeRight, enums.SwipeLeft} {
		targets, err := s.swipeStore.ListTargetsByDirection(ctx, userID, string(direction))
		if err != nil {
			return nil, fmt.Errorf("list swiped targets: %w", err)
		}
		add(targets)
	}

	partners, err := s.matchStore.PartnerIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list match partners: %w", err)
	}
	add(partners)

	return ordered, nil
}
