package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
	"github.com/nrattyp233/create-a-date/internal/domain/rules"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrMatchNotFound = errors.New("match not found")
)

type MatchStore interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.MatchRecord, error)
	DeleteByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
}

type SwipeStore interface {
	DeleteByPair(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) error
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
}

type EntitlementStore interface {
	IsPremium(ctx context.Context, userID int64) (bool, error)
}

// MatchItem is one row of the match list. Locked rows belong to free users
// who have more matches than the free window shows; their partner profile
// is withheld.
type MatchItem struct {
	ID            int64
	PartnerUserID int64
	PartnerName   string
	PartnerPhotos []string
	Locked        bool
	CreatedAt     time.Time
}

type ListResult struct {
	Items       []MatchItem
	Total       int
	LockedCount int
}

type Service struct {
	pool         *pgxpool.Pool
	matchStore   MatchStore
	swipeStore   SwipeStore
	userStore    UserStore
	entitlements EntitlementStore
	withTx       func(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	MatchStore   MatchStore
	SwipeStore   SwipeStore
	UserStore    UserStore
	Entitlements EntitlementStore
}

func NewService(deps Dependencies) *Service {
	return &Service{
		pool:         deps.Pool,
		matchStore:   deps.MatchStore,
		swipeStore:   deps.SwipeStore,
		userStore:    deps.UserStore,
		entitlements: deps.Entitlements,
		withTx:       pgrepo.WithTx,
	}
}

// List returns the user's matches oldest first. Free users see partner
// details only for the first rules.FreeVisibleMatches rows; the rest are
// returned locked so the client can show an upgrade prompt.
func (s *Service) List(ctx context.Context, userID int64, limit int) (ListResult, error) {
	if userID <= 0 {
		return ListResult{}, ErrValidation
	}
	if s.matchStore == nil || s.entitlements == nil {
		return ListResult{}, fmt.Errorf("match dependencies are not configured")
	}

	isPremium, err := s.entitlements.IsPremium(ctx, userID)
	if err != nil {
		return ListResult{}, fmt.Errorf("resolve premium entitlement: %w", err)
	}

	rows, err := s.matchStore.ListForUser(ctx, userID, limit)
	if err != nil {
		return ListResult{}, err
	}

	visible := rules.VisibleMatchLimit(isPremium, len(rows), rules.FreeVisibleMatches)
	items := make([]MatchItem, 0, len(rows))
	lockedCount := 0

	for i, row := range rows {
		item := MatchItem{
			ID:            row.ID,
			PartnerUserID: partnerOf(row, userID),
			CreatedAt:     row.CreatedAt,
		}

		if i >= visible {
			item.Locked = true
			lockedCount++
			items = append(items, item)
			continue
		}

		if s.userStore != nil {
			partner, userErr := s.userStore.GetByID(ctx, item.PartnerUserID)
			if userErr == nil {
				item.PartnerName = partner.Name
				item.PartnerPhotos = partner.Photos
			} else if !errors.Is(userErr, pgrepo.ErrUserNotFound) {
				return ListResult{}, fmt.Errorf("load match partner: %w", userErr)
			}
		}
		items = append(items, item)
	}

	return ListResult{
		Items:       items,
		Total:       len(rows),
		LockedCount: lockedCount,
	}, nil
}

// Unmatch removes the pair and both underlying swipes so the next right
// swipe from either side starts over instead of instantly re-matching.
func (s *Service) Unmatch(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return ErrValidation
	}
	if s.withTx == nil || s.matchStore == nil || s.swipeStore == nil {
		return fmt.Errorf("unmatch dependencies are not configured")
	}

	return s.withTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		deleted, err := s.matchStore.DeleteByUsers(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrMatchNotFound
		}

		if err := s.swipeStore.DeleteByPair(txCtx, tx, userID, targetID); err != nil {
			return err
		}
		if err := s.swipeStore.DeleteByPair(txCtx, tx, targetID, userID); err != nil {
			return err
		}
		return nil
	})
}

func partnerOf(record pgrepo.MatchRecord, userID int64) int64 {
	if record.UserLowID == userID {
		return record.UserHighID
	}
	return record.UserLowID
}
