package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSwipeNotFound = errors.New("swipe not found")

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ID           int64
	ActorUserID  int64
	TargetUserID int64
	Direction    string
	CreatedAt    time.Time
}

// Upsert records a directional decision for the (actor, target) pair. A
// repeat decision for the same pair overwrites the previous one; the latest
// write wins.
func (r *SwipeRepo) Upsert(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, direction string, now time.Time) (SwipeRecord, error) {
	if actorUserID <= 0 || targetUserID <= 0 || strings.TrimSpace(direction) == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	direction,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (actor_user_id, target_user_id) DO UPDATE SET
	direction = EXCLUDED.direction,
	created_at = EXCLUDED.created_at
RETURNING id, actor_user_id, target_user_id, direction, created_at
`, actorUserID, targetUserID, strings.ToLower(strings.TrimSpace(direction)), now.UTC()).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Direction,
		&rec.CreatedAt,
	)
	if err != nil {
		return SwipeRecord{}, fmt.Errorf("upsert swipe: %w", err)
	}

	return rec, nil
}

// GetByPair returns the decision actorUserID recorded about targetUserID.
func (r *SwipeRepo) GetByPair(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (SwipeRecord, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return SwipeRecord{}, fmt.Errorf("invalid swipe lookup payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
SELECT id, actor_user_id, target_user_id, direction, created_at
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2
LIMIT 1
`, actorUserID, targetUserID).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Direction,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeNotFound
		}
		return SwipeRecord{}, fmt.Errorf("get swipe by pair: %w", err)
	}

	return rec, nil
}

// GetLastByActor returns the actor's most recent decision. It backs the
// recall operation, which must resolve the target server-side rather than
// trusting client-held state.
func (r *SwipeRepo) GetLastByActor(ctx context.Context, tx pgx.Tx, actorUserID int64) (SwipeRecord, error) {
	if actorUserID <= 0 {
		return SwipeRecord{}, fmt.Errorf("invalid actor user id")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
SELECT id, actor_user_id, target_user_id, direction, created_at
FROM swipes
WHERE actor_user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`, actorUserID).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Direction,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeNotFound
		}
		return SwipeRecord{}, fmt.Errorf("get last swipe by actor: %w", err)
	}

	return rec, nil
}

func (r *SwipeRepo) DeleteByPair(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) error {
	if actorUserID <= 0 || targetUserID <= 0 {
		return fmt.Errorf("invalid swipe delete payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
DELETE FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2
`, actorUserID, targetUserID)
	if err != nil {
		return fmt.Errorf("delete swipe: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSwipeNotFound
	}
	return nil
}

// ListTargetsByDirection returns the set of target ids the actor has decided
// on with the given direction. Used to build candidate-pool exclusion sets.
func (r *SwipeRepo) ListTargetsByDirection(ctx context.Context, actorUserID int64, direction string) ([]int64, error) {
	if actorUserID <= 0 || strings.TrimSpace(direction) == "" {
		return nil, fmt.Errorf("invalid swipe list payload")
	}
	if r.pool == nil {
		return []int64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT target_user_id
FROM swipes
WHERE actor_user_id = $1 AND direction = $2
ORDER BY target_user_id
`, actorUserID, strings.ToLower(strings.TrimSpace(direction)))
	if err != nil {
		return nil, fmt.Errorf("list swipe targets: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 32)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan swipe target: %w", err)
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate swipe targets: %w", rows.Err())
	}

	return ids, nil
}
