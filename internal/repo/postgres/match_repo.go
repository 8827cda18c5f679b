package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchRecord struct {
	ID         int64
	UserLowID  int64
	UserHighID int64
	CreatedAt  time.Time
}

func canonicalPair(userID, targetID int64) (int64, int64) {
	if userID > targetID {
		return targetID, userID
	}
	return userID, targetID
}

// InsertOrGet creates the canonical match row for the pair, or returns the
// existing one. The unique constraint on (user_low_id, user_high_id) is the
// sole concurrency safeguard: when two mutual right-swipes race, one insert
// wins and the other observes the winner's row. Both callers see the same
// match either way.
func (r *MatchRepo) InsertOrGet(ctx context.Context, tx pgx.Tx, userID, targetID int64) (MatchRecord, bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return MatchRecord{}, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return MatchRecord{}, false, fmt.Errorf("transaction is required")
	}

	low, high := canonicalPair(userID, targetID)

	var rec MatchRecord
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_low_id,
	user_high_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (user_low_id, user_high_id) DO NOTHING
RETURNING id, user_low_id, user_high_id, created_at
`, low, high).Scan(&rec.ID, &rec.UserLowID, &rec.UserHighID, &rec.CreatedAt)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return MatchRecord{}, false, fmt.Errorf("create match: %w", err)
	}

	err = tx.QueryRow(ctx, `
SELECT id, user_low_id, user_high_id, created_at
FROM matches
WHERE user_low_id = $1 AND user_high_id = $2
LIMIT 1
`, low, high).Scan(&rec.ID, &rec.UserLowID, &rec.UserHighID, &rec.CreatedAt)
	if err != nil {
		return MatchRecord{}, false, fmt.Errorf("get existing match: %w", err)
	}

	return rec, false, nil
}

// ListForUser returns the user's matches oldest first, matching the order in
// which the free-tier visibility window is applied.
func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]MatchRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_low_id, user_high_id, created_at
FROM matches
WHERE user_low_id = $1 OR user_high_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchRecord, 0, limit)
	for rows.Next() {
		var rec MatchRecord
		if err := rows.Scan(&rec.ID, &rec.UserLowID, &rec.UserHighID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

// PartnerIDs returns the ids of everyone the user is matched with, for the
// candidate-pool exclusion set.
func (r *MatchRepo) PartnerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []int64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT CASE WHEN user_low_id = $1 THEN user_high_id ELSE user_low_id END
FROM matches
WHERE user_low_id = $1 OR user_high_id = $1
ORDER BY 1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list match partners: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 16)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan match partner: %w", err)
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate match partners: %w", rows.Err())
	}

	return ids, nil
}

func (r *MatchRepo) HasPair(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid match pair")
	}
	if r.pool == nil {
		return false, nil
	}

	low, high := canonicalPair(userID, targetID)

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM matches
	WHERE user_low_id = $1 AND user_high_id = $2
)
`, low, high).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check match pair: %w", err)
	}

	return exists, nil
}

func (r *MatchRepo) DeleteByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid match delete payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	low, high := canonicalPair(userID, targetID)

	result, err := tx.Exec(ctx, `
DELETE FROM matches
WHERE user_low_id = $1 AND user_high_id = $2
`, low, high)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
