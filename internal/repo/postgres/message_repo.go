package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

type MessageRecord struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Text       string
	Read       bool
	CreatedAt  time.Time
}

func (r *MessageRepo) Insert(ctx context.Context, senderID, receiverID int64, text string) (MessageRecord, error) {
	if senderID <= 0 || receiverID <= 0 || strings.TrimSpace(text) == "" {
		return MessageRecord{}, fmt.Errorf("invalid message payload")
	}
	if r.pool == nil {
		return MessageRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec MessageRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO messages (
	sender_id,
	receiver_id,
	text,
	read,
	created_at
) VALUES ($1, $2, $3, FALSE, NOW())
RETURNING id, sender_id, receiver_id, text, read, created_at
`, senderID, receiverID, text).Scan(
		&rec.ID,
		&rec.SenderID,
		&rec.ReceiverID,
		&rec.Text,
		&rec.Read,
		&rec.CreatedAt,
	)
	if err != nil {
		return MessageRecord{}, fmt.Errorf("insert message: %w", err)
	}

	return rec, nil
}

// CountBySender returns the total number of outbound messages the user has
// ever sent. The free-tier gate compares this against the cap.
func (r *MessageRepo) CountBySender(ctx context.Context, senderID int64) (int, error) {
	if senderID <= 0 {
		return 0, fmt.Errorf("invalid sender id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM messages
WHERE sender_id = $1
`, senderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sent messages: %w", err)
	}

	return count, nil
}

func (r *MessageRepo) ListConversation(ctx context.Context, userID, otherID int64, limit int) ([]MessageRecord, error) {
	if userID <= 0 || otherID <= 0 {
		return nil, fmt.Errorf("invalid conversation payload")
	}
	if limit <= 0 {
		limit = 200
	}
	if r.pool == nil {
		return []MessageRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, sender_id, receiver_id, text, read, created_at
FROM messages
WHERE
	(sender_id = $1 AND receiver_id = $2)
	OR (sender_id = $2 AND receiver_id = $1)
ORDER BY created_at ASC, id ASC
LIMIT $3
`, userID, otherID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()

	items := make([]MessageRecord, 0, limit)
	for rows.Next() {
		var rec MessageRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.SenderID,
			&rec.ReceiverID,
			&rec.Text,
			&rec.Read,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate conversation: %w", rows.Err())
	}

	return items, nil
}

func (r *MessageRepo) MarkConversationRead(ctx context.Context, readerID, senderID int64) error {
	if readerID <= 0 || senderID <= 0 {
		return fmt.Errorf("invalid mark read payload")
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE messages
SET read = TRUE
WHERE receiver_id = $1 AND sender_id = $2 AND read = FALSE
`, readerID, senderID); err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}

	return nil
}
