package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

type OrderRecord struct {
	ID              string
	UserID          int64
	Amount          string
	Currency        string
	Status          string
	ProviderOrderID *string
	ProviderTxID    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const orderColumns = `
id, user_id, amount, currency, status, provider_order_id, provider_tx_id, created_at, updated_at
`

func (r *OrderRepo) CreatePending(ctx context.Context, userID int64, amount, currency string) (OrderRecord, error) {
	if userID <= 0 || strings.TrimSpace(amount) == "" {
		return OrderRecord{}, fmt.Errorf("invalid order payload")
	}
	if r.pool == nil {
		return OrderRecord{}, fmt.Errorf("postgres pool is nil")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}

	orderID := uuid.NewString()
	rec, err := scanOrder(r.pool.QueryRow(ctx, `
INSERT INTO orders (
	id,
	user_id,
	amount,
	currency,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, 'pending', NOW(), NOW())
RETURNING `+orderColumns+`
`, orderID, userID, amount, currency))
	if err != nil {
		return OrderRecord{}, fmt.Errorf("create pending order: %w", err)
	}

	return rec, nil
}

func (r *OrderRepo) AttachProviderOrder(ctx context.Context, orderID, providerOrderID string) error {
	orderID = strings.TrimSpace(orderID)
	providerOrderID = strings.TrimSpace(providerOrderID)
	if orderID == "" || providerOrderID == "" {
		return fmt.Errorf("invalid provider order payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE orders
SET provider_order_id = $2, updated_at = NOW()
WHERE id = $1
`, orderID, providerOrderID)
	if err != nil {
		return fmt.Errorf("attach provider order id: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, orderID string) (OrderRecord, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return OrderRecord{}, fmt.Errorf("invalid order id")
	}
	if r.pool == nil {
		return OrderRecord{}, fmt.Errorf("postgres pool is nil")
	}

	rec, err := scanOrder(r.pool.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE id = $1
LIMIT 1
`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderRecord{}, ErrOrderNotFound
		}
		return OrderRecord{}, fmt.Errorf("find order by id: %w", err)
	}

	return rec, nil
}

func (r *OrderRepo) FindByProviderOrder(ctx context.Context, providerOrderID string) (OrderRecord, error) {
	providerOrderID = strings.TrimSpace(providerOrderID)
	if providerOrderID == "" {
		return OrderRecord{}, fmt.Errorf("invalid provider order id")
	}
	if r.pool == nil {
		return OrderRecord{}, fmt.Errorf("postgres pool is nil")
	}

	rec, err := scanOrder(r.pool.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE provider_order_id = $1
LIMIT 1
`, providerOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderRecord{}, ErrOrderNotFound
		}
		return OrderRecord{}, fmt.Errorf("find order by provider order id: %w", err)
	}

	return rec, nil
}

// MarkPaid transitions pending -> paid exactly once. A second delivery of
// the same capture finds no pending row to update and is reported as
// changed=false with the already-paid record, so webhook redelivery never
// double-counts.
func (r *OrderRepo) MarkPaid(ctx context.Context, orderID, providerTxID, amount string) (OrderRecord, bool, error) {
	orderID = strings.TrimSpace(orderID)
	providerTxID = strings.TrimSpace(providerTxID)
	if orderID == "" || providerTxID == "" {
		return OrderRecord{}, false, fmt.Errorf("invalid mark paid payload")
	}
	if r.pool == nil {
		return OrderRecord{}, false, fmt.Errorf("postgres pool is nil")
	}

	rec, err := scanOrder(r.pool.QueryRow(ctx, `
UPDATE orders
SET
	status = 'paid',
	provider_tx_id = $2,
	amount = COALESCE(NULLIF($3, ''), amount),
	updated_at = NOW()
WHERE id = $1 AND status = 'pending'
RETURNING `+orderColumns+`
`, orderID, providerTxID, strings.TrimSpace(amount)))
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return OrderRecord{}, false, fmt.Errorf("mark order paid: %w", err)
	}

	existing, err := r.FindByID(ctx, orderID)
	if err != nil {
		return OrderRecord{}, false, err
	}

	return existing, false, nil
}

// DeleteStalePending removes pending orders older than the cutoff. Run by
// the background sweeper; abandoned checkouts otherwise accumulate forever.
func (r *OrderRepo) DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}
	if cutoff.IsZero() {
		return 0, fmt.Errorf("cutoff is required")
	}

	result, err := r.pool.Exec(ctx, `
DELETE FROM orders
WHERE status = 'pending' AND created_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete stale pending orders: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanOrder(row pgx.Row) (OrderRecord, error) {
	var rec OrderRecord
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Amount,
		&rec.Currency,
		&rec.Status,
		&rec.ProviderOrderID,
		&rec.ProviderTxID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return OrderRecord{}, err
	}
	return rec, nil
}
