package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type OrderSweeper interface {
	DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type DatePostSweeper interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type Job struct {
	orders        OrderSweeper
	datePosts     DatePostSweeper
	pendingTTL    time.Duration
	dateRetention time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

func New(orders OrderSweeper, datePosts DatePostSweeper, pendingTTL time.Duration, logger *zap.Logger) *Job {
	if pendingTTL <= 0 {
		pendingTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		orders:        orders,
		datePosts:     datePosts,
		pendingTTL:    pendingTTL,
		dateRetention: 24 * time.Hour,
		now:           time.Now,
		logger:        logger,
	}
}

// SetDateRetention controls how long a date post survives past its
// scheduled time before the sweep removes it.
func (j *Job) SetDateRetention(retention time.Duration) {
	if retention > 0 {
		j.dateRetention = retention
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.orders != nil {
		cutoff := j.now().Add(-j.pendingTTL)
		rows, err := j.orders.DeleteStalePending(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("cleanup stale pending orders: %w", err)
		}
		if rows > 0 {
			j.logger.Info("cleanup stale pending orders completed", zap.Int64("deleted", rows))
		}
	}

	if j.datePosts != nil {
		cutoff := j.now().Add(-j.dateRetention)
		rows, err := j.datePosts.DeleteExpired(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("cleanup expired date posts: %w", err)
		}
		if rows > 0 {
			j.logger.Info("cleanup expired date posts completed", zap.Int64("deleted", rows))
		}
	}

	return nil
}
