package model

import (
	"time"

	"github.com/nrattyp233/create-a-date/internal/domain/enums"
)

type Order struct {
	ID              string            `json:"id"`
	UserID          int64             `json:"user_id"`
	Amount          string            `json:"amount"`
	Currency        string            `json:"currency"`
	Status          enums.OrderStatus `json:"status"`
	ProviderOrderID *string           `json:"provider_order_id,omitempty"`
	ProviderTxID    *string           `json:"provider_tx_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
