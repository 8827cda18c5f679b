package dto

type PurchaseCreateResponse struct {
	OrderID         string `json:"order_id"`
	ProviderOrderID string `json:"provider_order_id"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
}

type PurchaseCaptureRequest struct {
	OrderID string `json:"order_id"`
}

type PurchaseCaptureResponse struct {
	OK               bool   `json:"ok"`
	OrderID          string `json:"order_id"`
	AlreadyProcessed bool   `json:"already_processed"`
}

// PayPalWebhookEvent mirrors the shape of a PayPal webhook delivery for
// capture events. invoice_id carries the local order id set at creation.
type PayPalWebhookEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		InvoiceID string `json:"invoice_id"`
		Amount    struct {
			Value        string `json:"value"`
			CurrencyCode string `json:"currency_code"`
		} `json:"amount"`
	} `json:"resource"`
}

type PurchaseWebhookResponse struct {
	OK         bool   `json:"ok"`
	OrderID    string `json:"order_id,omitempty"`
	Idempotent bool   `json:"idempotent"`
}

type EntitlementsResponse struct {
	IsPremium          bool `json:"is_premium"`
	MessagesSent       int  `json:"messages_sent"`
	FreeMessageCap     int  `json:"free_message_cap"`
	CanSendMessage     bool `json:"can_send_message"`
	FreeVisibleMatches int  `json:"free_visible_matches"`
	CanRecall          bool `json:"can_recall"`
	CanUseAI           bool `json:"can_use_ai"`
}
