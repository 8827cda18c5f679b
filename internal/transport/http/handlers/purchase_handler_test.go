package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nrattyp233/create-a-date/internal/infra/paypal"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
	paymentsvc "github.com/nrattyp233/create-a-date/internal/services/payments"
)

type handlerOrderStoreStub struct {
	orders map[string]pgrepo.OrderRecord
}

func newHandlerOrderStoreStub() *handlerOrderStoreStub {
	return &handlerOrderStoreStub{orders: map[string]pgrepo.OrderRecord{}}
}

func (s *handlerOrderStoreStub) CreatePending(_ context.Context, userID int64, amount, currency string) (pgrepo.OrderRecord, error) {
	record := pgrepo.OrderRecord{
		ID:       fmt.Sprintf("order-%d", len(s.orders)+1),
		UserID:   userID,
		Amount:   amount,
		Currency: currency,
		Status:   "pending",
	}
	s.orders[record.ID] = record
	return record, nil
}

func (s *handlerOrderStoreStub) AttachProviderOrder(_ context.Context, orderID, providerOrderID string) error {
	record, ok := s.orders[orderID]
	if !ok {
		return pgrepo.ErrOrderNotFound
	}
	record.ProviderOrderID = &providerOrderID
	s.orders[orderID] = record
	return nil
}

func (s *handlerOrderStoreStub) FindByID(_ context.Context, orderID string) (pgrepo.OrderRecord, error) {
	record, ok := s.orders[orderID]
	if !ok {
		return pgrepo.OrderRecord{}, pgrepo.ErrOrderNotFound
	}
	return record, nil
}

func (s *handlerOrderStoreStub) FindByProviderOrder(_ context.Context, providerOrderID string) (pgrepo.OrderRecord, error) {
	for _, record := range s.orders {
		if record.ProviderOrderID != nil && *record.ProviderOrderID == providerOrderID {
			return record, nil
		}
	}
	return pgrepo.OrderRecord{}, pgrepo.ErrOrderNotFound
}

func (s *handlerOrderStoreStub) MarkPaid(_ context.Context, orderID, providerTxID, _ string) (pgrepo.OrderRecord, bool, error) {
	record, ok := s.orders[orderID]
	if !ok {
		return pgrepo.OrderRecord{}, false, pgrepo.ErrOrderNotFound
	}
	if record.Status != "pending" {
		return record, false, nil
	}
	record.Status = "paid"
	record.ProviderTxID = &providerTxID
	s.orders[orderID] = record
	return record, true, nil
}

type handlerPremiumStoreStub struct {
	premium  map[int64]bool
	setCalls int
}

func (s *handlerPremiumStoreStub) SetPremium(_ context.Context, userID int64, premium bool) error {
	if s.premium == nil {
		s.premium = map[int64]bool{}
	}
	s.premium[userID] = premium
	s.setCalls++
	return nil
}

func (s *handlerPremiumStoreStub) GetPremium(_ context.Context, userID int64) (bool, error) {
	return s.premium[userID], nil
}

type handlerProviderStub struct{}

func (handlerProviderStub) CreateOrder(_ context.Context, invoiceID, _, _ string) (paypal.Order, error) {
	return paypal.Order{ID: "PAYPAL-" + invoiceID, Status: "CREATED"}, nil
}

func (handlerProviderStub) CaptureOrder(_ context.Context, providerOrderID string) (paypal.Capture, error) {
	return paypal.Capture{OrderID: providerOrderID, CaptureID: "CAP-1", Status: "COMPLETED"}, nil
}

type handlerInvalidatorStub struct {
	calls int
}

func (s *handlerInvalidatorStub) InvalidatePremium(_ context.Context, _ int64) {
	s.calls++
}

func TestPurchaseWebhookGrantsPremiumExactlyOnce(t *testing.T) {
	orders := newHandlerOrderStoreStub()
	users := &handlerPremiumStoreStub{}
	invalidator := &handlerInvalidatorStub{}
	svc := paymentsvc.NewService(paymentsvc.Dependencies{
		Orders:      orders,
		Users:       users,
		Provider:    handlerProviderStub{},
		Invalidator: invalidator,
	}, paymentsvc.Config{})

	created, err := svc.CreateOrder(context.Background(), 7)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	h := NewPurchaseHandler(svc, nil)

	deliver := func() *httptest.ResponseRecorder {
		body, marshalErr := json.Marshal(map[string]any{
			"event_type": "PAYMENT.CAPTURE.COMPLETED",
			"resource": map[string]any{
				"id":         "CAP-1",
				"status":     "COMPLETED",
				"invoice_id": created.OrderID,
				"amount":     map[string]any{"value": "10.00", "currency_code": "USD"},
			},
		})
		if marshalErr != nil {
			t.Fatalf("marshal webhook body: %v", marshalErr)
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/purchase/webhook", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h.Webhook(rec, req)
		return rec
	}

	first := deliver()
	if first.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", first.Code, http.StatusOK)
	}

	var firstPayload struct {
		OK         bool   `json:"ok"`
		OrderID    string `json:"order_id"`
		Idempotent bool   `json:"idempotent"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &firstPayload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !firstPayload.OK || firstPayload.Idempotent {
		t.Fatalf("unexpected first delivery payload: %+v", firstPayload)
	}
	if !users.premium[7] {
		t.Fatal("expected premium granted after capture event")
	}
	if invalidator.calls != 1 {
		t.Fatalf("expected one cache invalidation, got %d", invalidator.calls)
	}

	second := deliver()
	if second.Code != http.StatusOK {
		t.Fatalf("unexpected replay status: got %d want %d", second.Code, http.StatusOK)
	}

	var secondPayload struct {
		Idempotent bool `json:"idempotent"`
	}
	if err := json.Unmarshal(second.Body.Bytes(), &secondPayload); err != nil {
		t.Fatalf("decode replay response: %v", err)
	}
	if !secondPayload.Idempotent {
		t.Fatal("expected replay to be reported idempotent")
	}
	if users.setCalls != 1 {
		t.Fatalf("premium must be written exactly once, got %d writes", users.setCalls)
	}
}

func TestPurchaseWebhookRejectsMalformedBody(t *testing.T) {
	svc := paymentsvc.NewService(paymentsvc.Dependencies{
		Orders:   newHandlerOrderStoreStub(),
		Users:    &handlerPremiumStoreStub{},
		Provider: handlerProviderStub{},
	}, paymentsvc.Config{})
	h := NewPurchaseHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/purchase/webhook", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}
