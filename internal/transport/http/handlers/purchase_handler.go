package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
	entsvc "github.com/nrattyp233/create-a-date/internal/services/entitlements"
	paymentsvc "github.com/nrattyp233/create-a-date/internal/services/payments"
	"github.com/nrattyp233/create-a-date/internal/transport/http/dto"
	httperrors "github.com/nrattyp233/create-a-date/internal/transport/http/errors"
)

type PurchaseHandler struct {
	payments     *paymentsvc.Service
	entitlements *entsvc.Service
}

func NewPurchaseHandler(payments *paymentsvc.Service, entitlements *entsvc.Service) *PurchaseHandler {
	return &PurchaseHandler{
		payments:     payments,
		entitlements: entitlements,
	}
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	result, err := h.payments.CreateOrder(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrAlreadyPremium):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "ALREADY_PREMIUM",
				Message: "account already has premium",
			})
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create order")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PurchaseCreateResponse{
		OrderID:         result.OrderID,
		ProviderOrderID: result.ProviderOrderID,
		Amount:          result.Amount,
		Currency:        result.Currency,
	})
}

func (h *PurchaseHandler) Capture(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	var req dto.PurchaseCaptureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.payments.Capture(r.Context(), identity.UserID, req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrOrderNotFound):
			writeNotFound(w, "ORDER_NOT_FOUND", "order not found")
		case errors.Is(err, paymentsvc.ErrOrderNotOwned):
			writeForbidden(w, "ORDER_NOT_OWNED", "order belongs to another account")
		case errors.Is(err, paymentsvc.ErrCaptureFailed):
			httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
				Code:    "CAPTURE_FAILED",
				Message: "payment provider did not complete the capture",
			})
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "order_id is required")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to capture order")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PurchaseCaptureResponse{
		OK:               true,
		OrderID:          result.OrderID,
		AlreadyProcessed: result.AlreadyProcessed,
	})
}

func (h *PurchaseHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	var event dto.PayPalWebhookEvent
	if err := decodeJSON(r, &event); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid webhook payload")
		return
	}

	result, err := h.payments.HandleCaptureEvent(r.Context(), paymentsvc.WebhookEvent{
		EventType: event.EventType,
		CaptureID: event.Resource.ID,
		InvoiceID: event.Resource.InvoiceID,
		Amount:    event.Resource.Amount.Value,
	})
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrOrderNotFound):
			writeNotFound(w, "ORDER_NOT_FOUND", "order not found")
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid webhook payload")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process webhook")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PurchaseWebhookResponse{
		OK:         true,
		OrderID:    result.OrderID,
		Idempotent: result.AlreadyProcessed,
	})
}

func (h *PurchaseHandler) Entitlements(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.entitlements == nil {
		writeInternal(w, "ENTITLEMENT_SERVICE_UNAVAILABLE", "entitlement service is unavailable")
		return
	}

	snapshot, err := h.entitlements.Get(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load entitlements")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EntitlementsResponse{
		IsPremium:          snapshot.IsPremium,
		MessagesSent:       snapshot.MessagesSent,
		FreeMessageCap:     snapshot.FreeMessageCap,
		CanSendMessage:     snapshot.CanSendMessage,
		FreeVisibleMatches: snapshot.FreeVisibleMatches,
		CanRecall:          snapshot.CanRecall,
		CanUseAI:           snapshot.CanUseAI,
	})
}
