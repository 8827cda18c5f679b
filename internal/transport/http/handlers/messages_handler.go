package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
	messagessvc "github.com/nrattyp233/create-a-date/internal/services/messages"
	"github.com/nrattyp233/create-a-date/internal/transport/http/dto"
	httperrors "github.com/nrattyp233/create-a-date/internal/transport/http/errors"
)

type MessagesHandler struct {
	service *messagessvc.Service
}

func NewMessagesHandler(service *messagessvc.Service) *MessagesHandler {
	return &MessagesHandler{service: service}
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.service.Send(r.Context(), identity.UserID, req.ReceiverID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, messagessvc.ErrNotMatched):
			writeForbidden(w, "NOT_MATCHED", "messaging requires a match")
		case errors.Is(err, messagessvc.ErrMessageCap):
			writeForbidden(w, "MESSAGE_CAP_REACHED", "free message limit reached")
		case errors.Is(err, messagessvc.ErrMessageTooLong):
			writeBadRequest(w, "VALIDATION_ERROR", "message is too long")
		case errors.Is(err, messagessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "receiver_id and text are required")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to send message")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SendMessageResponse{
		Message:   mapMessage(result.Message),
		Sent:      result.Sent,
		Remaining: result.Remaining,
	})
}

func (h *MessagesHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	otherID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil || otherID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "user_id must be a positive integer")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil || parsed < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	records, err := h.service.Conversation(r.Context(), identity.UserID, otherID, limit)
	if err != nil {
		switch {
		case errors.Is(err, messagessvc.ErrNotMatched):
			writeForbidden(w, "NOT_MATCHED", "messaging requires a match")
		case errors.Is(err, messagessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load conversation")
		}
		return
	}

	items := make([]dto.MessageResponse, 0, len(records))
	for _, record := range records {
		items = append(items, mapMessage(record))
	}

	httperrors.Write(w, http.StatusOK, dto.ConversationResponse{Items: items})
}

func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	var req dto.MarkReadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.MarkRead(r.Context(), identity.UserID, req.SenderID); err != nil {
		switch {
		case errors.Is(err, messagessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "sender_id is required")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to mark conversation read")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{OK: true})
}

func mapMessage(record pgrepo.MessageRecord) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         record.ID,
		SenderID:   record.SenderID,
		ReceiverID: record.ReceiverID,
		Text:       record.Text,
		Read:       record.Read,
		CreatedAt:  record.CreatedAt,
	}
}
