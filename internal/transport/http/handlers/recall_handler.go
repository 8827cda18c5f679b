package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
	swipesvc "github.com/nrattyp233/create-a-date/internal/services/swipes"
	"github.com/nrattyp233/create-a-date/internal/transport/http/dto"
	httperrors "github.com/nrattyp233/create-a-date/internal/transport/http/errors"
)

type RecallHandler struct {
	service *swipesvc.Service
}

func NewRecallHandler(service *swipesvc.Service) *RecallHandler {
	return &RecallHandler{service: service}
}

func (h *RecallHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	result, err := h.service.Recall(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrPremiumRequired):
			writeForbidden(w, "PREMIUM_REQUIRED", "recall is a premium feature")
		case errors.Is(err, swipesvc.ErrNothingToRecall):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "NOTHING_TO_RECALL",
				Message: "no swipe to recall",
			})
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid recall request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to recall swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RecallResponse{
		OK:              true,
		UndoneTargetID:  result.UndoneTargetID,
		UndoneDirection: result.UndoneDirection,
		MatchRemoved:    result.MatchRemoved,
	})
}
