package handlers

import (
	"errors"
	"net/http"

	"github.com/nrattyp233/create-a-date/internal/domain/enums"
	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
	swipesvc "github.com/nrattyp233/create-a-date/internal/services/swipes"
	"github.com/nrattyp233/create-a-date/internal/transport/http/dto"
	httperrors "github.com/nrattyp233/create-a-date/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	result, err := h.service.Swipe(r.Context(), identity.UserID, req.TargetID, enums.SwipeDirection(req.Direction))
	if err != nil {
		var tooFast swipesvc.TooFastError
		switch {
		case errors.Is(err, swipesvc.ErrInvalidDirection):
			writeBadRequest(w, "VALIDATION_ERROR", "direction must be left or right")
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.As(err, &tooFast):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "too many swipes, slow down",
				RetryAfterSec: tooFast.RetryAfterSec,
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:      true,
		IsMatch: result.IsMatch,
		MatchID: result.MatchID,
	})
}
