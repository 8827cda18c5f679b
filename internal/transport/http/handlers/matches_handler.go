package handlers

import (
	"errors"
	"net/http"
	"strconv"

	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
	matchessvc "github.com/nrattyp233/create-a-date/internal/services/matches"
	"github.com/nrattyp233/create-a-date/internal/transport/http/dto"
	httperrors "github.com/nrattyp233/create-a-date/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	result, err := h.service.List(r.Context(), identity.UserID, limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list matches")
		return
	}

	items := make([]dto.MatchItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, dto.MatchItemResponse{
			ID:            item.ID,
			PartnerUserID: item.PartnerUserID,
			DisplayName:   item.PartnerName,
			Photos:        item.PartnerPhotos,
			Locked:        item.Locked,
			CreatedAt:     item.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{
		Items:       items,
		Total:       result.Total,
		LockedCount: result.LockedCount,
	})
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	var req dto.UnmatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id is required")
		return
	}

	if err := h.service.Unmatch(r.Context(), identity.UserID, req.TargetID); err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrMatchNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "no match with this user")
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unmatch request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to unmatch")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{OK: true})
}
