package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
	dateideassvc "github.com/nrattyp233/create-a-date/internal/services/dateideas"
	"github.com/nrattyp233/create-a-date/internal/transport/http/dto"
	httperrors "github.com/nrattyp233/create-a-date/internal/transport/http/errors"
)

type AIHandler struct {
	service *dateideassvc.Service
}

func NewAIHandler(service *dateideassvc.Service) *AIHandler {
	return &AIHandler{service: service}
}

func (h *AIHandler) DateIdea(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireService(w, r)
	if !ok {
		return
	}

	var req dto.DateIdeaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	idea, err := h.service.GenerateDateIdea(r.Context(), identity.UserID, req.PartnerID)
	if err != nil {
		handleAIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DateIdeaResponse{
		Title:       idea.Title,
		Description: idea.Description,
		Location:    idea.Location,
		Category:    idea.Category,
	})
}

func (h *AIHandler) Icebreakers(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireService(w, r)
	if !ok {
		return
	}

	var req dto.IcebreakersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	items, err := h.service.Icebreakers(r.Context(), identity.UserID, req.PartnerID)
	if err != nil {
		handleAIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.IcebreakersResponse{Items: items})
}

func (h *AIHandler) Locations(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireService(w, r)
	if !ok {
		return
	}

	var req dto.LocationsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	suggestions, err := h.service.LocationSuggestions(r.Context(), identity.UserID, req.Area, req.Activity)
	if err != nil {
		handleAIError(w, err)
		return
	}

	items := make([]dto.LocationSuggestionResponse, 0, len(suggestions))
	for _, suggestion := range suggestions {
		items = append(items, dto.LocationSuggestionResponse{
			Name:        suggestion.Name,
			Description: suggestion.Description,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.LocationsResponse{Items: items})
}

func (h *AIHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireService(w, r)
	if !ok {
		return
	}

	var req dto.EnhanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	enhanced, err := h.service.EnhanceDescription(r.Context(), identity.UserID, req.Description)
	if err != nil {
		handleAIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EnhanceResponse{Description: enhanced})
}

func (h *AIHandler) PhotoOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.requireService(w, r)
	if !ok {
		return
	}

	order, err := h.service.PhotoOrder(r.Context(), identity.UserID)
	if err != nil {
		handleAIError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PhotoOrderResponse{Order: order})
}

func (h *AIHandler) requireService(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	if h.service == nil {
		writeInternal(w, "AI_SERVICE_UNAVAILABLE", "ai service is unavailable")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func handleAIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dateideassvc.ErrPremiumRequired):
		writeForbidden(w, "PREMIUM_REQUIRED", "ai features require premium")
	case errors.Is(err, dateideassvc.ErrBadCompletion):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "AI_BAD_COMPLETION",
			Message: "ai returned an unusable response",
		})
	case errors.Is(err, dateideassvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid ai request")
	default:
		writeInternal(w, "INTERNAL_ERROR", "ai request failed")
	}
}
