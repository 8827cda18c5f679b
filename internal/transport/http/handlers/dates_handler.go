package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
	datessvc "github.com/nrattyp233/create-a-date/internal/services/dates"
	"github.com/nrattyp233/create-a-date/internal/transport/http/dto"
	httperrors "github.com/nrattyp233/create-a-date/internal/transport/http/errors"
)

type DatesHandler struct {
	service *datessvc.Service
}

func NewDatesHandler(service *datessvc.Service) *DatesHandler {
	return &DatesHandler{service: service}
}

func (h *DatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DATE_SERVICE_UNAVAILABLE", "date post service is unavailable")
		return
	}

	var req dto.DatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	post, err := h.service.Create(r.Context(), identity.UserID, datessvc.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		DateTime:    req.DateTime,
		Categories:  req.Categories,
	})
	if err != nil {
		handleDateError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapDatePost(post))
}

func (h *DatesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DATE_SERVICE_UNAVAILABLE", "date post service is unavailable")
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

	posts, err := h.service.List(r.Context(), limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list date posts")
		return
	}

	items := make([]dto.DatePostResponse, 0, len(posts))
	for _, post := range posts {
		items = append(items, mapDatePost(post))
	}

	httperrors.Write(w, http.StatusOK, dto.DatePostsResponse{Items: items})
}

func (h *DatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DATE_SERVICE_UNAVAILABLE", "date post service is unavailable")
		return
	}

	postID, ok := datePostID(w, r)
	if !ok {
		return
	}

	post, err := h.service.Get(r.Context(), postID)
	if err != nil {
		handleDateError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapDatePost(post))
}

func (h *DatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DATE_SERVICE_UNAVAILABLE", "date post service is unavailable")
		return
	}

	postID, ok := datePostID(w, r)
	if !ok {
		return
	}

	var req dto.DatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	post, err := h.service.Update(r.Context(), identity.UserID, model.DatePost{
		ID:          postID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		DateTime:    req.DateTime,
		Categories:  req.Categories,
	})
	if err != nil {
		handleDateError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapDatePost(post))
}

func (h *DatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DATE_SERVICE_UNAVAILABLE", "date post service is unavailable")
		return
	}

	postID, ok := datePostID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, postID); err != nil {
		handleDateError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DateDeleteResponse{OK: true})
}

func (h *DatesHandler) Apply(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DATE_SERVICE_UNAVAILABLE", "date post service is unavailable")
		return
	}

	postID, ok := datePostID(w, r)
	if !ok {
		return
	}

	post, applied, err := h.service.Apply(r.Context(), identity.UserID, postID)
	if err != nil {
		handleDateError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DateApplyResponse{
		OK:      true,
		Applied: applied,
		Post:    mapDatePost(post),
	})
}

func (h *DatesHandler) Choose(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DATE_SERVICE_UNAVAILABLE", "date post service is unavailable")
		return
	}

	postID, ok := datePostID(w, r)
	if !ok {
		return
	}

	var req dto.DateChooseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	post, err := h.service.Choose(r.Context(), identity.UserID, postID, req.ApplicantID)
	if err != nil {
		handleDateError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapDatePost(post))
}

func handleDateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, datessvc.ErrNotFound):
		writeNotFound(w, "DATE_POST_NOT_FOUND", "date post not found")
	case errors.Is(err, datessvc.ErrNotOwner):
		writeForbidden(w, "NOT_OWNER", "only the author can modify this date post")
	case errors.Is(err, datessvc.ErrOwnDatePost):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "OWN_DATE_POST",
			Message: "cannot apply to your own date post",
		})
	case errors.Is(err, datessvc.ErrNotApplicant):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "NOT_AN_APPLICANT",
			Message: "chosen user has not applied",
		})
	case errors.Is(err, datessvc.ErrPastDate):
		writeBadRequest(w, "VALIDATION_ERROR", "date must be in the future")
	case errors.Is(err, datessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid date post payload")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process date post request")
	}
}

func datePostID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || postID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "id must be a positive integer")
		return 0, false
	}
	return postID, true
}

func mapDatePost(post model.DatePost) dto.DatePostResponse {
	return dto.DatePostResponse{
		ID:                post.ID,
		CreatedBy:         post.CreatedBy,
		Title:             post.Title,
		Description:       post.Description,
		Location:          post.Location,
		DateTime:          post.DateTime,
		Categories:        post.Categories,
		Applicants:        post.Applicants,
		ChosenApplicantID: post.ChosenApplicantID,
		CreatedAt:         post.CreatedAt,
	}
}
