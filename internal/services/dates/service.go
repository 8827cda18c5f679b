package dates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("date post not found")
	ErrNotOwner     = errors.New("not the date post owner")
	ErrOwnDatePost  = errors.New("cannot apply to own date post")
	ErrNotApplicant = errors.New("user has not applied")
	ErrPastDate     = errors.New("date is in the past")
)

type DatePostStore interface {
	Create(ctx context.Context, post model.DatePost) (model.DatePost, error)
	List(ctx context.Context, limit int) ([]model.DatePost, error)
	GetByID(ctx context.Context, postID int64) (model.DatePost, error)
	Update(ctx context.Context, post model.DatePost) (model.DatePost, error)
	Delete(ctx context.Context, postID int64) error
}

type CreateInput struct {
	Title       string
	Description string
	Location    string
	DateTime    time.Time
	Categories  []string
}

type Service struct {
	store DatePostStore
	now   func() time.Time
}

func NewService(store DatePostStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) Create(ctx context.Context, userID int64, input CreateInput) (model.DatePost, error) {
	if userID <= 0 || strings.TrimSpace(input.Title) == "" {
		return model.DatePost{}, ErrValidation
	}
	if input.DateTime.IsZero() || input.DateTime.Before(s.now()) {
		return model.DatePost{}, ErrPastDate
	}
	if s.store == nil {
		return model.DatePost{}, fmt.Errorf("date post store is nil")
	}

	return s.store.Create(ctx, model.DatePost{
		CreatedBy:   userID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		DateTime:    input.DateTime.UTC(),
		Categories:  input.Categories,
		Applicants:  []int64{},
	})
}

func (s *Service) List(ctx context.Context, limit int) ([]model.DatePost, error) {
	if s.store == nil {
		return nil, fmt.Errorf("date post store is nil")
	}
	return s.store.List(ctx, limit)
}

func (s *Service) Get(ctx context.Context, postID int64) (model.DatePost, error) {
	if postID <= 0 {
		return model.DatePost{}, ErrValidation
	}
	if s.store == nil {
		return model.DatePost{}, fmt.Errorf("date post store is nil")
	}

	post, err := s.store.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrDatePostNotFound) {
			return model.DatePost{}, ErrNotFound
		}
		return model.DatePost{}, err
	}
	return post, nil
}

func (s *Service) Update(ctx context.Context, userID int64, post model.DatePost) (model.DatePost, error) {
	if userID <= 0 || post.ID <= 0 || strings.TrimSpace(post.Title) == "" {
		return model.DatePost{}, ErrValidation
	}

	existing, err := s.Get(ctx, post.ID)
	if err != nil {
		return model.DatePost{}, err
	}
	if existing.CreatedBy != userID {
		return model.DatePost{}, ErrNotOwner
	}

	// Applicants and the chosen applicant are managed by Apply/Choose,
	// not by profile edits.
	post.CreatedBy = existing.CreatedBy
	post.Applicants = existing.Applicants
	post.ChosenApplicantID = existing.ChosenApplicantID

	return s.store.Update(ctx, post)
}

func (s *Service) Delete(ctx context.Context, userID, postID int64) error {
	if userID <= 0 || postID <= 0 {
		return ErrValidation
	}

	existing, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if existing.CreatedBy != userID {
		return ErrNotOwner
	}

	return s.store.Delete(ctx, postID)
}

// Apply toggles the user's application on a date post: applying twice
// withdraws.
func (s *Service) Apply(ctx context.Context, userID, postID int64) (model.DatePost, bool, error) {
	if userID <= 0 || postID <= 0 {
		return model.DatePost{}, false, ErrValidation
	}

	post, err := s.Get(ctx, postID)
	if err != nil {
		return model.DatePost{}, false, err
	}
	if post.CreatedBy == userID {
		return model.DatePost{}, false, ErrOwnDatePost
	}

	applied := false
	next := make([]int64, 0, len(post.Applicants)+1)
	for _, id := range post.Applicants {
		if id == userID {
			continue
		}
		next = append(next, id)
	}
	if len(next) == len(post.Applicants) {
		next = append(next, userID)
		applied = true
	}
	post.Applicants = next

	if !applied && post.ChosenApplicantID != nil && *post.ChosenApplicantID == userID {
		post.ChosenApplicantID = nil
	}

	updated, err := s.store.Update(ctx, post)
	if err != nil {
		return model.DatePost{}, false, err
	}

	return updated, applied, nil
}

// Choose picks one applicant as the date. Owner only.
func (s *Service) Choose(ctx context.Context, userID, postID, applicantID int64) (model.DatePost, error) {
	if userID <= 0 || postID <= 0 || applicantID <= 0 {
		return model.DatePost{}, ErrValidation
	}

	post, err := s.Get(ctx, postID)
	if err != nil {
		return model.DatePost{}, err
	}
	if post.CreatedBy != userID {
		return model.DatePost{}, ErrNotOwner
	}

	found := false
	for _, id := range post.Applicants {
		if id == applicantID {
			found = true
			break
		}
	}
	if !found {
		return model.DatePost{}, ErrNotApplicant
	}

	post.ChosenApplicantID = &applicantID
	return s.store.Update(ctx, post)
}
