package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("user not found")
)

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
	List(ctx context.Context, limit int) ([]model.User, error)
	UpdateProfile(ctx context.Context, user model.User) (model.User, error)
}

type ExclusionProvider interface {
	Exclusions(ctx context.Context, userID int64) ([]int64, error)
}

type UpdateInput struct {
	Name      string
	Age       int
	Bio       string
	Gender    string
	Photos    []string
	Interests []string
}

type Service struct {
	store      UserStore
	exclusions ExclusionProvider
}

func NewService(store UserStore, exclusions ExclusionProvider) *Service {
	return &Service{
		store:      store,
		exclusions: exclusions,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, ErrValidation
	}
	if s.store == nil {
		return model.User{}, fmt.Errorf("user store is nil")
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

// Deck returns candidate profiles for the swipe deck: everyone except the
// viewer and anyone they have already swiped on or matched with.
func (s *Service) Deck(ctx context.Context, userID int64, limit int) ([]model.User, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("user store is nil")
	}

	excluded := map[int64]struct{}{userID: {}}
	if s.exclusions != nil {
		ids, err := s.exclusions.Exclusions(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load deck exclusions: %w", err)
		}
		for _, id := range ids {
			excluded[id] = struct{}{}
		}
	}

	candidates, err := s.store.List(ctx, limit+len(excluded))
	if err != nil {
		return nil, err
	}

	deck := make([]model.User, 0, limit)
	for _, candidate := range candidates {
		if _, skip := excluded[candidate.ID]; skip {
			continue
		}
		deck = append(deck, candidate)
		if limit > 0 && len(deck) >= limit {
			break
		}
	}

	return deck, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, input UpdateInput) (model.User, error) {
	if userID <= 0 || strings.TrimSpace(input.Name) == "" {
		return model.User{}, ErrValidation
	}
	if input.Age != 0 && (input.Age < 18 || input.Age > 120) {
		return model.User{}, ErrValidation
	}

	existing, err := s.Get(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	if input.Age != 0 {
		existing.Age = input.Age
	}
	existing.Bio = input.Bio
	if input.Gender != "" {
		existing.Gender = input.Gender
	}
	if input.Photos != nil {
		existing.Photos = input.Photos
	}
	if input.Interests != nil {
		existing.Interests = input.Interests
	}

	return s.store.UpdateProfile(ctx, existing)
}
