package users

import (
	"context"
	"errors"
	"testing"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
)

type userStoreStub struct {
	users map[int64]model.User
	order []int64
}

func (s *userStoreStub) GetByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func (s *userStoreStub) List(_ context.Context, _ int) ([]model.User, error) {
	out := make([]model.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s *userStoreStub) UpdateProfile(_ context.Context, user model.User) (model.User, error) {
	s.users[user.ID] = user
	return user, nil
}

type exclusionsStub struct {
	ids []int64
}

func (s exclusionsStub) Exclusions(context.Context, int64) ([]int64, error) {
	return s.ids, nil
}

func seedStore() *userStoreStub {
	return &userStoreStub{
		users: map[int64]model.User{
			101: {ID: 101, Name: "Avery", Age: 28},
			202: {ID: 202, Name: "Blair", Age: 30},
			203: {ID: 203, Name: "Casey", Age: 26},
			204: {ID: 204, Name: "Drew", Age: 31},
		},
		order: []int64{101, 202, 203, 204},
	}
}

func TestDeckExcludesSelfAndSwiped(t *testing.T) {
	svc := NewService(seedStore(), exclusionsStub{ids: []int64{202}})

	deck, err := svc.Deck(context.Background(), 101, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(deck) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(deck))
	}
	for _, candidate := range deck {
		if candidate.ID == 101 || candidate.ID == 202 {
			t.Fatalf("excluded user %d appeared in the deck", candidate.ID)
		}
	}
}

func TestDeckHonorsLimit(t *testing.T) {
	svc := NewService(seedStore(), exclusionsStub{})

	deck, err := svc.Deck(context.Background(), 101, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deck) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(deck))
	}
}

func TestUpdateProfile(t *testing.T) {
	store := seedStore()
	svc := NewService(store, exclusionsStub{})

	updated, err := svc.UpdateProfile(context.Background(), 101, UpdateInput{
		Name:      "Avery R",
		Age:       29,
		Bio:       "new bio",
		Interests: []string{"climbing"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Avery R" || updated.Age != 29 || len(updated.Interests) != 1 {
		t.Fatalf("unexpected profile: %+v", updated)
	}
}

func TestUpdateProfileValidatesAge(t *testing.T) {
	svc := NewService(seedStore(), exclusionsStub{})

	if _, err := svc.UpdateProfile(context.Background(), 101, UpdateInput{Name: "Avery", Age: 16}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetMissingUser(t *testing.T) {
	svc := NewService(seedStore(), exclusionsStub{})

	if _, err := svc.Get(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
