package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
	redrepo "github.com/nrattyp233/create-a-date/internal/repo/redis"
	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
)

type userStoreStub struct {
	byEmail map[string]model.User
	byID    map[int64]model.User
	nextID  int64
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{
		byEmail: map[string]model.User{},
		byID:    map[int64]model.User{},
		nextID:  1,
	}
}

func (s *userStoreStub) Create(_ context.Context, user model.User) (model.User, error) {
	if _, exists := s.byEmail[user.Email]; exists {
		return model.User{}, pgrepo.ErrEmailTaken
	}
	user.ID = s.nextID
	s.nextID++
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return user, nil
}

func (s *userStoreStub) GetByEmail(_ context.Context, email string) (model.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func (s *userStoreStub) GetByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := s.byID[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, *userStoreStub) {
	t.Helper()

	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := newUserStoreStub()
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, redrepo.NewSessionRepo(client), users, authsvc.MinRefreshTTL)
	return svc, users
}

func seedUser(t *testing.T, users *userStoreStub, email, password string) model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := users.Create(context.Background(), model.User{
		Email:        email,
		Name:         "Avery",
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestSignupAndValidate(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	result, err := svc.Signup(context.Background(), authsvc.SignupInput{
		Email:    "Avery@Example.com",
		Password: "correct horse",
		Name:     "Avery",
		Age:      28,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Me.Email != "avery@example.com" {
		t.Fatalf("expected lowercased email, got %q", result.Me.Email)
	}

	claims, err := svc.ValidateAccessToken(context.Background(), result.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != result.Me.ID {
		t.Fatalf("expected user %d, got %d", result.Me.ID, claims.UserID)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	input := authsvc.SignupInput{Email: "avery@example.com", Password: "correct horse"}
	if _, err := svc.Signup(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Signup(context.Background(), input); !errors.Is(err, authsvc.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)

	input := authsvc.SignupInput{Email: "avery@example.com", Password: "short"}
	if _, err := svc.Signup(context.Background(), input); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users := newAuthServiceForTest(t)
	seedUser(t, users, "avery@example.com", "correct horse")

	if _, err := svc.Login(context.Background(), "avery@example.com", "wrong"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "missing@example.com", "whatever"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, users := newAuthServiceForTest(t)
	seedUser(t, users, "avery@example.com", "correct horse")

	login, err := svc.Login(context.Background(), "avery@example.com", "correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token must rotate")
	}

	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token must be dead, got %v", err)
	}

	if _, err := svc.ValidateAccessToken(context.Background(), refreshed.AccessToken); err != nil {
		t.Fatalf("rotated access token must validate: %v", err)
	}
}

func TestLogoutInvalidatesAccessToken(t *testing.T) {
	svc, users := newAuthServiceForTest(t)
	seedUser(t, users, "avery@example.com", "correct horse")

	login, err := svc.Login(context.Background(), "avery@example.com", "correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidateAccessToken(context.Background(), login.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Logout(context.Background(), claims.SID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ValidateAccessToken(context.Background(), login.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestLogoutAllKillsEverySession(t *testing.T) {
	svc, users := newAuthServiceForTest(t)
	user := seedUser(t, users, "avery@example.com", "correct horse")

	first, err := svc.Login(context.Background(), "avery@example.com", "correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Login(context.Background(), "avery@example.com", "correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.LogoutAll(context.Background(), user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, token := range []string{first.AccessToken, second.AccessToken} {
		if _, err := svc.ValidateAccessToken(context.Background(), token); !errors.Is(err, authsvc.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized after logout-all, got %v", err)
		}
	}
}
