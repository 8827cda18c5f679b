package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
	redrepo "github.com/nrattyp233/create-a-date/internal/repo/redis"
	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
)

type mwUserStoreStub struct {
	user model.User
}

func (s mwUserStoreStub) Create(_ context.Context, user model.User) (model.User, error) {
	return user, nil
}

func (s mwUserStoreStub) GetByEmail(_ context.Context, email string) (model.User, error) {
	if email != s.user.Email {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return s.user, nil
}

func (s mwUserStoreStub) GetByID(_ context.Context, userID int64) (model.User, error) {
	if userID != s.user.ID {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return s.user, nil
}

func newAuthServiceForMiddleware(t *testing.T) (*authsvc.Service, model.User) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := model.User{ID: 42, Email: "avery@example.com", Name: "Avery", PasswordHash: string(hash)}

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, redrepo.NewSessionRepo(client), mwUserStoreStub{user: user}, authsvc.MinRefreshTTL)
	return svc, user
}

func TestAuthMiddlewareRejectsMissingBearer(t *testing.T) {
	svc, _ := newAuthServiceForMiddleware(t)
	mw := AuthMiddleware(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called without a bearer token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	svc, _ := newAuthServiceForMiddleware(t)
	mw := AuthMiddleware(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called with an invalid token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewarePropagatesIdentity(t *testing.T) {
	svc, user := newAuthServiceForMiddleware(t)
	mw := AuthMiddleware(svc, zap.NewNop())

	login, err := svc.Login(context.Background(), user.Email, "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rr := httptest.NewRecorder()

	var seen authsvc.Identity
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("identity missing from request context")
		}
		seen = identity
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
	if seen.UserID != user.ID {
		t.Fatalf("unexpected identity user: got %d want %d", seen.UserID, user.ID)
	}
}
