package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
)

func newSessionRepoForTest(t *testing.T) *SessionRepo {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionRepo(client)
}

func TestSessionCreateAndLookup(t *testing.T) {
	repo := newSessionRepoForTest(t)
	ctx := context.Background()

	session := authsvc.SessionRecord{
		SID:       "sid-1",
		UserID:    7,
		Role:      "user",
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	if err := repo.Create(ctx, session, "refresh-1"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	bySID, err := repo.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if bySID.UserID != 7 || bySID.Role != "user" {
		t.Fatalf("unexpected session record: %+v", bySID)
	}

	byToken, err := repo.GetByRefreshToken(ctx, "refresh-1")
	if err != nil {
		t.Fatalf("get by refresh token: %v", err)
	}
	if byToken.SID != "sid-1" {
		t.Fatalf("unexpected sid: got %q want %q", byToken.SID, "sid-1")
	}
}

func TestRotateRefreshInvalidatesOldToken(t *testing.T) {
	repo := newSessionRepoForTest(t)
	ctx := context.Background()

	session := authsvc.SessionRecord{
		SID:       "sid-1",
		UserID:    7,
		Role:      "user",
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	if err := repo.Create(ctx, session, "refresh-old"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	rotated, err := repo.RotateRefresh(ctx, "refresh-old", "refresh-new", time.Now().Add(2*time.Hour).UTC())
	if err != nil {
		t.Fatalf("rotate refresh: %v", err)
	}
	if rotated.SID != "sid-1" {
		t.Fatalf("unexpected sid after rotation: %q", rotated.SID)
	}

	if _, err := repo.GetByRefreshToken(ctx, "refresh-old"); !errors.Is(err, authsvc.ErrRefreshNotFound) {
		t.Fatalf("old refresh token must be gone, got %v", err)
	}
	if _, err := repo.GetByRefreshToken(ctx, "refresh-new"); err != nil {
		t.Fatalf("new refresh token must resolve: %v", err)
	}
}

func TestDeleteAllForUserDropsEverySession(t *testing.T) {
	repo := newSessionRepoForTest(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	for i, sid := range []string{"sid-1", "sid-2"} {
		session := authsvc.SessionRecord{SID: sid, UserID: 7, Role: "user", ExpiresAt: expires}
		if err := repo.Create(ctx, session, "refresh-"+sid); err != nil {
			t.Fatalf("create session %d: %v", i, err)
		}
	}

	if err := repo.DeleteAllForUser(ctx, 7); err != nil {
		t.Fatalf("delete all for user: %v", err)
	}

	for _, sid := range []string{"sid-1", "sid-2"} {
		if _, err := repo.GetSession(ctx, sid); !errors.Is(err, authsvc.ErrSessionNotFound) {
			t.Fatalf("session %s must be gone, got %v", sid, err)
		}
	}
}
