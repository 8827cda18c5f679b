package swipes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/nrattyp233/create-a-date/internal/domain/enums"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
	redrepo "github.com/nrattyp233/create-a-date/internal/repo/redis"
	ratesvc "github.com/nrattyp233/create-a-date/internal/services/rate"
)

type swipeStoreStub struct {
	upserted     []pgrepo.SwipeRecord
	reverse      map[[2]int64]pgrepo.SwipeRecord
	reverseErr   error
	last         pgrepo.SwipeRecord
	lastErr      error
	deletedPairs [][2]int64
	targets      map[string][]int64
}

func (s *swipeStoreStub) Upsert(_ context.Context, _ pgx.Tx, actorUserID, targetUserID int64, direction string, now time.Time) (pgrepo.SwipeRecord, error) {
	record := pgrepo.SwipeRecord{
		ID:           int64(len(s.upserted) + 1),
		ActorUserID:  actorUserID,
		TargetUserID: targetUserID,
		Direction:    direction,
		CreatedAt:    now,
	}
	s.upserted = append(s.upserted, record)
	return record, nil
}

func (s *swipeStoreStub) GetByPair(_ context.Context, _ pgx.Tx, actorUserID, targetUserID int64) (pgrepo.SwipeRecord, error) {
	if s.reverseErr != nil {
		return pgrepo.SwipeRecord{}, s.reverseErr
	}
	record, ok := s.reverse[[2]int64{actorUserID, targetUserID}]
	if !ok {
		return pgrepo.SwipeRecord{}, pgrepo.ErrSwipeNotFound
	}
	return record, nil
}

func (s *swipeStoreStub) GetLastByActor(_ context.Context, _ pgx.Tx, _ int64) (pgrepo.SwipeRecord, error) {
	if s.lastErr != nil {
		return pgrepo.SwipeRecord{}, s.lastErr
	}
	return s.last, nil
}

func (s *swipeStoreStub) DeleteByPair(_ context.Context, _ pgx.Tx, actorUserID, targetUserID int64) error {
	s.deletedPairs = append(s.deletedPairs, [2]int64{actorUserID, targetUserID})
	return nil
}

func (s *swipeStoreStub) ListTargetsByDirection(_ context.Context, _ int64, direction string) ([]int64, error) {
	return s.targets[direction], nil
}

type matchStoreStub struct {
	inserted   [][2]int64
	insertErr  error
	created    bool
	match      pgrepo.MatchRecord
	partners   []int64
	deleted    [][2]int64
	deletedHit bool
}

func (s *matchStoreStub) InsertOrGet(_ context.Context, _ pgx.Tx, userID, targetID int64) (pgrepo.MatchRecord, bool, error) {
	if s.insertErr != nil {
		return pgrepo.MatchRecord{}, false, s.insertErr
	}
	s.inserted = append(s.inserted, [2]int64{userID, targetID})
	return s.match, s.created, nil
}

func (s *matchStoreStub) PartnerIDs(_ context.Context, _ int64) ([]int64, error) {
	return s.partners, nil
}

func (s *matchStoreStub) DeleteByUsers(_ context.Context, _ pgx.Tx, userID, targetID int64) (bool, error) {
	s.deleted = append(s.deleted, [2]int64{userID, targetID})
	return s.deletedHit, nil
}

type entitlementStub struct {
	premium bool
	err     error
}

func (s entitlementStub) IsPremium(context.Context, int64) (bool, error) {
	return s.premium, s.err
}

func newTestService(swipeStore *swipeStoreStub, matchStore *matchStoreStub, entitlements EntitlementStore) *Service {
	svc := NewService(Dependencies{
		SwipeStore:   swipeStore,
		MatchStore:   matchStore,
		Entitlements: entitlements,
	})
	svc.withTx = func(ctx context.Context, _ *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	svc.now = func() time.Time {
		return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestSwipeRightCreatesMatchOnMutualRight(t *testing.T) {
	swipeStore := &swipeStoreStub{
		reverse: map[[2]int64]pgrepo.SwipeRecord{
			{202, 101}: {ActorUserID: 202, TargetUserID: 101, Direction: "right"},
		},
	}
	matchStore := &matchStoreStub{created: true, match: pgrepo.MatchRecord{ID: 7, UserLowID: 101, UserHighID: 202}}
	svc := newTestService(swipeStore, matchStore, entitlementStub{})

	result, err := svc.Swipe(context.Background(), 101, 202, enums.SwipeRight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsMatch {
		t.Fatal("expected a match")
	}
	if result.MatchID != 7 {
		t.Fatalf("expected match id 7, got %d", result.MatchID)
	}
	if len(matchStore.inserted) != 1 {
		t.Fatalf("expected one match insert, got %d", len(matchStore.inserted))
	}
}

func TestSwipeRightReportsMatchWhenPairAlreadyExists(t *testing.T) {
	swipeStore := &swipeStoreStub{
		reverse: map[[2]int64]pgrepo.SwipeRecord{
			{202, 101}: {ActorUserID: 202, TargetUserID: 101, Direction: "right"},
		},
	}
	// InsertOrGet found an existing pair instead of creating one.
	matchStore := &matchStoreStub{created: false, match: pgrepo.MatchRecord{ID: 3}}
	svc := newTestService(swipeStore, matchStore, entitlementStub{})

	result, err := svc.Swipe(context.Background(), 101, 202, enums.SwipeRight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsMatch {
		t.Fatal("existing match pair must still be reported as a match")
	}
}

func TestSwipeRightNoMatchWithoutReciprocal(t *testing.T) {
	swipeStore := &swipeStoreStub{reverse: map[[2]int64]pgrepo.SwipeRecord{}}
	matchStore := &matchStoreStub{}
	svc := newTestService(swipeStore, matchStore, entitlementStub{})

	result, err := svc.Swipe(context.Background(), 101, 202, enums.SwipeRight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsMatch {
		t.Fatal("did not expect a match")
	}
	if len(matchStore.inserted) != 0 {
		t.Fatalf("expected no match inserts, got %d", len(matchStore.inserted))
	}
}

func TestSwipeRightNoMatchWhenReverseIsLeft(t *testing.T) {
	swipeStore := &swipeStoreStub{
		reverse: map[[2]int64]pgrepo.SwipeRecord{
			{202, 101}: {ActorUserID: 202, TargetUserID: 101, Direction: "left"},
		},
	}
	matchStore := &matchStoreStub{}
	svc := newTestService(swipeStore, matchStore, entitlementStub{})

	result, err := svc.Swipe(context.Background(), 101, 202, enums.SwipeRight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsMatch {
		t.Fatal("reverse left swipe must not reconcile a match")
	}
}

func TestSwipeLeftSkipsReconciliation(t *testing.T) {
	swipeStore := &swipeStoreStub{
		reverse: map[[2]int64]pgrepo.SwipeRecord{
			{202, 101}: {ActorUserID: 202, TargetUserID: 101, Direction: "right"},
		},
	}
	matchStore := &matchStoreStub{}
	svc := newTestService(swipeStore, matchStore, entitlementStub{})

	result, err := svc.Swipe(context.Background(), 101, 202, enums.SwipeLeft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsMatch {
		t.Fatal("left swipe must never form a match")
	}
	if len(matchStore.inserted) != 0 {
		t.Fatalf("expected no match inserts, got %d", len(matchStore.inserted))
	}
	if len(swipeStore.upserted) != 1 || swipeStore.upserted[0].Direction != "left" {
		t.Fatalf("expected one left upsert, got %+v", swipeStore.upserted)
	}
}

func TestSwipeFailsOpenOnReverseLookupError(t *testing.T) {
	swipeStore := &swipeStoreStub{reverseErr: errors.New("connection reset")}
	matchStore := &matchStoreStub{}
	svc := newTestService(swipeStore, matchStore, entitlementStub{})

	result, err := svc.Swipe(context.Background(), 101, 202, enums.SwipeRight)
	if err != nil {
		t.Fatalf("swipe must survive a broken reverse lookup, got %v", err)
	}
	if result.IsMatch {
		t.Fatal("expected no match when the reverse lookup failed")
	}
	if len(swipeStore.upserted) != 1 {
		t.Fatalf("swipe itself must still be recorded, got %d upserts", len(swipeStore.upserted))
	}
}

func TestSwipeValidation(t *testing.T) {
	svc := newTestService(&swipeStoreStub{}, &matchStoreStub{}, entitlementStub{})

	if _, err := svc.Swipe(context.Background(), 101, 101, enums.SwipeRight); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for self swipe, got %v", err)
	}
	if _, err := svc.Swipe(context.Background(), 0, 202, enums.SwipeRight); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing actor, got %v", err)
	}
	if _, err := svc.Swipe(context.Background(), 101, 202, enums.SwipeDirection("up")); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected invalid direction error, got %v", err)
	}
}

func TestSwipeRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	limiter := ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), 1)

	swipeStore := &swipeStoreStub{reverse: map[[2]int64]pgrepo.SwipeRecord{}}
	svc := newTestService(swipeStore, &matchStoreStub{}, entitlementStub{})
	svc.rateLimiter = limiter

	if _, err := svc.Swipe(context.Background(), 101, 202, enums.SwipeRight); err != nil {
		t.Fatalf("first swipe should pass: %v", err)
	}

	_, err := svc.Swipe(context.Background(), 101, 203, enums.SwipeRight)
	var tooFast TooFastError
	if !errors.As(err, &tooFast) {
		t.Fatalf("expected TooFastError, got %v", err)
	}
	if tooFast.RetryAfterSec <= 0 {
		t.Fatalf("expected positive retry-after, got %d", tooFast.RetryAfterSec)
	}
}

func TestRecallRequiresPremium(t *testing.T) {
	svc := newTestService(&swipeStoreStub{}, &matchStoreStub{}, entitlementStub{premium: false})

	if _, err := svc.Recall(context.Background(), 101); !errors.Is(err, ErrPremiumRequired) {
		t.Fatalf("expected premium gate, got %v", err)
	}
}

func TestRecallDeletesSwipeAndMatch(t *testing.T) {
	swipeStore := &swipeStoreStub{
		last: pgrepo.SwipeRecord{ID: 9, ActorUserID: 101, TargetUserID: 202, Direction: "right"},
	}
	matchStore := &matchStoreStub{deletedHit: true}
	svc := newTestService(swipeStore, matchStore, entitlementStub{premium: true})

	result, err := svc.Recall(context.Background(), 101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UndoneTargetID != 202 || result.UndoneDirection != "right" {
		t.Fatalf("unexpected recall result: %+v", result)
	}
	if !result.MatchRemoved {
		t.Fatal("expected the formed match to be removed")
	}
	if len(swipeStore.deletedPairs) != 1 || swipeStore.deletedPairs[0] != [2]int64{101, 202} {
		t.Fatalf("expected swipe delete for pair (101,202), got %+v", swipeStore.deletedPairs)
	}
	if len(matchStore.deleted) != 1 {
		t.Fatalf("expected one match delete, got %d", len(matchStore.deleted))
	}
}

func TestRecallLeftSwipeSkipsMatchDelete(t *testing.T) {
	swipeStore := &swipeStoreStub{
		last: pgrepo.SwipeRecord{ID: 9, ActorUserID: 101, TargetUserID: 202, Direction: "left"},
	}
	matchStore := &matchStoreStub{}
	svc := newTestService(swipeStore, matchStore, entitlementStub{premium: true})

	result, err := svc.Recall(context.Background(), 101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MatchRemoved {
		t.Fatal("left swipe has no match to remove")
	}
	if len(matchStore.deleted) != 0 {
		t.Fatalf("expected no match deletes, got %d", len(matchStore.deleted))
	}
}

func TestRecallWithNoHistory(t *testing.T) {
	swipeStore := &swipeStoreStub{lastErr: pgrepo.ErrSwipeNotFound}
	svc := newTestService(swipeStore, &matchStoreStub{}, entitlementStub{premium: true})

	if _, err := svc.Recall(context.Background(), 101); !errors.Is(err, ErrNothingToRecall) {
		t.Fatalf("expected ErrNothingToRecall, got %v", err)
	}
}

func TestExclusionsMergeSwipedAndMatched(t *testing.T) {
	swipeStore := &swipeStoreStub{
		targets: map[string][]int64{
			"right": {202, 203},
			"left":  {204, 202},
		},
	}
	matchStore := &matchStoreStub{partners: []int64{203, 205}}
	svc := newTestService(swipeStore, matchStore, entitlementStub{})

	ids, err := svc.Exclusions(context.Background(), 101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int64{202, 203, 204, 205}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}
