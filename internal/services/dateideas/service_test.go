package dateideas

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
)

type generatorStub struct {
	response string
	err      error
	prompts  []string
}

func (s *generatorStub) GenerateText(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type entitlementStub struct {
	premium bool
}

func (s entitlementStub) IsPremium(context.Context, int64) (bool, error) {
	return s.premium, nil
}

type userStoreStub struct {
	users map[int64]model.User
}

func (s userStoreStub) GetByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, errors.New("user not found")
	}
	return user, nil
}

func defaultUsers() userStoreStub {
	return userStoreStub{users: map[int64]model.User{
		101: {ID: 101, Name: "Avery", Bio: "coffee person", Interests: []string{"hiking", "jazz"}, Photos: []string{"a.jpg", "b.jpg", "c.jpg"}},
		202: {ID: 202, Name: "Blair", Bio: "dog parent", Interests: []string{"cooking"}},
	}}
}

func TestGenerateDateIdeaParsesFencedJSON(t *testing.T) {
	gen := &generatorStub{response: "```json\n{\"title\":\"Jazz picnic\",\"description\":\"Evening picnic with live jazz.\",\"location\":\"Riverside park\",\"category\":\"outdoors\"}\n```"}
	svc := NewService(gen, entitlementStub{premium: true}, defaultUsers())

	idea, err := svc.GenerateDateIdea(context.Background(), 101, 202)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idea.Title != "Jazz picnic" || idea.Category != "outdoors" {
		t.Fatalf("unexpected idea: %+v", idea)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "hiking") {
		t.Fatalf("prompt must carry profile interests, got %q", gen.prompts)
	}
}

func TestAIIsPremiumOnly(t *testing.T) {
	gen := &generatorStub{response: "{}"}
	svc := NewService(gen, entitlementStub{premium: false}, defaultUsers())

	if _, err := svc.GenerateDateIdea(context.Background(), 101, 202); !errors.Is(err, ErrPremiumRequired) {
		t.Fatalf("expected premium gate, got %v", err)
	}
	if _, err := svc.Icebreakers(context.Background(), 101, 202); !errors.Is(err, ErrPremiumRequired) {
		t.Fatalf("expected premium gate, got %v", err)
	}
	if _, err := svc.EnhanceDescription(context.Background(), 101, "dinner"); !errors.Is(err, ErrPremiumRequired) {
		t.Fatalf("expected premium gate, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Fatal("the model must never be called for free users")
	}
}

func TestIcebreakers(t *testing.T) {
	gen := &generatorStub{response: `["Hi!","How is the dog?","Coffee soon?"]`}
	svc := NewService(gen, entitlementStub{premium: true}, defaultUsers())

	lines, err := svc.Icebreakers(context.Background(), 101, 202)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected three icebreakers, got %v", lines)
	}
}

func TestLocationSuggestions(t *testing.T) {
	gen := &generatorStub{response: `[{"name":"The Roastery","description":"Quiet specialty coffee bar."}]`}
	svc := NewService(gen, entitlementStub{premium: true}, defaultUsers())

	suggestions, err := svc.LocationSuggestions(context.Background(), 101, "Denver", "coffee date")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Name != "The Roastery" {
		t.Fatalf("unexpected suggestions: %+v", suggestions)
	}
}

func TestEnhanceDescriptionStripsFences(t *testing.T) {
	gen := &generatorStub{response: "```\nCome watch the sunset with me.\n```"}
	svc := NewService(gen, entitlementStub{premium: true}, defaultUsers())

	text, err := svc.EnhanceDescription(context.Background(), 101, "sunset watching")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Come watch the sunset with me." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestPhotoOrderValidatesPermutation(t *testing.T) {
	svc := NewService(&generatorStub{response: `[2,0,1]`}, entitlementStub{premium: true}, defaultUsers())

	order, err := svc.PhotoOrder(context.Background(), 101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 3 || order[0] != 2 {
		t.Fatalf("unexpected order: %v", order)
	}

	svc = NewService(&generatorStub{response: `[0,0,1]`}, entitlementStub{premium: true}, defaultUsers())
	if _, err := svc.PhotoOrder(context.Background(), 101); !errors.Is(err, ErrBadCompletion) {
		t.Fatalf("expected ErrBadCompletion for duplicate indexes, got %v", err)
	}
}

func TestMalformedCompletion(t *testing.T) {
	svc := NewService(&generatorStub{response: "sure! here's an idea: picnic"}, entitlementStub{premium: true}, defaultUsers())

	if _, err := svc.GenerateDateIdea(context.Background(), 101, 202); !errors.Is(err, ErrBadCompletion) {
		t.Fatalf("expected ErrBadCompletion, got %v", err)
	}
}

func TestStripJSONFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                     `{"a":1}`,
		"```json\n{\"a\":1}\n```":       `{"a":1}`,
		"```\n[1,2]\n```":               `[1,2]`,
		"  ```json\n{\"a\":1}\n```\n  ": `{"a":1}`,
	}

	for input, want := range cases {
		if got := StripJSONFences(input); got != want {
			t.Fatalf("StripJSONFences(%q) = %q, want %q", input, got, want)
		}
	}
}
