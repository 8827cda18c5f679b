package dateideas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nrattyp233/create-a-date/internal/domain/model"
	"github.com/nrattyp233/create-a-date/internal/domain/rules"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrPremiumRequired = errors.New("premium required")
	ErrBadCompletion   = errors.New("model returned malformed output")
)

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type EntitlementStore interface {
	IsPremium(ctx context.Context, userID int64) (bool, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
}

type Service struct {
	generator    TextGenerator
	entitlements EntitlementStore
	users        UserStore
}

type DateIdea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
}

type LocationSuggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewService(generator TextGenerator, entitlements EntitlementStore, users UserStore) *Service {
	return &Service{
		generator:    generator,
		entitlements: entitlements,
		users:        users,
	}
}

// GenerateDateIdea proposes a full date for the user and a match partner,
// built from both profiles' interests.
func (s *Service) GenerateDateIdea(ctx context.Context, userID, partnerID int64) (DateIdea, error) {
	if userID <= 0 || partnerID <= 0 {
		return DateIdea{}, ErrValidation
	}
	if err := s.requirePremium(ctx, userID); err != nil {
		return DateIdea{}, err
	}

	user, partner, err := s.loadPair(ctx, userID, partnerID)
	if err != nil {
		return DateIdea{}, err
	}

	prompt := fmt.Sprintf(
		"Suggest one creative date idea for two people.\n"+
			"Person A: %s, interests: %s.\nPerson B: %s, interests: %s.\n"+
			"Respond with JSON only: {\"title\": string, \"description\": string, \"location\": string, \"category\": string}.",
		user.Name, strings.Join(user.Interests, ", "),
		partner.Name, strings.Join(partner.Interests, ", "),
	)

	raw, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return DateIdea{}, fmt.Errorf("generate date idea: %w", err)
	}

	var idea DateIdea
	if err := json.Unmarshal([]byte(StripJSONFences(raw)), &idea); err != nil {
		return DateIdea{}, fmt.Errorf("%w: %v", ErrBadCompletion, err)
	}
	if strings.TrimSpace(idea.Title) == "" {
		return DateIdea{}, ErrBadCompletion
	}

	return idea, nil
}

// Icebreakers returns short conversation openers tailored to the partner's
// profile.
func (s *Service) Icebreakers(ctx context.Context, userID, partnerID int64) ([]string, error) {
	if userID <= 0 || partnerID <= 0 {
		return nil, ErrValidation
	}
	if err := s.requirePremium(ctx, userID); err != nil {
		return nil, err
	}

	_, partner, err := s.loadPair(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Write three short icebreaker messages for a dating app chat with %s.\n"+
			"Their bio: %q. Their interests: %s.\n"+
			"Respond with a JSON array of strings only.",
		partner.Name, partner.Bio, strings.Join(partner.Interests, ", "),
	)

	raw, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate icebreakers: %w", err)
	}

	var lines []string
	if err := json.Unmarshal([]byte(StripJSONFences(raw)), &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCompletion, err)
	}
	if len(lines) == 0 {
		return nil, ErrBadCompletion
	}

	return lines, nil
}

// LocationSuggestions proposes nearby spots for a planned date.
func (s *Service) LocationSuggestions(ctx context.Context, userID int64, area, activity string) ([]LocationSuggestion, error) {
	area = strings.TrimSpace(area)
	if userID <= 0 || area == "" {
		return nil, ErrValidation
	}
	if err := s.requirePremium(ctx, userID); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Suggest three venues in %s for this date activity: %q.\n"+
			"Respond with a JSON array only: [{\"name\": string, \"description\": string}].",
		area, activity,
	)

	raw, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate location suggestions: %w", err)
	}

	var suggestions []LocationSuggestion
	if err := json.Unmarshal([]byte(StripJSONFences(raw)), &suggestions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCompletion, err)
	}
	if len(suggestions) == 0 {
		return nil, ErrBadCompletion
	}

	return suggestions, nil
}

// EnhanceDescription rewrites a date post description to be more inviting.
func (s *Service) EnhanceDescription(ctx context.Context, userID int64, description string) (string, error) {
	description = strings.TrimSpace(description)
	if userID <= 0 || description == "" {
		return "", ErrValidation
	}
	if err := s.requirePremium(ctx, userID); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"Rewrite this date description to be warm and inviting, two sentences max, plain text only:\n%s",
		description,
	)

	raw, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("enhance description: %w", err)
	}

	return strings.TrimSpace(StripJSONFences(raw)), nil
}

// PhotoOrder ranks the user's profile photos by expected first-impression
// appeal. Returns indexes into the photo list, best first.
func (s *Service) PhotoOrder(ctx context.Context, userID int64) ([]int, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if err := s.requirePremium(ctx, userID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(user.Photos) < 2 {
		return nil, ErrValidation
	}

	prompt := fmt.Sprintf(
		"A dating profile for %s (bio: %q) has %d photos described by their URLs:\n%s\n"+
			"Order them for maximum first-impression appeal. Respond with a JSON array of zero-based indexes only.",
		user.Name, user.Bio, len(user.Photos), strings.Join(user.Photos, "\n"),
	)

	raw, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate photo order: %w", err)
	}

	var order []int
	if err := json.Unmarshal([]byte(StripJSONFences(raw)), &order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCompletion, err)
	}
	if len(order) != len(user.Photos) {
		return nil, ErrBadCompletion
	}
	seen := make(map[int]bool, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(user.Photos) || seen[idx] {
			return nil, ErrBadCompletion
		}
		seen[idx] = true
	}

	return order, nil
}

func (s *Service) requirePremium(ctx context.Context, userID int64) error {
	if s.generator == nil || s.entitlements == nil || s.users == nil {
		return fmt.Errorf("ai dependencies are not configured")
	}

	isPremium, err := s.entitlements.IsPremium(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve premium entitlement: %w", err)
	}
	if !rules.CanUseAI(isPremium) {
		return ErrPremiumRequired
	}
	return nil
}

func (s *Service) loadPair(ctx context.Context, userID, partnerID int64) (model.User, model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, model.User{}, fmt.Errorf("load user: %w", err)
	}
	partner, err := s.users.GetByID(ctx, partnerID)
	if err != nil {
		return model.User{}, model.User{}, fmt.Errorf("load partner: %w", err)
	}
	return user, partner, nil
}

// StripJSONFences removes a markdown code fence wrapper the model sometimes
// puts around JSON output.
func StripJSONFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
