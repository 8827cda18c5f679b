package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nrattyp233/create-a-date/internal/domain/rules"
	pgrepo "github.com/nrattyp233/create-a-date/internal/repo/postgres"
)

const maxMessageLength = 2000

var (
	ErrValidation     = errors.New("validation error")
	ErrNotMatched     = errors.New("users are not matched")
	ErrMessageCap     = errors.New("free message cap reached")
	ErrMessageTooLong = errors.New("message too long")
)

type MessageStore interface {
	Insert(ctx context.Context, senderID, receiverID int64, text string) (pgrepo.MessageRecord, error)
	CountBySender(ctx context.Context, senderID int64) (int, error)
	ListConversation(ctx context.Context, userID, otherID int64, limit int) ([]pgrepo.MessageRecord, error)
	MarkConversationRead(ctx context.Context, readerID, senderID int64) error
}

type MatchChecker interface {
	HasPair(ctx context.Context, userID, targetID int64) (bool, error)
}

type EntitlementStore interface {
	IsPremium(ctx context.Context, userID int64) (bool, error)
}

type Config struct {
	FreeMessageCap int
}

type SendResult struct {
	Message   pgrepo.MessageRecord
	Sent      int
	Remaining int
}

type Service struct {
	messageStore MessageStore
	matches      MatchChecker
	entitlements EntitlementStore
	cfg          Config
}

type Dependencies struct {
	MessageStore MessageStore
	Matches      MatchChecker
	Entitlements EntitlementStore
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.FreeMessageCap <= 0 {
		cfg.FreeMessageCap = rules.FreeMessageCap
	}

	return &Service{
		messageStore: deps.MessageStore,
		matches:      deps.Matches,
		entitlements: deps.Entitlements,
		cfg:          cfg,
	}
}

// Send delivers a message inside an existing match. Free accounts carry a
// lifetime cap on outbound messages; the gate re-reads the premium flag on
// every call so an upgrade lifts the block mid-session.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, text string) (SendResult, error) {
	text = strings.TrimSpace(text)
	if senderID <= 0 || receiverID <= 0 || senderID == receiverID || text == "" {
		return SendResult{}, ErrValidation
	}
	if len(text) > maxMessageLength {
		return SendResult{}, ErrMessageTooLong
	}
	if s.messageStore == nil || s.matches == nil || s.entitlements == nil {
		return SendResult{}, fmt.Errorf("message dependencies are not configured")
	}

	matched, err := s.matches.HasPair(ctx, senderID, receiverID)
	if err != nil {
		return SendResult{}, fmt.Errorf("check match pair: %w", err)
	}
	if !matched {
		return SendResult{}, ErrNotMatched
	}

	isPremium, err := s.entitlements.IsPremium(ctx, senderID)
	if err != nil {
		return SendResult{}, fmt.Errorf("resolve premium entitlement: %w", err)
	}

	sent, err := s.messageStore.CountBySender(ctx, senderID)
	if err != nil {
		return SendResult{}, fmt.Errorf("count sent messages: %w", err)
	}
	if !rules.CanSendMessage(isPremium, sent, s.cfg.FreeMessageCap) {
		return SendResult{}, ErrMessageCap
	}

	message, err := s.messageStore.Insert(ctx, senderID, receiverID, text)
	if err != nil {
		return SendResult{}, err
	}

	result := SendResult{Message: message, Sent: sent + 1}
	if !isPremium {
		result.Remaining = s.cfg.FreeMessageCap - result.Sent
		if result.Remaining < 0 {
			result.Remaining = 0
		}
	} else {
		result.Remaining = -1
	}

	return result, nil
}

func (s *Service) Conversation(ctx context.Context, userID, otherID int64, limit int) ([]pgrepo.MessageRecord, error) {
	if userID <= 0 || otherID <= 0 || userID == otherID {
		return nil, ErrValidation
	}
	if s.messageStore == nil || s.matches == nil {
		return nil, fmt.Errorf("message dependencies are not configured")
	}

	matched, err := s.matches.HasPair(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("check match pair: %w", err)
	}
	if !matched {
		return nil, ErrNotMatched
	}

	return s.messageStore.ListConversation(ctx, userID, otherID, limit)
}

func (s *Service) MarkRead(ctx context.Context, readerID, senderID int64) error {
	if readerID <= 0 || senderID <= 0 || readerID == senderID {
		return ErrValidation
	}
	if s.messageStore == nil {
		return fmt.Errorf("message store is nil")
	}

	return s.messageStore.MarkConversationRead(ctx, readerID, senderID)
}
