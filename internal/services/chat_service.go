// Package services – ChatService
//
// This file implements the ChatService, which manages direct conversations
// between buyers and shopkeepers: sending messages, reading a conversation,
// listing chat partners, and per-side archiving. Messages are free text with
// a length cap; no cache is involved since conversations are always read
// fresh.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/repo"
)

// MaxMessageRunes caps chat message length.
const MaxMessageRunes = 2000

// ChatRepo defines the repository contract required by ChatService.
type ChatRepo interface {
	CreateMessage(ctx context.Context, db *gorm.DB, m *domain.ChatMessage) error
	ListConversation(ctx context.Context, db *gorm.DB, userID, shopID uint, viewerType string) ([]domain.ChatMessage, error)
	ListChatPartners(ctx context.Context, db *gorm.DB, accountID uint, accountType string) ([]uint, error)
	HideConversation(ctx context.Context, db *gorm.DB, userID, shopID uint, viewerType string) error
	GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error)
	GetShop(ctx context.Context, db *gorm.DB, id uint) (*domain.Shopkeeper, error)
}

// ChatService provides buyer-shopkeeper messaging.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the message repository used by this service.
	Repo ChatRepo
}

// NewChatService constructs a ChatService.
func NewChatService(db *gorm.DB, r ChatRepo) *ChatService {
	return &ChatService{DB: db, Repo: r}
}

// Send records one message. senderType is "user" or "shopkeeper" and decides
// which direction the (userID, shopID) pair reads in. The counterpart account
// must exist.
func (s *ChatService) Send(ctx context.Context, senderType string, userID, shopID uint, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	m := &domain.ChatMessage{
		SenderType: senderType,
		Content:    content,
	}
	if senderType == domain.UserTypeShopkeeper {
		// Shopkeeper addresses a buyer; make sure the buyer exists.
		if _, err := s.Repo.GetUser(ctx, s.DB, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		m.SenderID, m.ReceiverID = shopID, userID
	} else {
		if _, err := s.Repo.GetShop(ctx, s.DB, shopID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrShopNotFound
			}
			return nil, err
		}
		m.SenderType = domain.UserTypeBuyer
		m.SenderID, m.ReceiverID = userID, shopID
	}

	if err := s.Repo.CreateMessage(ctx, s.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Conversation returns the message history between a buyer and a shop in
// chronological order, as seen by viewerType (hidden messages excluded).
func (s *ChatService) Conversation(ctx context.Context, userID, shopID uint, viewerType string) ([]domain.ChatMessage, error) {
	return s.Repo.ListConversation(ctx, s.DB, userID, shopID, viewerType)
}

// Partners returns the counterpart IDs the account has open conversations
// with, most recent first.
func (s *ChatService) Partners(ctx context.Context, accountID uint, accountType string) ([]uint, error) {
	return s.Repo.ListChatPartners(ctx, s.DB, accountID, accountType)
}

// Archive hides the conversation for one side only; the counterpart keeps
// their history.
func (s *ChatService) Archive(ctx context.Context, userID, shopID uint, viewerType string) error {
	return s.Repo.HideConversation(ctx, s.DB, userID, shopID, viewerType)
}
