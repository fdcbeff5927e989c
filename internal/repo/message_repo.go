// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ChatMessage
// model: direct buyer-to-shopkeeper conversations.
//
// A conversation is identified by the (userID, shopID) pair; direction is
// carried by SenderType. Hiding a conversation flips a per-side flag instead
// of deleting rows, so the other participant keeps their history.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-market-backend/internal/domain"
)

// CreateMessage inserts one chat message.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.ChatMessage) error {
	return db.WithContext(ctx).Create(m).Error
}

// conversationScope matches every message between the buyer and the shop,
// in either direction.
func conversationScope(db *gorm.DB, userID, shopID uint) *gorm.DB {
	return db.Where(
		"(sender_type = ? AND sender_id = ? AND receiver_id = ?) OR (sender_type = ? AND sender_id = ? AND receiver_id = ?)",
		domain.UserTypeBuyer, userID, shopID,
		domain.UserTypeShopkeeper, shopID, userID,
	)
}

// ListConversation returns the full message history between a buyer and a
// shop in chronological order, excluding messages the viewer has hidden.
// viewerType is "user" or "shopkeeper".
func ListConversation(ctx context.Context, db *gorm.DB, userID, shopID uint, viewerType string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	q := conversationScope(db.WithContext(ctx), userID, shopID)
	if viewerType == domain.UserTypeShopkeeper {
		q = q.Where("hidden_for_shopkeeper = ?", false)
	} else {
		q = q.Where("hidden_for_user = ?", false)
	}
	err := q.Order("created_at asc, id asc").Find(&out).Error
	return out, err
}

// ListChatPartners returns the distinct counterpart IDs the given account has
// exchanged messages with, most recent conversation first. For a buyer these
// are shop IDs; for a shopkeeper, buyer IDs.
func ListChatPartners(ctx context.Context, db *gorm.DB, accountID uint, accountType string) ([]uint, error) {
	hiddenCol := "hidden_for_user"
	if accountType == domain.UserTypeShopkeeper {
		hiddenCol = "hidden_for_shopkeeper"
	}

	var rows []struct {
		PartnerID uint
	}
	err := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Select("CASE WHEN sender_type = ? AND sender_id = ? THEN receiver_id ELSE sender_id END as partner_id",
			accountType, accountID).
		Where("(sender_type = ? AND sender_id = ?) OR (sender_type <> ? AND receiver_id = ?)",
			accountType, accountID, accountType, accountID).
		Where(hiddenCol+" = ?", false).
		Group("partner_id").
		Order("MAX(created_at) desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]uint, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.PartnerID)
	}
	return out, nil
}

// HideConversation marks every message between the buyer and the shop as
// hidden for one side. viewerType selects which side's flag is set.
func HideConversation(ctx context.Context, db *gorm.DB, userID, shopID uint, viewerType string) error {
	col := "hidden_for_user"
	if viewerType == domain.UserTypeShopkeeper {
		col = "hidden_for_shopkeeper"
	}
	return conversationScope(db.WithContext(ctx).Model(&domain.ChatMessage{}), userID, shopID).
		Update(col, true).Error
}
