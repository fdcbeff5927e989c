// Chat HTTP handlers.
//
// This file exposes REST endpoints for buyer-shopkeeper messaging:
//   - POST   /messages               (send to a partner)
//   - GET    /messages/partners      (accounts the actor has chatted with)
//   - GET    /messages/{partnerId}   (conversation, hidden entries filtered)
//   - DELETE /messages/{partnerId}   (hide the conversation for the actor)
//
// A conversation is identified by the (buyer, shop) pair; the partner ID in
// the path is the other side of that pair relative to the acting account.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-market-backend/internal/domain"
	"github.com/tbourn/go-market-backend/internal/services"
	"github.com/tbourn/go-market-backend/internal/utils"
)

// SendMessageRequest is the JSON payload for sending a chat message.
type SendMessageRequest struct {
	PartnerID uint   `json:"partner_id" binding:"required" example:"7"`
	Content   string `json:"content" binding:"required" example:"Is the rice still in stock?"`
}

// ChatPartnersResponse lists the IDs of accounts the actor has chatted with,
// most recent conversation first.
type ChatPartnersResponse struct {
	PartnerIDs []uint `json:"partner_ids"`
}

// conversationPair resolves the (buyer, shop) pair for the acting account and
// a partner ID taken from the request.
func conversationPair(actor uint, actorKind string, partner uint) (userID, shopID uint) {
	if actorKind == domain.UserTypeShopkeeper {
		return partner, actor
	}
	return actor, partner
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a chat message
// @Description Sends a message from the acting account to a partner. Buyers address shops; shopkeepers address buyers.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID    header  int     true   "Acting account ID (demo header)"  example(3)
// @Param       X-User-Type  header  string  false  "Acting account type"              Enums(user, shopkeeper)
// @Param       body         body    handlers.SendMessageRequest  true  "Message payload"
//
// @Success     201  {object}  domain.ChatMessage
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Partner not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	actor, okID := requireActor(c)
	if !okID {
		return
	}
	kind := actorType(c)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PartnerID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "partner_id and content are required")
		return
	}

	userID, shopID := conversationPair(actor, kind, req.PartnerID)
	msg, err := h.chatSvc.Send(c.Request.Context(), kind, userID, shopID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrMessageTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrShopNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, msg)
}

// ListChatPartners godoc
// @ID          listChatPartners
// @Summary     List chat partners
// @Description Returns the IDs of accounts the actor has exchanged messages with, most recent first.
// @Tags        Chat
// @Produce     json
//
// @Param       X-User-ID    header  int     true   "Acting account ID (demo header)"  example(3)
// @Param       X-User-Type  header  string  false  "Acting account type"              Enums(user, shopkeeper)
//
// @Success     200  {object}  handlers.ChatPartnersResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages/partners [get]
func (h *Handlers) ListChatPartners(c *gin.Context) {
	actor, okID := requireActor(c)
	if !okID {
		return
	}

	ids, err := h.chatSvc.Partners(c.Request.Context(), actor, actorType(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ChatPartnersResponse{PartnerIDs: ids})
}

// GetConversation godoc
// @ID          getConversation
// @Summary     Get a conversation
// @Description Returns the message history with one partner in chronological order. Messages the actor has hidden are filtered out.
// @Tags        Chat
// @Produce     json
//
// @Param       X-User-ID    header  int     true   "Acting account ID (demo header)"  example(3)
// @Param       X-User-Type  header  string  false  "Acting account type"              Enums(user, shopkeeper)
// @Param       partnerId    path    int     true   "Partner account ID"               example(7)
//
// @Success     200  {array}   domain.ChatMessage
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages/{partnerId} [get]
func (h *Handlers) GetConversation(c *gin.Context) {
	actor, okID := requireActor(c)
	if !okID {
		return
	}
	partner, okPID := utils.ParseUint(c.Param("partnerId"))
	if !okPID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "partner id must be a positive integer")
		return
	}

	kind := actorType(c)
	userID, shopID := conversationPair(actor, kind, partner)
	msgs, err := h.chatSvc.Conversation(c.Request.Context(), userID, shopID, kind)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, msgs)
}

// HideConversation godoc
// @ID          hideConversation
// @Summary     Hide a conversation
// @Description Hides the conversation with one partner for the acting side only. The other side still sees the full history.
// @Tags        Chat
// @Produce     json
//
// @Param       X-User-ID    header  int     true   "Acting account ID (demo header)"  example(3)
// @Param       X-User-Type  header  string  false  "Acting account type"              Enums(user, shopkeeper)
// @Param       partnerId    path    int     true   "Partner account ID"               example(7)
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages/{partnerId} [delete]
func (h *Handlers) HideConversation(c *gin.Context) {
	actor, okID := requireActor(c)
	if !okID {
		return
	}
	partner, okPID := utils.ParseUint(c.Param("partnerId"))
	if !okPID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "partner id must be a positive integer")
		return
	}

	kind := actorType(c)
	userID, shopID := conversationPair(actor, kind, partner)
	if err := h.chatSvc.Archive(c.Request.Context(), userID, shopID, kind); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	noContent(c)
}
