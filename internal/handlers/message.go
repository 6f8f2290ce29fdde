package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// MessageHandler serves conversation history and aggregation endpoints.
type MessageHandler struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	audit    *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages repositories.MessageRepository, users repositories.UserRepository, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messages: messages, users: users, audit: audit}
}

// GetConversation returns the full message history with another user,
// oldest first, enriched with display attributes.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	otherID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userID := c.GetInt("userID")

	msgs, err := h.messages.GetConversation(c.Request.Context(), userID, otherID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	users, err := h.users.GetUsersByIDs(c.Request.Context(), []int{userID, otherID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user info"})
		return
	}
	viewByID := userViewsByID(users)

	resp := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		view := models.MessageView{Message: m}
		if sender, ok := viewByID[m.SenderID]; ok {
			view.Sender = sender
		}
		if receiver, ok := viewByID[m.ReceiverID]; ok {
			view.Receiver = receiver
		}
		resp = append(resp, view)
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// ListConversations returns one summary per counterpart the user has
// exchanged messages with: the latest message plus unread state.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID := c.GetInt("userID")

	msgs, err := h.messages.ListMessagesInvolving(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	entries := aggregateConversations(userID, msgs)

	counterpartIDs := make([]int, 0, len(entries))
	for _, e := range entries {
		counterpartIDs = append(counterpartIDs, e.counterpartID)
	}
	users, err := h.users.GetUsersByIDs(c.Request.Context(), counterpartIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user info"})
		return
	}
	viewByID := userViewsByID(users)

	resp := make([]models.ConversationSummary, 0, len(entries))
	for _, e := range entries {
		summary := e.summary
		if view, ok := viewByID[e.counterpartID]; ok {
			summary.User = *view
		} else {
			summary.User = models.UserView{ID: e.counterpartID}
		}
		resp = append(resp, summary)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": resp})
}

// MarkAsRead marks every unread message from the given user to the caller as
// read. Repeating the call changes nothing.
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	otherID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userID := c.GetInt("userID")

	if err := h.messages.MarkConversationRead(c.Request.Context(), otherID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages as read"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("conversation with user %d marked as read", otherID),
		requestIDFromContext(c), userIDFromContext(c))

	c.JSON(http.StatusOK, gin.H{"status": "messages marked as read"})
}

type conversationEntry struct {
	counterpartID int
	summary       models.ConversationSummary
}

// aggregateConversations folds a newest-first message list into one entry per
// counterpart. The first message seen for a pair is its latest; unread counts
// accumulate over messages the counterpart sent that the user has not read.
func aggregateConversations(userID int, msgs []models.Message) []conversationEntry {
	index := make(map[int]int)
	entries := make([]conversationEntry, 0)

	for _, m := range msgs {
		counterpartID := m.SenderID
		if counterpartID == userID {
			counterpartID = m.ReceiverID
		}

		pos, seen := index[counterpartID]
		if !seen {
			index[counterpartID] = len(entries)
			pos = len(entries)
			entries = append(entries, conversationEntry{
				counterpartID: counterpartID,
				summary: models.ConversationSummary{
					LastMessage:     m.Body,
					LastMessageTime: m.CreatedAt,
					IsRead:          m.IsRead,
				},
			})
		}
		if m.SenderID == counterpartID && m.ReceiverID == userID && !m.IsRead {
			entries[pos].summary.UnreadCount++
		}
	}
	return entries
}

func userViewsByID(users []models.User) map[int]*models.UserView {
	viewByID := make(map[int]*models.UserView, len(users))
	for _, u := range users {
		view := u.View()
		viewByID[u.ID] = &view
	}
	return viewByID
}
