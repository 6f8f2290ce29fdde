package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/api/messages/conversation/:user_id", handler.GetConversation)
	r.GET("/api/messages/conversations", handler.ListConversations)
	r.POST("/api/messages/read/:user_id", handler.MarkAsRead)
	return r
}

func TestGetConversationSuccess(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewMessageHandler(messageRepo, userRepo, nil)
	router := setupMessageRouter(handler)

	messageRepo.On("GetConversation", mock.Anything, 1, 2).Return([]models.Message{
		{ID: 1, SenderID: 1, ReceiverID: 2, Body: "hi"},
		{ID: 2, SenderID: 2, ReceiverID: 1, Body: "hey"},
	}, nil).Once()
	userRepo.On("GetUsersByIDs", mock.Anything, []int{1, 2}).Return([]models.User{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/messages/conversation/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []struct {
			Body   string `json:"message"`
			Sender *struct {
				Username string `json:"username"`
			} `json:"sender"`
		} `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "hi", resp.Messages[0].Body)
	require.NotNil(t, resp.Messages[0].Sender)
	assert.Equal(t, "alice", resp.Messages[0].Sender.Username)

	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestGetConversationInvalidID(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/messages/conversation/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListConversationsAggregates(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewMessageHandler(messageRepo, userRepo, nil)
	router := setupMessageRouter(handler)

	now := time.Now()
	// Newest first, as the repository returns them.
	messageRepo.On("ListMessagesInvolving", mock.Anything, 1).Return([]models.Message{
		{ID: 5, SenderID: 2, ReceiverID: 1, Body: "latest from bob", IsRead: false, CreatedAt: now},
		{ID: 4, SenderID: 1, ReceiverID: 3, Body: "latest to carol", IsRead: true, CreatedAt: now.Add(-time.Minute)},
		{ID: 3, SenderID: 2, ReceiverID: 1, Body: "older from bob", IsRead: false, CreatedAt: now.Add(-2 * time.Minute)},
		{ID: 2, SenderID: 1, ReceiverID: 2, Body: "older to bob", IsRead: true, CreatedAt: now.Add(-3 * time.Minute)},
	}, nil).Once()
	userRepo.On("GetUsersByIDs", mock.Anything, []int{2, 3}).Return([]models.User{
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/messages/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Conversations, 2)

	assert.Equal(t, "bob", resp.Conversations[0].User.Username)
	assert.Equal(t, "latest from bob", resp.Conversations[0].LastMessage)
	assert.False(t, resp.Conversations[0].IsRead)
	assert.Equal(t, 2, resp.Conversations[0].UnreadCount)

	assert.Equal(t, "carol", resp.Conversations[1].User.Username)
	assert.Equal(t, "latest to carol", resp.Conversations[1].LastMessage)
	assert.Equal(t, 0, resp.Conversations[1].UnreadCount)

	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestListConversationsRepoError(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupMessageRouter(handler)

	messageRepo.On("ListMessagesInvolving", mock.Anything, 1).Return(([]models.Message)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/messages/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestMarkAsReadIdempotent(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupMessageRouter(handler)

	messageRepo.On("MarkConversationRead", mock.Anything, 2, 1).Return(nil).Twice()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/messages/read/2", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	messageRepo.AssertExpectations(t)
}

func TestAggregateConversationsKeepsFirstSeenPerCounterpart(t *testing.T) {
	now := time.Now()
	msgs := []models.Message{
		{ID: 9, SenderID: 2, ReceiverID: 1, Body: "newest", CreatedAt: now},
		{ID: 8, SenderID: 1, ReceiverID: 2, Body: "older", CreatedAt: now},
		{ID: 7, SenderID: 2, ReceiverID: 1, Body: "oldest", CreatedAt: now.Add(-time.Hour)},
	}

	entries := aggregateConversations(1, msgs)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].counterpartID)
	// Identical timestamps resolve by id: the repository orders ties id-desc,
	// so the first message seen is the winner.
	assert.Equal(t, "newest", entries[0].summary.LastMessage)
	assert.Equal(t, 2, entries[0].summary.UnreadCount)
}
