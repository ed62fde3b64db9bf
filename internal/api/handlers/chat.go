// chat.go implements the company chat handlers. Channels are free-form names
// created implicitly by the first message posted to them; messages are
// append-only. Both posting and reading are gated by use_chat.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

const (
	defaultChatPageSize = 50
	maxChatPageSize     = 200
	maxChannelNameLen   = 64
	maxChatBodyLen      = 4000
)

// ChatHandlers handles chat endpoints
type ChatHandlers struct {
	chatRepo *repositories.ChatRepository
}

// NewChatHandlers creates a new chat handlers instance
func NewChatHandlers(chatRepo *repositories.ChatRepository) *ChatHandlers {
	return &ChatHandlers{chatRepo: chatRepo}
}

// PostMessageRequest represents the request to post a chat message
type PostMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// @Summary      List channels
// @Description  Returns every channel that has at least one message. Requires the use_chat permission.
// @Tags         Chat
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   string
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Router       /api/v1/chat/channels [get]
// ListChannels returns the company's chat channels
// GET /api/v1/chat/channels
func (h *ChatHandlers) ListChannels(c *gin.Context) {
	channels, err := h.chatRepo.ListChannels(c.Request.Context(), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list channels"})
		return
	}

	c.JSON(http.StatusOK, channels)
}

// @Summary      List messages
// @Description  Returns a channel's messages, newest first. Requires the use_chat permission.
// @Tags         Chat
// @Security     Bearer
// @Produce      json
// @Param        channel  path   string  true   "Channel name"
// @Param        limit    query  int     false  "Page size (default 50, max 200)"
// @Success      200  {array}   models.ChatMessage
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Router       /api/v1/chat/channels/{channel}/messages [get]
// ListMessages returns a channel's messages
// GET /api/v1/chat/channels/:channel/messages
func (h *ChatHandlers) ListMessages(c *gin.Context) {
	limit := defaultChatPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if limit > maxChatPageSize {
		limit = maxChatPageSize
	}

	messages, err := h.chatRepo.ListByChannel(c.Request.Context(), c.GetString("company_id"), c.Param("channel"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// @Summary      Post message
// @Description  Posts a message to a channel, creating the channel on first use. Requires the use_chat permission.
// @Tags         Chat
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        channel  path  string              true  "Channel name"
// @Param        request  body  PostMessageRequest  true  "Message body"
// @Success      201  {object}  models.ChatMessage
// @Failure      400  {object}  map[string]interface{}  "Invalid request, channel name, or body"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Router       /api/v1/chat/channels/{channel}/messages [post]
// PostMessage posts a message to a channel
// POST /api/v1/chat/channels/:channel/messages
func (h *ChatHandlers) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel := strings.TrimSpace(c.Param("channel"))
	if channel == "" || len(channel) > maxChannelNameLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Channel name must be 1-64 characters"})
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message body must not be empty"})
		return
	}
	if len(body) > maxChatBodyLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message body exceeds 4000 characters"})
		return
	}

	msg := &models.ChatMessage{
		CompanyID: c.GetString("company_id"),
		Channel:   channel,
		UserID:    c.GetString("user_id"),
		Body:      body,
	}
	if err := h.chatRepo.Create(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}
