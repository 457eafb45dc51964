package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/chat"
	"docuchat/internal/session"
	"docuchat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *chat.Service
}

type SendMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

func NewChatHandler(chatService *chat.Service) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	sessionID, err := h.chatService.CreateSession(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	response.OK(c, gin.H{"sessionId": sessionID})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" || req.SessionID == "" {
		response.Error(c, http.StatusBadRequest, "Message and sessionId are required")
		return
	}

	answer, err := h.chatService.Generate(c.Request.Context(), req.Message, req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrUnknownSession) {
			response.Failure(c, http.StatusNotFound, "Session not found")
			return
		}
		response.Failure(c, http.StatusInternalServerError, "Failed to generate response")
		return
	}

	response.Success(c, answer)
}

// ClearSession removes the conversation history. Clearing an unknown
// session is not an error, matching how the frontend retries deletes.
func (h *ChatHandler) ClearSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if err := h.chatService.ClearSession(c.Request.Context(), sessionID); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to clear session")
		return
	}
	response.OK(c, gin.H{"success": true})
}
