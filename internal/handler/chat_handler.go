package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Turner runs one chat turn.
type Turner interface {
	Turn(ctx context.Context, companionID, userID, prompt string) (string, error)
}

// ChatHandler handles chat-related HTTP requests.
type ChatHandler struct {
	chat Turner
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat Turner) *ChatHandler {
	return &ChatHandler{
		chat: chat,
	}
}

// ChatRequest represents the request body for chat endpoint.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponse represents the response body for chat endpoint.
type ChatResponse struct {
	Completion string `json:"completion"`
}

// Chat handles POST /api/chat/:chatId requests.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.String(http.StatusBadRequest, "Prompt is required")
	}

	completion, err := h.chat.Turn(c.Request().Context(), c.Param("chatId"), UserID(c), req.Prompt)
	if err != nil {
		return textError(c, err)
	}

	return c.JSON(http.StatusOK, ChatResponse{Completion: completion})
}

// Health handles GET /health requests.
func (h *ChatHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
