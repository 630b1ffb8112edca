package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"coffeehouse/internal/repository"
)

type postMessageReq struct {
	Text string `json:"text"`
}

// @Summary Chat messages in send order
// @Tags chat
// @Produce json
// @Success 200 {array} domain.ChatMessage
// @Router /chat/messages [get]
func (s *Server) listMessages(c *gin.Context) {
	msgs, err := s.chat.Messages(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// @Summary Send a message, the cafe replies after a short delay
// @Tags chat
// @Accept json
// @Produce json
// @Param input body postMessageReq true "Message"
// @Success 201 {object} domain.ChatMessage
// @Success 204
// @Failure 400 {object} map[string]string
// @Router /chat/messages [post]
func (s *Server) postMessage(c *gin.Context) {
	var req postMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	msg, err := s.chat.Post(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	if msg == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// @Summary Canned prompts for quick buttons
// @Tags chat
// @Produce json
// @Success 200 {array} string
// @Router /chat/quick-messages [get]
func (s *Server) quickMessages(c *gin.Context) {
	c.JSON(http.StatusOK, s.chat.QuickMessages())
}

// @Summary Stream new chat messages (server-sent events)
// @Tags chat
// @Produce text/event-stream
// @Success 200 {object} domain.ChatMessage
// @Router /chat/events [get]
func (s *Server) chatEvents(c *gin.Context) {
	ctx := c.Request.Context()
	updates, cancel := s.events.ChatUpdates(repository.SessionFromContext(ctx))
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case m, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("message", m)
			return true
		}
	})
}
