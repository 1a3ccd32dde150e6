package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"buildhub/internal/service"
)

type PushHandler struct {
	relay *service.PushRelay
}

func NewPushHandler(relay *service.PushRelay) *PushHandler {
	return &PushHandler{relay: relay}
}

// Send handles POST /push.
func (h *PushHandler) Send(c *gin.Context) {
	var req struct {
		Title     string   `json:"title"`
		Body      string   `json:"body"`
		UserIDs   []string `json:"userIds"`
		ActionURL string   `json:"actionUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if len(req.UserIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userIds is required"})
		return
	}

	report, err := h.relay.Send(c.Request.Context(), req.UserIDs, service.PushPayload{
		Title:     req.Title,
		Body:      req.Body,
		ActionURL: req.ActionURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve device tokens"})
		return
	}

	c.JSON(http.StatusOK, report)
}
