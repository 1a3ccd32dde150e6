package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"buildhub/internal/service"
)

type EmailHandler struct {
	mailer *service.Mailer
}

func NewEmailHandler(mailer *service.Mailer) *EmailHandler {
	return &EmailHandler{mailer: mailer}
}

// Send handles POST /email. Delivery is an opaque provider call; the
// endpoint only validates and forwards.
func (h *EmailHandler) Send(c *gin.Context) {
	var req struct {
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		Body    string   `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if len(req.To) == 0 || req.Subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to and subject are required"})
		return
	}

	if err := h.mailer.Send(c.Request.Context(), req.To, req.Subject, req.Body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": len(req.To)})
}
