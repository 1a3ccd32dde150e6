package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"buildhub/internal/service"
)

type ScanHandler struct {
	scanner *service.Scanner
}

func NewScanHandler(scanner *service.Scanner) *ScanHandler {
	return &ScanHandler{scanner: scanner}
}

// Trigger handles POST (and, for manual testing, GET) /scan/overdue. An
// optional "project" query parameter narrows the scan to one project.
func (h *ScanHandler) Trigger(c *gin.Context) {
	report, err := h.scanner.Run(c.Request.Context(), time.Now(), c.Query("project"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "overdue scan completed",
		"projects":  report.Projects,
		"notified":  report.Notified,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
