package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"buildhub/internal/model"
	"buildhub/internal/service"
)

type NotificationHandler struct {
	dispatcher *service.Dispatcher
	feed       *service.Feed
	users      service.UserStore
	projects   service.ProjectStore
}

func NewNotificationHandler(
	dispatcher *service.Dispatcher,
	feed *service.Feed,
	users service.UserStore,
	projects service.ProjectStore,
) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
		feed:       feed,
		users:      users,
		projects:   projects,
	}
}

// Create handles POST /notifications. Only an admin, or a project manager
// who owns the named project, may create notifications.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req struct {
		Title        string   `json:"title"`
		Body         string   `json:"body"`
		Type         string   `json:"type"`
		RecipientID  string   `json:"recipientId"`
		RecipientIDs []string `json:"recipientIds"`
		Roles        []string `json:"roles"`
		IsGlobal     bool     `json:"isGlobal"`
		RelatedID    string   `json:"relatedId"`
		ProjectID    string   `json:"projectId"`
		ActionURL    string   `json:"actionUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	caller, ok := h.caller(c)
	if !ok {
		return
	}

	switch caller.Role {
	case model.RoleAdmin:
		// unrestricted
	case model.RoleProjectManager:
		if req.ProjectID == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "project managers must name a project they manage"})
			return
		}
		project, err := h.projects.FindByID(c.Request.Context(), req.ProjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
			return
		}
		if project.ManagerID != caller.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not the manager of this project"})
			return
		}
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(),
		service.Targets{
			RecipientID:  req.RecipientID,
			RecipientIDs: req.RecipientIDs,
			Roles:        req.Roles,
			Global:       req.IsGlobal,
		},
		service.Content{
			Title:     req.Title,
			Body:      req.Body,
			Type:      req.Type,
			RelatedID: req.RelatedID,
			ProjectID: req.ProjectID,
			ActionURL: req.ActionURL,
			SenderID:  caller.ID,
		},
	)
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) || errors.Is(err, service.ErrNoRecipients) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create notification"})
		return
	}

	resp := gin.H{
		"created": len(result.Created),
		"failed":  result.Failed,
	}
	if len(result.Created) > 0 {
		resp["id"] = result.Created[0].ID
	}
	c.JSON(http.StatusCreated, resp)
}

// List handles GET /notifications: the caller's merged, newest-first feed.
func (h *NotificationHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	notifications, err := h.feed.Load(c.Request.Context(), caller.ID, caller.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notification feed unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	count, err := h.feed.UnreadCount(c.Request.Context(), caller.ID, caller.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notification feed unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	err := h.feed.MarkRead(c.Request.Context(), c.Param("id"), caller.ID, caller.Role)
	if err != nil {
		if errors.Is(err, service.ErrNotRecipient) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not addressed to caller"})
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	marked, err := h.feed.MarkAllRead(c.Request.Context(), caller.ID, caller.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notification feed unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// caller loads the authenticated user set by AuthMiddleware. Disabled
// accounts are rejected even with a valid token.
func (h *NotificationHandler) caller(c *gin.Context) (*model.User, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}

	user, err := h.users.FindByID(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return nil, false
	}
	if user.Disabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return nil, false
	}

	return user, true
}
