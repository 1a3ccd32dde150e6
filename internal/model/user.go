package model

import "time"

// Portal roles.
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project manager"
	RoleClient         = "client"
)

// User is a portal account. Auth itself is the identity provider's job; this
// record carries what dispatch needs: role, disabled flag and device token.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Disabled    bool      `json:"disabled"`
	DeviceToken string    `json:"deviceToken,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
