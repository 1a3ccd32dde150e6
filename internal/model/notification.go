package model

import "time"

// Notification types understood by the platform.
const (
	TypeInvoice        = "invoice"
	TypeProjectUpdate  = "project-update"
	TypeConsultation   = "consultation"
	TypeUserSignup     = "user-signup"
	TypeSystemAlert    = "system-alert"
	TypeMessage        = "message"
	TypeDocument       = "document"
	TypeActionRequired = "action-required"
	TypeGeneric        = "generic"
)

// Notification is one persisted notification record. Exactly one addressing
// mode is set per record: RecipientID for a single user, RecipientIDs for a
// list, Roles for role-based delivery, or IsGlobal for a broadcast.
type Notification struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Type         string    `json:"type"`
	RecipientID  string    `json:"recipientId,omitempty"`
	RecipientIDs []string  `json:"recipientIds,omitempty"`
	Roles        []string  `json:"roles,omitempty"`
	IsGlobal     bool      `json:"isGlobal"`
	RelatedID    string    `json:"relatedId,omitempty"`
	ProjectID    string    `json:"projectId,omitempty"`
	ActionURL    string    `json:"actionUrl,omitempty"`
	SenderID     string    `json:"senderId,omitempty"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MatchesUser reports whether this record is addressed to the given user,
// under any of the four addressing modes.
func (n *Notification) MatchesUser(userID, role string) bool {
	if n.IsGlobal {
		return true
	}
	if n.RecipientID != "" && n.RecipientID == userID {
		return true
	}
	for _, id := range n.RecipientIDs {
		if id == userID {
			return true
		}
	}
	for _, r := range n.Roles {
		if r == role {
			return true
		}
	}
	return false
}
