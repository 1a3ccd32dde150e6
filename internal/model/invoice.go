package model

import "time"

// Invoice statuses. "paid" excludes an invoice from overdue scanning.
const (
	InvoicePaid    = "paid"
	InvoicePending = "pending"
)

type Invoice struct {
	ID                      string     `json:"id"`
	ProjectID               string     `json:"projectId"`
	Number                  string     `json:"number"`
	AmountCents             int64      `json:"amountCents"`
	Status                  string     `json:"status"`
	DueDate                 time.Time  `json:"dueDate"`
	LastOverdueNotification *time.Time `json:"lastOverdueNotification,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`
}
