package service

import (
	"context"
	"time"

	"buildhub/internal/model"
)

// Store interfaces consumed by the services in this package. The pgx
// repositories satisfy them; tests use in-memory fakes.

type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) error
}

type FeedStore interface {
	FindByID(ctx context.Context, id string) (*model.Notification, error)
	ListByRecipient(ctx context.Context, userID string) ([]model.Notification, error)
	ListByRecipientList(ctx context.Context, userID string) ([]model.Notification, error)
	ListByRole(ctx context.Context, role string) ([]model.Notification, error)
	ListGlobal(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
}

type DeviceTokenStore interface {
	DeviceTokens(ctx context.Context, userIDs []string) (map[string]string, error)
}

type ProjectStore interface {
	List(ctx context.Context) ([]model.Project, error)
	FindByID(ctx context.Context, id string) (*model.Project, error)
	UpdateTaskTimeline(ctx context.Context, id string, timeline []model.Stage) error
}

type InvoiceStore interface {
	ListUnpaidByProject(ctx context.Context, projectID string) ([]model.Invoice, error)
	SetOverdueNotified(ctx context.Context, id string, at time.Time) error
}

// Publisher is the event-publishing side of the MQ producer.
type Publisher interface {
	Publish(routingKey string, payload any) error
}
