package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"buildhub/internal/model"
	"buildhub/internal/mq"
	"buildhub/pkg/metrics"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrNoRecipients  = errors.New("no recipients specified")
)

// Content is the addressing-independent part of a dispatch call.
type Content struct {
	Title     string
	Body      string
	Type      string
	RelatedID string
	ProjectID string
	ActionURL string
	SenderID  string
}

// DispatchResult reports one dispatch call: the records that were persisted
// and the number of per-recipient inserts that failed.
type DispatchResult struct {
	Created []model.Notification
	Failed  int
}

// Dispatcher persists notification records, fanning a single logical event
// out to every resolved recipient, and publishes a notification.created
// event per persisted record for live feed delivery.
type Dispatcher struct {
	store     NotificationStore
	resolver  *RecipientResolver
	publisher Publisher
	logger    *zap.Logger
}

func NewDispatcher(store NotificationStore, resolver *RecipientResolver, publisher Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
	}
}

// Dispatch validates, resolves recipients and inserts one record per
// recipient (or a single broadcast record). A failed insert for one
// recipient is logged and does not block the others.
func (d *Dispatcher) Dispatch(ctx context.Context, targets Targets, content Content) (*DispatchResult, error) {
	if content.Title == "" {
		return nil, ErrTitleRequired
	}
	if !targets.Global && targets.empty() {
		return nil, ErrNoRecipients
	}
	if content.Type == "" {
		content.Type = model.TypeGeneric
	}

	result := &DispatchResult{}

	if targets.Global {
		n := d.record(content)
		n.IsGlobal = true
		d.insert(ctx, n, "global", result)
		return result, nil
	}

	recipients := d.resolver.Resolve(ctx, targets, ResolveOptions{SkipUserID: content.SenderID})
	for _, userID := range recipients {
		n := d.record(content)
		n.RecipientID = userID
		d.insert(ctx, n, "direct", result)
	}

	return result, nil
}

func (d *Dispatcher) record(content Content) *model.Notification {
	return &model.Notification{
		Title:     content.Title,
		Body:      content.Body,
		Type:      content.Type,
		RelatedID: content.RelatedID,
		ProjectID: content.ProjectID,
		ActionURL: content.ActionURL,
		SenderID:  content.SenderID,
	}
}

func (d *Dispatcher) insert(ctx context.Context, n *model.Notification, mode string, result *DispatchResult) {
	if err := d.store.Insert(ctx, n); err != nil {
		d.logger.Error("Failed to insert notification",
			zap.String("recipient_id", n.RecipientID),
			zap.String("type", n.Type),
			zap.Error(err),
		)
		metrics.IncrementDispatchFailure(mode)
		result.Failed++
		return
	}

	metrics.IncrementDispatched(mode)
	result.Created = append(result.Created, *n)

	if d.publisher == nil {
		return
	}
	payload := mq.NotificationCreatedPayload{Notification: *n}
	if err := d.publisher.Publish(mq.EventNotificationCreated, payload); err != nil {
		// The record is persisted; live delivery degrades to the next load.
		d.logger.Warn("Failed to publish notification.created",
			zap.String("id", n.ID),
			zap.Error(err),
		)
	}
}
