package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"buildhub/internal/model"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `
        id, title, body, type,
        COALESCE(recipient_id, ''), COALESCE(recipient_ids, '{}'), COALESCE(roles, '{}'),
        is_global, COALESCE(related_id, ''), COALESCE(project_id, ''),
        COALESCE(action_url, ''), COALESCE(sender_id, ''), read, created_at
`

// Insert persists the record, assigning id and created_at. The stored id and
// timestamp are written back into n.
func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	n.ID = uuid.New().String()
	query := `
        INSERT INTO notifications
            (id, title, body, type, recipient_id, recipient_ids, roles, is_global,
             related_id, project_id, action_url, sender_id, read, created_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8,
                NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), false, NOW())
        RETURNING created_at
    `
	return r.db.QueryRow(ctx, query,
		n.ID, n.Title, n.Body, n.Type,
		n.RecipientID, n.RecipientIDs, n.Roles, n.IsGlobal,
		n.RelatedID, n.ProjectID, n.ActionURL, n.SenderID,
	).Scan(&n.CreatedAt)
}

// FindByID returns one record by id.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	query := `
        SELECT ` + notificationColumns + `
        FROM notifications
        WHERE id = $1
    `
	var n model.Notification
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID,
		&n.Title,
		&n.Body,
		&n.Type,
		&n.RecipientID,
		&n.RecipientIDs,
		&n.Roles,
		&n.IsGlobal,
		&n.RelatedID,
		&n.ProjectID,
		&n.ActionURL,
		&n.SenderID,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByRecipient returns records addressed to one user directly.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID string) ([]model.Notification, error) {
	query := `
        SELECT ` + notificationColumns + `
        FROM notifications
        WHERE recipient_id = $1
        ORDER BY created_at DESC
    `
	return r.list(ctx, query, userID)
}

// ListByRecipientList returns records whose recipient list contains the user.
func (r *NotificationRepository) ListByRecipientList(ctx context.Context, userID string) ([]model.Notification, error) {
	query := `
        SELECT ` + notificationColumns + `
        FROM notifications
        WHERE $1 = ANY(recipient_ids)
        ORDER BY created_at DESC
    `
	return r.list(ctx, query, userID)
}

// ListByRole returns records addressed to a role.
func (r *NotificationRepository) ListByRole(ctx context.Context, role string) ([]model.Notification, error) {
	query := `
        SELECT ` + notificationColumns + `
        FROM notifications
        WHERE $1 = ANY(roles)
        ORDER BY created_at DESC
    `
	return r.list(ctx, query, role)
}

// ListGlobal returns broadcast records.
func (r *NotificationRepository) ListGlobal(ctx context.Context) ([]model.Notification, error) {
	query := `
        SELECT ` + notificationColumns + `
        FROM notifications
        WHERE is_global = true
        ORDER BY created_at DESC
    `
	return r.list(ctx, query)
}

// MarkRead flips read to true. Already-read records are left untouched, so
// repeated calls are no-ops.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	query := `
        UPDATE notifications
        SET read = true
        WHERE id = $1 AND read = false
    `
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *NotificationRepository) list(ctx context.Context, query string, args ...any) ([]model.Notification, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(
			&n.ID,
			&n.Title,
			&n.Body,
			&n.Type,
			&n.RecipientID,
			&n.RecipientIDs,
			&n.Roles,
			&n.IsGlobal,
			&n.RelatedID,
			&n.ProjectID,
			&n.ActionURL,
			&n.SenderID,
			&n.Read,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}
