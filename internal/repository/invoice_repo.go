package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"buildhub/internal/model"
)

type InvoiceRepository struct {
	db *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// ListUnpaidByProject returns a project's invoices that still need payment.
func (r *InvoiceRepository) ListUnpaidByProject(ctx context.Context, projectID string) ([]model.Invoice, error) {
	query := `
        SELECT id, project_id, number, amount_cents, status, due_date,
               last_overdue_notification, created_at
        FROM invoices
        WHERE project_id = $1 AND status != 'paid'
        ORDER BY due_date
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []model.Invoice{}
	for rows.Next() {
		var inv model.Invoice
		err := rows.Scan(
			&inv.ID,
			&inv.ProjectID,
			&inv.Number,
			&inv.AmountCents,
			&inv.Status,
			&inv.DueDate,
			&inv.LastOverdueNotification,
			&inv.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

// SetOverdueNotified stamps the same-day dedup marker. Invoices are separate
// records, so markers are written individually.
func (r *InvoiceRepository) SetOverdueNotified(ctx context.Context, id string, at time.Time) error {
	query := `
        UPDATE invoices
        SET last_overdue_notification = $1
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, at, id)
	return err
}
