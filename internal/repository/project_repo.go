package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"buildhub/internal/model"
)

type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// List returns all projects with their task timelines.
func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	query := `
        SELECT id, name, client_id, manager_id, COALESCE(task_timeline, '[]'), created_at
        FROM projects
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}

	return projects, rows.Err()
}

// FindByID returns one project by id.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	query := `
        SELECT id, name, client_id, manager_id, COALESCE(task_timeline, '[]'), created_at
        FROM projects
        WHERE id = $1
    `
	return scanProject(r.db.QueryRow(ctx, query, id).Scan)
}

// UpdateTaskTimeline writes the full timeline back in a single update. Stage
// and task overdue markers are batched into this one write per project.
func (r *ProjectRepository) UpdateTaskTimeline(ctx context.Context, id string, timeline []model.Stage) error {
	raw, err := json.Marshal(timeline)
	if err != nil {
		return fmt.Errorf("marshal task timeline: %w", err)
	}

	query := `
        UPDATE projects
        SET task_timeline = $1
        WHERE id = $2
    `
	_, err = r.db.Exec(ctx, query, raw, id)
	return err
}

func scanProject(scan func(dest ...any) error) (*model.Project, error) {
	var p model.Project
	var rawTimeline []byte
	if err := scan(&p.ID, &p.Name, &p.ClientID, &p.ManagerID, &rawTimeline, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawTimeline, &p.TaskTimeline); err != nil {
		return nil, fmt.Errorf("unmarshal task timeline: %w", err)
	}
	return &p, nil
}
