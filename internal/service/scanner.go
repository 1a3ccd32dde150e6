package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"buildhub/internal/model"
	"buildhub/internal/mq"
	"buildhub/pkg/metrics"
)

// NotificationDispatcher is the dispatch entry point the scanner needs.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, targets Targets, content Content) (*DispatchResult, error)
}

// ScanReport summarizes one scanner run.
type ScanReport struct {
	Projects int
	Notified int
	Failed   int
}

// Scanner walks every project and emits overdue notifications for unpaid
// invoices past due and non-completed stages/tasks past their end date.
// The same-day marker makes re-runs on the same calendar day no-ops for
// entities whose marker persisted; delivery is at-least-once, never
// exactly-once.
type Scanner struct {
	projects   ProjectStore
	invoices   InvoiceStore
	dispatcher NotificationDispatcher
	publisher  Publisher
	loc        *time.Location
	logger     *zap.Logger
}

func NewScanner(
	projects ProjectStore,
	invoices InvoiceStore,
	dispatcher NotificationDispatcher,
	publisher Publisher,
	loc *time.Location,
	logger *zap.Logger,
) *Scanner {
	if loc == nil {
		loc = time.UTC
	}
	return &Scanner{
		projects:   projects,
		invoices:   invoices,
		dispatcher: dispatcher,
		publisher:  publisher,
		loc:        loc,
		logger:     logger,
	}
}

// Run scans all projects, or a single one when projectID is set. A failure
// in one project is logged and does not abort the rest.
func (s *Scanner) Run(ctx context.Context, now time.Time, projectID string) (*ScanReport, error) {
	started := time.Now()
	today := StartOfDay(now, s.loc)
	s.logger.Info("Starting overdue scan",
		zap.String("today", today.Format("2006-01-02")),
	)

	var projects []model.Project
	if projectID != "" {
		p, err := s.projects.FindByID(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("load project %s: %w", projectID, err)
		}
		projects = []model.Project{*p}
	} else {
		var err error
		projects, err = s.projects.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
	}

	report := &ScanReport{Projects: len(projects)}
	for i := range projects {
		p := &projects[i]
		notified, err := s.scanProject(ctx, p, today, now)
		report.Notified += notified
		if err != nil {
			report.Failed++
			s.logger.Error("Project scan failed",
				zap.String("project_id", p.ID),
				zap.Error(err),
			)
			continue
		}
	}

	metrics.ObserveScanDuration(time.Since(started))
	s.logger.Info("Overdue scan completed",
		zap.Int("projects", report.Projects),
		zap.Int("notified", report.Notified),
		zap.Int("failed", report.Failed),
	)

	if s.publisher != nil {
		payload := mq.OverdueScanFinishedPayload{
			Projects:  report.Projects,
			Notified:  report.Notified,
			Failed:    report.Failed,
			StartedAt: started.UTC().Format(time.RFC3339),
		}
		if err := s.publisher.Publish(mq.EventOverdueScanFinished, payload); err != nil {
			s.logger.Warn("Failed to publish scan summary", zap.Error(err))
		}
	}

	return report, nil
}

// scanProject returns how many notifications were emitted for this project.
// Partial progress counts even when an error is returned.
func (s *Scanner) scanProject(ctx context.Context, p *model.Project, today, now time.Time) (int, error) {
	notified := 0

	n, err := s.scanInvoices(ctx, p, today, now)
	notified += n
	if err != nil {
		return notified, err
	}

	n, err = s.scanTimeline(ctx, p, today, now)
	notified += n
	return notified, err
}

func (s *Scanner) scanInvoices(ctx context.Context, p *model.Project, today, now time.Time) (int, error) {
	invoices, err := s.invoices.ListUnpaidByProject(ctx, p.ID)
	if err != nil {
		return 0, fmt.Errorf("list unpaid invoices: %w", err)
	}

	notified := 0
	for i := range invoices {
		inv := &invoices[i]
		if !inv.DueDate.Before(today) || WasNotifiedToday(inv.LastOverdueNotification, now, s.loc) {
			continue
		}

		result, err := s.dispatcher.Dispatch(ctx, s.stakeholders(p), Content{
			Title:     "Invoice overdue",
			Body:      fmt.Sprintf("Invoice %s for project %s was due on %s and is still unpaid.", inv.Number, p.Name, inv.DueDate.Format("2006-01-02")),
			Type:      model.TypeInvoice,
			RelatedID: inv.ID,
			ProjectID: p.ID,
			ActionURL: fmt.Sprintf("/projects/%s/invoices", p.ID),
		})
		if err != nil {
			s.logger.Error("Overdue invoice dispatch failed",
				zap.String("invoice_id", inv.ID),
				zap.Error(err),
			)
			continue
		}
		notified += len(result.Created)
		metrics.IncrementOverdue("invoice")

		// Marker failures are logged only: the next run re-notifies, which
		// is the accepted at-least-once trade-off.
		if err := s.invoices.SetOverdueNotified(ctx, inv.ID, now); err != nil {
			s.logger.Error("Failed to stamp invoice overdue marker",
				zap.String("invoice_id", inv.ID),
				zap.Error(err),
			)
		}
	}

	return notified, nil
}

// scanTimeline checks stages and their tasks, refreshing markers in memory
// and writing the timeline back once per project.
func (s *Scanner) scanTimeline(ctx context.Context, p *model.Project, today, now time.Time) (int, error) {
	notified := 0
	dirty := false

	for si := range p.TaskTimeline {
		stage := &p.TaskTimeline[si]

		if s.entityOverdue(stage.Status, stage.DueDate.End, stage.LastOverdueNotification, today, now) {
			result, err := s.dispatcher.Dispatch(ctx, s.stakeholders(p), Content{
				Title:     "Stage overdue",
				Body:      fmt.Sprintf("Stage %q of project %s is past its due date and not completed.", stage.Name, p.Name),
				Type:      model.TypeProjectUpdate,
				RelatedID: stage.ID,
				ProjectID: p.ID,
				ActionURL: fmt.Sprintf("/projects/%s/timeline", p.ID),
			})
			if err != nil {
				s.logger.Error("Overdue stage dispatch failed",
					zap.String("stage_id", stage.ID),
					zap.Error(err),
				)
			} else {
				notified += len(result.Created)
				metrics.IncrementOverdue("stage")
				stage.LastOverdueNotification = &now
				dirty = true
			}
		}

		for ti := range stage.Tasks {
			task := &stage.Tasks[ti]
			if !s.entityOverdue(task.Status, task.DueDate.End, task.LastOverdueNotification, today, now) {
				continue
			}
			result, err := s.dispatcher.Dispatch(ctx, s.stakeholders(p), Content{
				Title:     "Task overdue",
				Body:      fmt.Sprintf("Task %q in stage %q of project %s is past its due date and not completed.", task.Title, stage.Name, p.Name),
				Type:      model.TypeProjectUpdate,
				RelatedID: task.ID,
				ProjectID: p.ID,
				ActionURL: fmt.Sprintf("/projects/%s/timeline", p.ID),
			})
			if err != nil {
				s.logger.Error("Overdue task dispatch failed",
					zap.String("task_id", task.ID),
					zap.Error(err),
				)
				continue
			}
			notified += len(result.Created)
			metrics.IncrementOverdue("task")
			task.LastOverdueNotification = &now
			dirty = true
		}
	}

	if dirty {
		if err := s.projects.UpdateTaskTimeline(ctx, p.ID, p.TaskTimeline); err != nil {
			return notified, fmt.Errorf("persist task timeline: %w", err)
		}
	}

	return notified, nil
}

func (s *Scanner) entityOverdue(status string, end, last *time.Time, today, now time.Time) bool {
	if status == model.StatusCompleted || end == nil {
		return false
	}
	return end.Before(today) && !WasNotifiedToday(last, now, s.loc)
}

// stakeholders addresses the project client, the assigned manager and every
// admin. Overlaps collapse in recipient resolution.
func (s *Scanner) stakeholders(p *model.Project) Targets {
	ids := []string{}
	if p.ClientID != "" {
		ids = append(ids, p.ClientID)
	}
	if p.ManagerID != "" {
		ids = append(ids, p.ManagerID)
	}
	return Targets{
		RecipientIDs: ids,
		Roles:        []string{model.RoleAdmin},
	}
}
