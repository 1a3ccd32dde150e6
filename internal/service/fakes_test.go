package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"buildhub/internal/model"
)

// In-memory stands-ins for the pgx repositories.

type fakeUserStore struct {
	users map[string]model.User
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]model.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &u, nil
}

func (s *fakeUserStore) ListByRole(_ context.Context, role string) ([]model.User, error) {
	users := []model.User{}
	for _, u := range s.users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *fakeUserStore) DeviceTokens(_ context.Context, userIDs []string) (map[string]string, error) {
	tokens := map[string]string{}
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok && u.DeviceToken != "" {
			tokens[id] = u.DeviceToken
		}
	}
	return tokens, nil
}

type fakeNotificationStore struct {
	mu      sync.Mutex
	seq     int
	now     time.Time
	records []model.Notification

	insertErr error

	listByRecipientErr     error
	listByRecipientListErr error
	listByRoleErr          error
	listGlobalErr          error
	markReadErr            error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{now: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
}

func (s *fakeNotificationStore) Insert(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.seq++
	n.ID = fmt.Sprintf("n-%d", s.seq)
	n.CreatedAt = s.now.Add(time.Duration(s.seq) * time.Second)
	s.records = append(s.records, *n)
	return nil
}

func (s *fakeNotificationStore) add(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, n)
}

func (s *fakeNotificationStore) FindByID(_ context.Context, id string) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			n := s.records[i]
			return &n, nil
		}
	}
	return nil, errors.New("notification not found")
}

func (s *fakeNotificationStore) ListByRecipient(_ context.Context, userID string) ([]model.Notification, error) {
	if s.listByRecipientErr != nil {
		return nil, s.listByRecipientErr
	}
	return s.filter(func(n model.Notification) bool { return n.RecipientID == userID }), nil
}

func (s *fakeNotificationStore) ListByRecipientList(_ context.Context, userID string) ([]model.Notification, error) {
	if s.listByRecipientListErr != nil {
		return nil, s.listByRecipientListErr
	}
	return s.filter(func(n model.Notification) bool {
		for _, id := range n.RecipientIDs {
			if id == userID {
				return true
			}
		}
		return false
	}), nil
}

func (s *fakeNotificationStore) ListByRole(_ context.Context, role string) ([]model.Notification, error) {
	if s.listByRoleErr != nil {
		return nil, s.listByRoleErr
	}
	return s.filter(func(n model.Notification) bool {
		for _, r := range n.Roles {
			if r == role {
				return true
			}
		}
		return false
	}), nil
}

func (s *fakeNotificationStore) ListGlobal(_ context.Context) ([]model.Notification, error) {
	if s.listGlobalErr != nil {
		return nil, s.listGlobalErr
	}
	return s.filter(func(n model.Notification) bool { return n.IsGlobal }), nil
}

func (s *fakeNotificationStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markReadErr != nil {
		return s.markReadErr
	}
	for i := range s.records {
		if s.records[i].ID == id && !s.records[i].Read {
			s.records[i].Read = true
		}
	}
	return nil
}

func (s *fakeNotificationStore) filter(keep func(model.Notification) bool) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Notification{}
	for _, n := range s.records {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

type fakeProjectStore struct {
	mu       sync.Mutex
	projects []model.Project

	listErr           error
	updateTimelineErr error
	timelineWrites    int
}

func (s *fakeProjectStore) List(_ context.Context) ([]model.Project, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Project, 0, len(s.projects))
	for i := range s.projects {
		out = append(out, cloneProject(s.projects[i]))
	}
	return out, nil
}

func (s *fakeProjectStore) FindByID(_ context.Context, id string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			p := cloneProject(s.projects[i])
			return &p, nil
		}
	}
	return nil, errors.New("project not found")
}

// cloneProject detaches the timeline so callers mutate their own copy, the
// way rows read from the database would behave.
func cloneProject(p model.Project) model.Project {
	timeline := make([]model.Stage, len(p.TaskTimeline))
	for i, stage := range p.TaskTimeline {
		stage.Tasks = append([]model.Task{}, stage.Tasks...)
		timeline[i] = stage
	}
	p.TaskTimeline = timeline
	return p
}

func (s *fakeProjectStore) UpdateTaskTimeline(_ context.Context, id string, timeline []model.Stage) error {
	if s.updateTimelineErr != nil {
		return s.updateTimelineErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i].TaskTimeline = timeline
			s.timelineWrites++
			return nil
		}
	}
	return errors.New("project not found")
}

type fakeInvoiceStore struct {
	mu       sync.Mutex
	invoices map[string][]model.Invoice // keyed by project id

	listErrFor map[string]error
	markErrFor map[string]error
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{
		invoices:   map[string][]model.Invoice{},
		listErrFor: map[string]error{},
		markErrFor: map[string]error{},
	}
}

func (s *fakeInvoiceStore) ListUnpaidByProject(_ context.Context, projectID string) ([]model.Invoice, error) {
	if err := s.listErrFor[projectID]; err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Invoice{}
	for _, inv := range s.invoices[projectID] {
		if inv.Status != model.InvoicePaid {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fakeInvoiceStore) SetOverdueNotified(_ context.Context, id string, at time.Time) error {
	if err := s.markErrFor[id]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for projectID := range s.invoices {
		for i := range s.invoices[projectID] {
			if s.invoices[projectID][i].ID == id {
				stamp := at
				s.invoices[projectID][i].LastOverdueNotification = &stamp
				return nil
			}
		}
	}
	return errors.New("invoice not found")
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *fakePublisher) Publish(routingKey string, _ any) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}
