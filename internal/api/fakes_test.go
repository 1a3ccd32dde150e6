package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"buildhub/internal/model"
)

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
		return nil, pgx.ErrNoRows
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

type fakeProjectStore struct {
	projects map[string]model.Project
}

func newFakeProjectStore(projects ...model.Project) *fakeProjectStore {
	s := &fakeProjectStore{projects: map[string]model.Project{}}
	for _, p := range projects {
		s.projects[p.ID] = p
	}
	return s
}

func (s *fakeProjectStore) List(_ context.Context) ([]model.Project, error) {
	out := []model.Project{}
	for _, p := range s.projects {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeProjectStore) FindByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (s *fakeProjectStore) UpdateTaskTimeline(_ context.Context, id string, timeline []model.Stage) error {
	p, ok := s.projects[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.TaskTimeline = timeline
	s.projects[id] = p
	return nil
}

// fakeNotificationStore backs both the dispatcher and the feed.
type fakeNotificationStore struct {
	mu      sync.Mutex
	seq     int
	records []model.Notification
}

func (s *fakeNotificationStore) Insert(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	n.ID = fmt.Sprintf("n-%d", s.seq)
	n.CreatedAt = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
	s.records = append(s.records, *n)
	return nil
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
	return nil, pgx.ErrNoRows
}

func (s *fakeNotificationStore) ListByRecipient(_ context.Context, userID string) ([]model.Notification, error) {
	return s.filter(func(n model.Notification) bool { return n.RecipientID == userID }), nil
}

func (s *fakeNotificationStore) ListByRecipientList(_ context.Context, userID string) ([]model.Notification, error) {
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
	return s.filter(func(n model.Notification) bool { return n.IsGlobal }), nil
}

func (s *fakeNotificationStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
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
