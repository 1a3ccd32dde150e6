package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"buildhub/internal/model"
	"buildhub/internal/mq"
)

var (
	// ErrFeedUnavailable is returned only when every addressing-mode query
	// fails; any partial result is served instead.
	ErrFeedUnavailable = errors.New("notification feed unavailable")

	// ErrNotRecipient rejects a mark-read by anyone but the addressee.
	ErrNotRecipient = errors.New("notification not addressed to caller")
)

// Feed produces a per-user view of the notification store across all four
// addressing modes and fans notification.created events out to live
// subscribers.
type Feed struct {
	store  FeedStore
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[*FeedSubscription]struct{}
}

func NewFeed(store FeedStore, logger *zap.Logger) *Feed {
	return &Feed{
		store:  store,
		logger: logger,
		subs:   map[*FeedSubscription]struct{}{},
	}
}

// Load merges the four addressing-mode queries into one deduplicated,
// newest-first list. The queries run concurrently; a failing query is logged
// and its slice dropped, so the feed degrades to whatever subset succeeded.
func (f *Feed) Load(ctx context.Context, userID, role string) ([]model.Notification, error) {
	queries := []func() ([]model.Notification, error){
		func() ([]model.Notification, error) { return f.store.ListByRecipient(ctx, userID) },
		func() ([]model.Notification, error) { return f.store.ListByRecipientList(ctx, userID) },
		func() ([]model.Notification, error) { return f.store.ListByRole(ctx, role) },
		func() ([]model.Notification, error) { return f.store.ListGlobal(ctx) },
	}

	results := make([][]model.Notification, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q func() ([]model.Notification, error)) {
			defer wg.Done()
			results[i], errs[i] = q()
		}(i, q)
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			f.logger.Warn("Feed query failed",
				zap.Int("query", i),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
	if failed == len(queries) {
		return nil, ErrFeedUnavailable
	}

	seen := map[string]bool{}
	merged := []model.Notification{}
	for _, batch := range results {
		for _, n := range batch {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			merged = append(merged, n)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	return merged, nil
}

// UnreadCount counts unread items in the merged feed.
func (f *Feed) UnreadCount(ctx context.Context, userID, role string) (int, error) {
	merged, err := f.Load(ctx, userID, role)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range merged {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead flips one record to read, provided it is addressed to the caller.
// Marking an already-read record is a no-op, not an error; read never
// reverts to unread.
func (f *Feed) MarkRead(ctx context.Context, id, userID, role string) error {
	n, err := f.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !n.MatchesUser(userID, role) {
		return ErrNotRecipient
	}
	if n.Read {
		return nil
	}
	return f.store.MarkRead(ctx, id)
}

// MarkAllRead marks every unread item currently in the merged feed and
// returns how many were marked. Per-item failures are logged and skipped.
func (f *Feed) MarkAllRead(ctx context.Context, userID, role string) (int, error) {
	merged, err := f.Load(ctx, userID, role)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, n := range merged {
		if n.Read {
			continue
		}
		if err := f.store.MarkRead(ctx, n.ID); err != nil {
			f.logger.Warn("Failed to mark notification read",
				zap.String("id", n.ID),
				zap.Error(err),
			)
			continue
		}
		marked++
	}

	return marked, nil
}

// FeedSubscription is one live listener. C carries records addressed to the
// subscriber, newest events as they arrive. Close detaches it.
type FeedSubscription struct {
	C chan model.Notification

	feed   *Feed
	userID string
	role   string
	once   sync.Once
}

// Subscribe registers a live listener for the given identity. Callers must
// Close the subscription when the identity changes or the listener goes away.
func (f *Feed) Subscribe(userID, role string) *FeedSubscription {
	sub := &FeedSubscription{
		C:      make(chan model.Notification, 16),
		feed:   f,
		userID: userID,
		role:   role,
	}

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	return sub
}

func (s *FeedSubscription) Close() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s)
		s.feed.mu.Unlock()
		close(s.C)
	})
}

// HandleNotificationCreated consumes notification.created events and routes
// them to matching live subscriptions. It satisfies mq.MessageHandler.
func (f *Feed) HandleNotificationCreated(ctx context.Context, raw json.RawMessage) error {
	var p mq.NotificationCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		f.logger.Error("Failed to unmarshal notification.created", zap.Error(err))
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subs {
		if !p.Notification.MatchesUser(sub.userID, sub.role) {
			continue
		}
		select {
		case sub.C <- p.Notification:
		default:
			// Slow consumer; it will catch up on its next Load.
			f.logger.Warn("Dropping live notification for slow subscriber",
				zap.String("id", p.Notification.ID),
				zap.String("user_id", sub.userID),
			)
		}
	}

	return nil
}
