package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"buildhub/internal/model"
	"buildhub/internal/mq"
)

func newDispatcherFixture(users ...model.User) (*Dispatcher, *fakeNotificationStore, *fakePublisher) {
	store := newFakeNotificationStore()
	publisher := &fakePublisher{}
	resolver := NewRecipientResolver(newFakeUserStore(users...), zap.NewNop())
	return NewDispatcher(store, resolver, publisher, zap.NewNop()), store, publisher
}

func TestDispatchFanOutOneRecordPerRecipient(t *testing.T) {
	d, store, publisher := newDispatcherFixture(
		model.User{ID: "u-1", Role: model.RoleClient},
		model.User{ID: "u-2", Role: model.RoleProjectManager},
	)

	result, err := d.Dispatch(context.Background(),
		Targets{RecipientIDs: []string{"u-1", "u-2"}},
		Content{Title: "Stage overdue", Type: model.TypeProjectUpdate},
	)

	assert.NoError(t, err)
	assert.Len(t, result.Created, 2)
	assert.Equal(t, 0, result.Failed)
	for _, n := range result.Created {
		assert.False(t, n.IsGlobal)
		assert.NotEmpty(t, n.RecipientID)
		assert.NotEmpty(t, n.ID)
	}
	assert.Equal(t, []string{mq.EventNotificationCreated, mq.EventNotificationCreated}, publisher.events)
	assert.Len(t, store.records, 2)
}

func TestDispatchUserInListAndRoleGetsOneRecord(t *testing.T) {
	d, store, _ := newDispatcherFixture(
		model.User{ID: "admin-1", Role: model.RoleAdmin},
	)

	result, err := d.Dispatch(context.Background(),
		Targets{
			RecipientIDs: []string{"admin-1"},
			Roles:        []string{model.RoleAdmin},
		},
		Content{Title: "Invoice overdue"},
	)

	assert.NoError(t, err)
	assert.Len(t, result.Created, 1)
	assert.Equal(t, "admin-1", store.records[0].RecipientID)
}

func TestDispatchGlobalCreatesSingleBroadcastRecord(t *testing.T) {
	d, store, _ := newDispatcherFixture()

	result, err := d.Dispatch(context.Background(),
		Targets{Global: true},
		Content{Title: "Maintenance window", Type: model.TypeSystemAlert},
	)

	assert.NoError(t, err)
	assert.Len(t, result.Created, 1)
	assert.True(t, store.records[0].IsGlobal)
	assert.Empty(t, store.records[0].RecipientID)
	assert.Empty(t, store.records[0].RecipientIDs)
}

func TestDispatchRejectsMissingTargets(t *testing.T) {
	d, store, _ := newDispatcherFixture()

	result, err := d.Dispatch(context.Background(),
		Targets{},
		Content{Title: "Orphan"},
	)

	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.Nil(t, result)
	assert.Empty(t, store.records)
}

func TestDispatchRejectsMissingTitle(t *testing.T) {
	d, _, _ := newDispatcherFixture(model.User{ID: "u-1"})

	_, err := d.Dispatch(context.Background(),
		Targets{RecipientID: "u-1"},
		Content{},
	)

	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestDispatchDefaultsTypeToGeneric(t *testing.T) {
	d, store, _ := newDispatcherFixture(model.User{ID: "u-1"})

	_, err := d.Dispatch(context.Background(),
		Targets{RecipientID: "u-1"},
		Content{Title: "Untyped"},
	)

	assert.NoError(t, err)
	assert.Equal(t, model.TypeGeneric, store.records[0].Type)
}

func TestDispatchInsertFailureDoesNotBlockOtherRecipients(t *testing.T) {
	store := newFakeNotificationStore()
	resolver := NewRecipientResolver(newFakeUserStore(
		model.User{ID: "u-1"},
		model.User{ID: "u-2"},
	), zap.NewNop())
	d := NewDispatcher(store, resolver, nil, zap.NewNop())

	// First insert fails, the rest succeed.
	store.insertErr = errors.New("store unavailable")
	result, err := d.Dispatch(context.Background(),
		Targets{RecipientIDs: []string{"u-1", "u-2"}},
		Content{Title: "Flaky"},
	)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Failed)

	store.insertErr = nil
	result, err = d.Dispatch(context.Background(),
		Targets{RecipientIDs: []string{"u-1", "u-2"}},
		Content{Title: "Recovered"},
	)
	assert.NoError(t, err)
	assert.Len(t, result.Created, 2)
	assert.Equal(t, 0, result.Failed)
}

func TestDispatchPublishFailureKeepsRecord(t *testing.T) {
	store := newFakeNotificationStore()
	resolver := NewRecipientResolver(newFakeUserStore(model.User{ID: "u-1"}), zap.NewNop())
	publisher := &fakePublisher{err: errors.New("broker down")}
	d := NewDispatcher(store, resolver, publisher, zap.NewNop())

	result, err := d.Dispatch(context.Background(),
		Targets{RecipientID: "u-1"},
		Content{Title: "Persisted anyway"},
	)

	assert.NoError(t, err)
	assert.Len(t, result.Created, 1)
	assert.Len(t, store.records, 1)
}

func TestDispatchSkipsSender(t *testing.T) {
	d, store, _ := newDispatcherFixture(
		model.User{ID: "pm-1", Role: model.RoleProjectManager},
		model.User{ID: "client-1", Role: model.RoleClient},
	)

	result, err := d.Dispatch(context.Background(),
		Targets{RecipientIDs: []string{"pm-1", "client-1"}},
		Content{Title: "Update", SenderID: "pm-1"},
	)

	assert.NoError(t, err)
	assert.Len(t, result.Created, 1)
	assert.Equal(t, "client-1", store.records[0].RecipientID)
}
