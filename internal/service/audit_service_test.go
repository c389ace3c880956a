package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cinema-api/internal/event"
	"cinema-api/internal/model"
	"cinema-api/pkg/apierror"
)

func TestEntryFromEvent(t *testing.T) {
	entry := EntryFromEvent(event.Event{
		Type:      event.TypeLoginFailed,
		Timestamp: "2026-05-01T12:00:00Z",
		Payload:   event.AuthPayload{Email: "a@x.com", IP: "10.0.0.1", Reason: "invalid_credential"},
	})

	assert.Equal(t, "login.failed", entry.Action)
	assert.Equal(t, AuditStatusFailure, entry.Status)
	assert.Equal(t, "2026-05-01T12:00:00Z", entry.OccurredAt)
	assert.Equal(t, "a@x.com", entry.Actor.Email)
	assert.Equal(t, map[string]string{"reason": "invalid_credential"}, entry.Detail)

	ok := EntryFromEvent(event.Event{Type: event.TypeIdentityRegistered})
	assert.Equal(t, AuditStatusSuccess, ok.Status)
	assert.NotEmpty(t, ok.OccurredAt)
	assert.Nil(t, ok.Detail)
}

func TestAuditService_RunPersistsPublishedEvents(t *testing.T) {
	store := new(mockAuditStore)
	recorded := make(chan model.AuditEntry, 2)
	store.On("Log", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		recorded <- args.Get(1).(model.AuditEntry)
	}).Return(nil)

	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		NewAuditService(store).Run(ctx, events)
		close(done)
	}()

	bus.Publish(event.Event{Type: event.TypeIdentityRegistered, Payload: event.AuthPayload{Email: "a@x.com"}})
	bus.Publish(event.Event{Type: event.TypeLoginSucceeded, Payload: event.AuthPayload{Email: "a@x.com"}})

	for _, want := range []string{"identity.registered", "login.succeeded"} {
		select {
		case got := <-recorded:
			assert.Equal(t, want, got.Action)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	unsubscribe()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("audit loop did not stop after unsubscribe")
	}
}

func TestAuditService_StopDrainsBufferedEvents(t *testing.T) {
	store := new(mockAuditStore)
	release := make(chan struct{})
	store.On("Log", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		<-release
	}).Return(nil)

	bus := event.NewBus()
	stop := NewAuditService(store).Start(bus)

	for i := 0; i < 3; i++ {
		bus.Publish(event.Event{Type: event.TypeLoginFailed, Payload: event.AuthPayload{Email: "a@x.com"}})
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, stop(ctx))
	store.AssertNumberOfCalls(t, "Log", 3)

	bus.Publish(event.Event{Type: event.TypeLoginFailed})
	store.AssertNumberOfCalls(t, "Log", 3)
}

func TestAuditService_StopGivesUpAfterDeadline(t *testing.T) {
	store := new(mockAuditStore)
	started := make(chan struct{}, 1)
	store.On("Log", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		started <- struct{}{}
		<-args.Get(0).(context.Context).Done()
	}).Return(context.DeadlineExceeded)

	svc := NewAuditService(store)
	svc.writeTimeout = 50 * time.Millisecond
	bus := event.NewBus()
	stop := svc.Start(bus)

	bus.Publish(event.Event{Type: event.TypeLoginFailed})
	bus.Publish(event.Event{Type: event.TypeLoginFailed})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, stop(ctx), context.DeadlineExceeded)
}

func TestAuditService_QueryRejectsBadTimes(t *testing.T) {
	svc := NewAuditService(new(mockAuditStore))

	_, _, err := svc.Query(context.Background(), model.AuditQuery{From: "yesterday"})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestAuditService_QueryDelegates(t *testing.T) {
	store := new(mockAuditStore)
	query := model.AuditQuery{Action: "login.failed", From: "2026-05-01T00:00:00Z", Page: 1, Limit: 10}
	store.On("Query", mock.Anything, query).Return([]model.AuditEntry{{Action: "login.failed"}}, model.Meta{Total: 1}, nil)

	items, meta, err := NewAuditService(store).Query(context.Background(), query)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, meta.Total)
	store.AssertExpectations(t)
}
