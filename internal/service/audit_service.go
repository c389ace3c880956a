package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cinema-api/internal/event"
	"cinema-api/internal/model"
	"cinema-api/pkg/apierror"
)

const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

type AuditService struct {
	store        AuditStore
	writeTimeout time.Duration
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store, writeTimeout: 5 * time.Second}
}

// Run records every event received on events until ctx is done or the
// channel is closed. Write failures are logged and the event is skipped.
func (s *AuditService) Run(ctx context.Context, events <-chan event.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.record(ctx, e)
		}
	}
}

// Start subscribes to bus and records events in the background. The returned
// stop function unsubscribes and waits for buffered events to be written; if
// ctx ends first, pending writes are cancelled and stop still waits for the
// loop to exit before returning ctx.Err().
func (s *AuditService) Start(bus event.Bus) func(ctx context.Context) error {
	events, unsubscribe := bus.Subscribe()
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.Run(runCtx, events)
	}()

	return func(ctx context.Context) error {
		defer cancel()
		unsubscribe()

		select {
		case <-done:
			return nil
		case <-ctx.Done():
			cancel()
			<-done
			return ctx.Err()
		}
	}
}

func (s *AuditService) record(ctx context.Context, e event.Event) {
	entry := EntryFromEvent(e)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	if err := s.store.Log(writeCtx, entry); err != nil {
		slog.Error("audit write failed", "action", entry.Action, "error", err)
	}
}

// EntryFromEvent maps an auth event onto an audit row.
func EntryFromEvent(e event.Event) model.AuditEntry {
	status := AuditStatusSuccess
	if e.Type == event.TypeLoginFailed {
		status = AuditStatusFailure
	}

	occurredAt := e.Timestamp
	if occurredAt == "" {
		occurredAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	entry := model.AuditEntry{
		Action:     string(e.Type),
		OccurredAt: occurredAt,
		Actor: model.AuditActor{
			UserID: e.Payload.UserID,
			Email:  e.Payload.Email,
			Role:   e.Payload.Role,
			IP:     e.Payload.IP,
		},
		Status:   status,
		Resource: "/api/users",
	}
	if e.Payload.Reason != "" {
		entry.Detail = map[string]string{"reason": e.Payload.Reason}
	}

	return entry
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	if _, err := parseOptionalAuditTime(query.From); err != nil {
		return nil, model.Meta{}, apierror.BadRequest("invalid 'from' datetime format", query.From)
	}
	if _, err := parseOptionalAuditTime(query.To); err != nil {
		return nil, model.Meta{}, apierror.BadRequest("invalid 'to' datetime format", query.To)
	}

	return s.store.Query(ctx, query)
}

func parseOptionalAuditTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}

	if value, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return value.UTC(), nil
	}

	value, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return time.Time{}, err
	}

	return value.UTC(), nil
}
