package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"aulagate/internal/platform/privacy"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily. Every event is
// also mirrored to the structured log with log_type=audit so log aggregation
// picks up the trail without reading the store.
type Publisher struct {
	store  Store
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for the audit log mirror and async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

// processEvents runs in a goroutine and persists events from the channel.
func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil {
			if p.logger != nil {
				p.logger.Error("failed to persist audit event",
					"error", err,
					"action", event.Action,
					"user_id", event.UserID,
				)
			}
		}
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	p.mirror(base)
	if p.async {
		// Non-blocking send; drop event if buffer is full to avoid blocking hot path
		select {
		case p.events <- base:
			return nil
		default:
			if p.logger != nil {
				p.logger.Warn("audit buffer full, event dropped",
					"action", base.Action,
					"user_id", base.UserID,
				)
			}
			return nil
		}
	}
	return p.store.Append(ctx, base)
}

// mirror writes the event to the structured log. Denials and failures log at
// warn, everything else at info.
func (p *Publisher) mirror(event Event) {
	if p.logger == nil {
		return
	}
	attrs := []any{
		"log_type", "audit",
		"action", event.Action,
		"user_id", event.UserID,
		"outcome", event.Outcome,
	}
	if event.Classification != "" {
		attrs = append(attrs, "classification", event.Classification)
	}
	if event.Path != "" {
		attrs = append(attrs, "path", event.Path)
	}
	if event.ClientIP != "" {
		// Stored events keep the full address for security review; the log
		// stream gets the truncated form.
		attrs = append(attrs, "client_ip", privacy.AnonymizeIP(event.ClientIP))
	}
	if event.Reason != "" {
		attrs = append(attrs, "reason", event.Reason)
	}
	switch AuditEvent(event.Action) {
	case EventAuthFailed, EventAccessDenied:
		p.logger.Warn("audit event", attrs...)
	default:
		p.logger.Info("audit event", attrs...)
	}
}

func (p *Publisher) List(ctx context.Context, userID string) ([]Event, error) {
	return p.store.ListByUser(ctx, userID)
}
