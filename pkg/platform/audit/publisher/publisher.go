// Package publisher delivers audit events to a store and any attached sinks,
// synchronously or through a bounded async buffer.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "votegate/pkg/platform/audit"
	"votegate/pkg/requestcontext"
)

// ErrBufferFull is returned when the async buffer cannot accept an event.
var ErrBufferFull = errors.New("audit buffer full")

type Publisher struct {
	store  audit.Store
	sinks  []audit.Sink
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = make(chan audit.Event, n)
		}
	}
}

// WithSink attaches an additional destination. Sink failures are logged, not returned.
func WithSink(s audit.Sink) Option {
	return func(p *Publisher) {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit records event. Timestamp and request id are filled from ctx when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.buffer == nil {
		return p.write(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrBufferFull
}

func (p *Publisher) write(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, s := range p.sinks {
		if err := s.Append(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink append failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
	return nil
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.buffer {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.write(ctx, event); err != nil {
			p.logger.Error("audit event dropped",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
		}
		cancel()
	}
}

// List returns the events recorded for subject.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

// Close drains the async buffer. Emit must not be called after Close.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}
