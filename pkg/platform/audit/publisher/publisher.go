// Package publisher fans audit events from domain services into a Store.
//
// In sync mode Emit writes through and returns the store's error. In async
// mode events go through a bounded buffer drained by one goroutine; Emit
// never blocks on the store, and a full buffer drops the event with an error.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "cis/pkg/platform/audit"
)

// ErrBufferFull is returned by Emit in async mode when the buffer is full.
var ErrBufferFull = errors.New("audit buffer full")

type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	buffer chan audit.Event
	done   chan struct{}
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = make(chan audit.Event, n)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		go p.run()
	} else {
		close(p.done)
	}
	return p
}

// Emit records event, stamping the current time when Timestamp is zero and
// deriving the category from the action when Category is empty.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"identifier", event.Identifier,
		)
		return ErrBufferFull
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.buffer {
		// Drained events outlive the request that produced them.
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"action", event.Action,
				"identifier", event.Identifier,
				"error", err,
			)
		}
	}
}

// Close drains buffered events and stops the async worker.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
		}
	})
	<-p.done
}
