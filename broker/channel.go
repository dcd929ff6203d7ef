package broker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/casualjim/courier/messaging"
	"github.com/casualjim/courier/pkg/slogx"
)

// Listener is a callback registered on a channel. It receives every message
// its filter accepts and reports handling success or failure.
type Listener func(context.Context, messaging.Message) error

type registration struct {
	filter   messaging.Predicate
	listener Listener
	position int
}

// Channel is a named registry of listener registrations and the dispatch
// loop for messages published to it. Registrations are appended during
// setup, never reordered or removed.
type Channel struct {
	name string

	mu            sync.RWMutex
	registrations []registration
}

func newChannel(name string) *Channel {
	return &Channel{name: name}
}

// Name returns the channel's unique name within its broker.
func (c *Channel) Name() string { return c.name }

func (c *Channel) register(listener Listener, filter messaging.Predicate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations = append(c.registrations, registration{
		filter:   filter,
		listener: listener,
		position: len(c.registrations),
	})
}

// DispatchResult reports what happened to a single published message. The
// transport succeeded whenever a result is returned; Failures records
// handling errors per listener.
type DispatchResult struct {
	Evaluated int
	Matched   int
	Succeeded int
	Failed    int
	Failures  []*ListenerInvocationError
}

// Ok reports whether every matched listener handled the message.
func (r DispatchResult) Ok() bool { return r.Failed == 0 }

// Publish evaluates each registration's filter against msg in registration
// order and invokes the matching listeners sequentially, awaiting each one
// before the next. A failing listener is recorded and dispatch continues;
// once started, dispatch runs to completion for every matching registration.
func (c *Channel) Publish(ctx context.Context, msg messaging.Message) DispatchResult {
	c.mu.RLock()
	registrations := c.registrations
	c.mu.RUnlock()

	result := DispatchResult{Evaluated: len(registrations)}
	for _, reg := range registrations {
		if reg.filter != nil && !reg.filter(msg) {
			continue
		}
		result.Matched++

		if err := reg.invoke(ctx, msg); err != nil {
			failure := &ListenerInvocationError{Channel: c.name, Position: reg.position, Err: err}
			result.Failed++
			result.Failures = append(result.Failures, failure)
			slog.WarnContext(ctx, "listener failed",
				slog.String("channel", c.name),
				slog.Int("position", reg.position),
				slogx.Stringer("message_id", msg.ID()),
				slogx.Error(err),
			)
			continue
		}
		result.Succeeded++
	}
	return result
}

// invoke runs the listener and converts a panic into a recorded failure, so
// one defective listener cannot take down the publish call.
func (r registration) invoke(ctx context.Context, msg messaging.Message) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("listener panicked: %v", p)
		}
	}()
	return r.listener(ctx, msg)
}
