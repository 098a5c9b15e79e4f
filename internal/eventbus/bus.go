// Package eventbus provides an in-memory, asynchronous bus for build
// lifecycle events. Two watch-mode compilers publish into it concurrently;
// subscribers (console reporter, server restarter) receive every event.
package eventbus

import (
	"log/slog"
	"sync"
	"time"
)

const defaultBufferSize = 64

// Bus is the interface for publishing build events and managing subscribers.
type Bus interface {
	// Publish enqueues an event. It never blocks: if the buffer is full, the
	// event is dropped and a warning is logged.
	Publish(e Event)

	// Subscribe registers a listener invoked for every published event.
	// Subscribe must be called before the first Publish.
	Subscribe(listener Listener)

	// Close stops accepting new events and waits for pending ones to drain.
	Close()
}

type inMemoryBus struct {
	ch        chan Event
	listeners []Listener
	mu        sync.RWMutex
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// New creates a Bus backed by a single dispatch goroutine. Events are
// delivered in publish order, which subscribers rely on to pair started and
// finished notifications per target.
func New(logger *slog.Logger) Bus {
	b := &inMemoryBus{
		ch:     make(chan Event, defaultBufferSize),
		logger: logger,
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for e := range b.ch {
			b.dispatch(e)
		}
	}()
	return b
}

// dispatch calls all registered listeners with panic recovery so one bad
// listener cannot take down the dispatch loop.
func (b *inMemoryBus) dispatch(e Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Warn("event listener panicked",
						slog.String("event", string(e.Type)),
						slog.Any("panic", r),
					)
				}
			}()
			l(e)
		}()
	}
}

func (b *inMemoryBus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	select {
	case b.ch <- e:
	default:
		b.logger.Warn("event buffer full, dropping event", slog.String("event", string(e.Type)))
	}
}

func (b *inMemoryBus) Subscribe(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

func (b *inMemoryBus) Close() {
	close(b.ch)
	b.wg.Wait()
}
