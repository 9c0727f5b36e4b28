package hub

import (
	"context"
	"errors"
)

type (
	// PendingRequests tracks work in flight per key. The first caller
	// joining a key becomes its leader and must call Resolve once done,
	// every later caller receives a waiter ticket until then.
	PendingRequests[T any] interface {
		StartMonitor(ctx context.Context)
		Join(key string) (Ticket[T], error)
		Resolve(key string, value T) error
		Stats() (Stats, error)
	}

	Stats struct {
		Keys    int `json:"keys"`
		Waiters int `json:"waiters"`
	}
)

// Ticket is the result of joining a key.
type Ticket[T any] struct {
	Leader bool

	result <-chan T
}

// Wait blocks until the leader resolves the key. It returns false when
// ctx is done first or when called on a leader ticket.
func (ticket Ticket[T]) Wait(ctx context.Context) (T, bool) {
	var absent T
	if ticket.result == nil {
		return absent, false
	}

	select {
	case value, ok := <-ticket.result:
		return value, ok
	case <-ctx.Done():
		return absent, false
	}
}

var (
	ErrHubStopped  = errors.New("pending requests hub is stopped")
	ErrKeyNotFound = errors.New("pending key not found")
)
