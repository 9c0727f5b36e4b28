package hub

import (
	"context"
)

type joinResponse[T any] struct {
	leader bool
	waiter chan T
}

type joinRequest[T any] struct {
	key      string
	response chan joinResponse[T]
}

type resolveRequest[T any] struct {
	key      string
	value    T
	response chan error
}

type statsRequest struct {
	response chan Stats
}

type pendingHub[T any] struct {
	keys map[string][]chan T

	join    chan joinRequest[T]
	resolve chan resolveRequest[T]
	stats   chan statsRequest
	stopped chan struct{}
}

var _ PendingRequests[any] = (*pendingHub[any])(nil)

func NewPendingRequests[T any]() PendingRequests[T] {
	return &pendingHub[T]{
		keys:    make(map[string][]chan T),
		join:    make(chan joinRequest[T]),
		resolve: make(chan resolveRequest[T]),
		stats:   make(chan statsRequest),
		stopped: make(chan struct{}),
	}
}

func (hub *pendingHub[T]) Join(key string) (Ticket[T], error) {
	request := joinRequest[T]{key, make(chan joinResponse[T], 1)}

	select {
	case hub.join <- request:
	case <-hub.stopped:
		return Ticket[T]{}, ErrHubStopped
	}

	response := <-request.response
	return Ticket[T]{Leader: response.leader, result: response.waiter}, nil
}

func (hub *pendingHub[T]) Resolve(key string, value T) error {
	request := resolveRequest[T]{key, value, make(chan error, 1)}

	select {
	case hub.resolve <- request:
	case <-hub.stopped:
		return ErrHubStopped
	}

	return <-request.response
}

func (hub *pendingHub[T]) Stats() (Stats, error) {
	request := statsRequest{make(chan Stats, 1)}

	select {
	case hub.stats <- request:
	case <-hub.stopped:
		return Stats{}, ErrHubStopped
	}

	return <-request.response, nil
}

// StartMonitor serves requests until ctx is done. It must be called
// exactly once per hub.
func (hub *pendingHub[T]) StartMonitor(ctx context.Context) {
	defer close(hub.stopped)

	for {
		select {
		case <-ctx.Done():
			var absent T
			for key, waiters := range hub.keys {
				for _, waiter := range waiters {
					hub.sendValueOnChan(waiter, absent)
				}
				delete(hub.keys, key)
			}
			return

		case request := <-hub.join:
			waiters, exists := hub.keys[request.key]
			if !exists {
				hub.keys[request.key] = make([]chan T, 0)
				request.response <- joinResponse[T]{leader: true}
				close(request.response)
				continue
			}

			waiter := make(chan T, 1)
			hub.keys[request.key] = append(waiters, waiter)
			request.response <- joinResponse[T]{waiter: waiter}
			close(request.response)

		case request := <-hub.resolve:
			waiters, exists := hub.keys[request.key]
			if !exists {
				hub.sendResponseOnChan(request.response, ErrKeyNotFound)
				continue
			}

			for _, waiter := range waiters {
				hub.sendValueOnChan(waiter, request.value)
			}

			// the key is removed together with the notification, so the
			// next Join for it starts a fresh round with a new leader
			delete(hub.keys, request.key)
			hub.sendResponseOnChan(request.response, nil)

		case request := <-hub.stats:
			stats := Stats{Keys: len(hub.keys)}
			for _, waiters := range hub.keys {
				stats.Waiters += len(waiters)
			}
			request.response <- stats
			close(request.response)
		}
	}
}

func (hub *pendingHub[T]) sendValueOnChan(waiter chan T, value T) {
	// waiter channels are buffered for exactly one value
	// and never reused after the key is resolved
	waiter <- value
	close(waiter)
}

func (hub *pendingHub[T]) sendResponseOnChan(responseChan chan error, err error) {
	responseChan <- err
	close(responseChan)
}
