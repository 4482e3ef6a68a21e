package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const guardScope = "pay"

// guardSlack pads the guard TTL past the poll timeout so the key outlives any
// live polling loop but never a crashed one by much.
const guardSlack = 10 * time.Second

type inFlightStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	InFlightKey(scope string, id uint64) string
}

// Guard prevents concurrent payment attempts against the same request. The
// claim lives in Redis so it holds across replicas, and carries a TTL so a
// crashed poller cannot wedge a request forever.
type Guard struct {
	store inFlightStore
	ttl   time.Duration
}

func NewGuard(store inFlightStore, pollTimeout time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("in-flight store is required")
	}
	if pollTimeout <= 0 {
		pollTimeout = 60 * time.Second
	}
	return &Guard{store: store, ttl: pollTimeout + guardSlack}, nil
}

// Acquire claims the request for payment. It returns ErrAlreadyInFlight when
// another attempt currently holds the claim.
func (g *Guard) Acquire(ctx context.Context, requestID uint64) error {
	key := g.store.InFlightKey(guardScope, requestID)
	ok, err := g.store.SetNX(ctx, key, time.Now().Unix(), g.ttl)
	if err != nil {
		return fmt.Errorf("claiming payment for request %d: %w", requestID, err)
	}
	if !ok {
		return ErrAlreadyInFlight
	}
	return nil
}

// Release drops the claim. Safe to call whether or not the key still exists.
func (g *Guard) Release(ctx context.Context, requestID uint64) {
	_ = g.store.Del(ctx, g.store.InFlightKey(guardScope, requestID))
}
