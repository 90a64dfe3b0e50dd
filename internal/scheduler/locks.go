package scheduler

import (
	"context"
	"sync"
)

// carLock is a one-slot semaphore. A channel instead of a sync.Mutex so a
// caller can give up waiting when its context expires without ever holding
// the slot.
type carLock chan struct{}

func (l carLock) acquire(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l carLock) release() {
	<-l
}

// lockRegistry maps car ids to their critical sections. Locks are created on
// first use and kept for the process lifetime; car ids are finite and reused,
// so there is no teardown and no deletion race.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[uint]carLock
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{
		locks: make(map[uint]carLock),
	}
}

func (r *lockRegistry) forCar(carID uint) carLock {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[carID]
	if !ok {
		l = make(carLock, 1)
		r.locks[carID] = l
	}
	return l
}
