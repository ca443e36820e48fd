package workspace

import (
	"context"
	"sync"
)

// keyedMutex serializes work per project id. Distinct ids never block each other.
type keyedMutex struct {
	mu    sync.Mutex
	slots map[int64]*lockSlot
}

type lockSlot struct {
	sem  chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{slots: make(map[int64]*lockSlot)}
}

// Lock blocks until id is free or ctx is done. The returned func releases it.
func (k *keyedMutex) Lock(ctx context.Context, id int64) (func(), error) {
	k.mu.Lock()
	slot, ok := k.slots[id]
	if !ok {
		slot = &lockSlot{sem: make(chan struct{}, 1)}
		k.slots[id] = slot
	}
	slot.refs++
	k.mu.Unlock()

	select {
	case slot.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.sem
				k.release(id, slot)
			})
		}, nil
	case <-ctx.Done():
		k.release(id, slot)
		return nil, ctx.Err()
	}
}

func (k *keyedMutex) release(id int64, slot *lockSlot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(k.slots, id)
	}
}

// held reports how many callers hold or wait on id.
func (k *keyedMutex) held(id int64) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	if slot, ok := k.slots[id]; ok {
		return slot.refs
	}
	return 0
}
