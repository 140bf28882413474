package application

import (
	"context"
	"sync"
)

// ResourceLocker serializes reservation creation per resource. The returned
// unlock function is safe to call more than once.
type ResourceLocker interface {
	LockResource(ctx context.Context, resourceID string) (func(), error)
}

// KeyedMutex is an in-process ResourceLocker holding one mutex per resource.
// Entries are dropped once nobody holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

// NewKeyedMutex returns an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry)}
}

// LockResource blocks until resourceID is free or ctx is done.
func (k *KeyedMutex) LockResource(ctx context.Context, resourceID string) (func(), error) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	entry, ok := k.locks[resourceID]
	if !ok {
		entry = &keyedEntry{sem: make(chan struct{}, 1)}
		k.locks[resourceID] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		k.release(resourceID, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			k.release(resourceID, entry)
		})
	}, nil
}

func (k *KeyedMutex) release(resourceID string, entry *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, resourceID)
	}
}

func (k *KeyedMutex) held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
