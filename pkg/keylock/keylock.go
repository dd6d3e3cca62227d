// Copyright (c) 2026 Mavun. All rights reserved.

/*
Package keylock provides fine-grained, per-key mutual exclusion.

It backs the serialization guarantees of permission mutation and series
re-aggregation: two operations on the SAME key (a target URN, a series URN)
never interleave, while operations on different keys proceed fully in
parallel. Locking granularity is always per-resource, never global.

Entries are reference counted and removed from the table as soon as a key
becomes uncontended, so the memory footprint tracks the set of keys currently
being mutated rather than every key ever seen.
*/
package keylock

import "sync"

// KeyedMutex is a table of lazily-created mutexes keyed by string.
//
// The zero value is not usable; construct with [New].
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// entry pairs a key's mutex with the number of holders and waiters.
type entry struct {
	lock sync.Mutex
	refs int
}

// New constructs an empty [KeyedMutex].
func New() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

// Lock acquires the mutex for key, blocking while another goroutine holds it.
//
// It returns the unlock function, which must be called exactly once —
// typically deferred immediately so the lock is released on all exit paths,
// error paths included:
//
//	unlock := locks.Lock(target.String())
//	defer unlock()
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	keyEntry, ok := k.entries[key]
	if !ok {
		keyEntry = &entry{}
		k.entries[key] = keyEntry
	}
	keyEntry.refs++
	k.mu.Unlock()

	keyEntry.lock.Lock()

	return func() {
		keyEntry.lock.Unlock()

		k.mu.Lock()
		keyEntry.refs--
		if keyEntry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// Len reports the number of keys currently locked or contended.
// Intended for tests and diagnostics.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
