package indexer

import "sync/atomic"

// IndexLock rejects overlapping index runs instead of queueing them.
// The zero value is unlocked.
type IndexLock struct {
	held atomic.Bool
}

// TryAcquire takes the lock if it is free and reports whether it did
func (l *IndexLock) TryAcquire() bool {
	return l.held.CompareAndSwap(false, true)
}

// Release frees the lock. Only the holder may call it.
func (l *IndexLock) Release() {
	l.held.Store(false)
}

// Held reports whether a run currently holds the lock
func (l *IndexLock) Held() bool {
	return l.held.Load()
}
