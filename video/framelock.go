package video

import (
	"sync"
	"sync/atomic"
)

// Role identifies who holds the frame lock.
type Role int32

const (
	RoleNone     Role = iota
	RoleProducer      // publishing a completed frame
	RoleConsumer      // closing, initialising, or reconfiguring a backend
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleProducer:
		return "producer"
	case RoleConsumer:
		return "consumer"
	default:
		return "none"
	}
}

// FrameLock serialises frame publishing against backend lifecycle changes.
// At most one holder at a time. It is not reentrant: locking twice from the
// same goroutine deadlocks.
type FrameLock struct {
	mu     sync.Mutex
	holder atomic.Int32
}

// Lock blocks until the lock is free and records role as the holder.
func (l *FrameLock) Lock(role Role) {
	l.mu.Lock()
	l.holder.Store(int32(role))
}

// TryLock acquires the lock as role without blocking.
func (l *FrameLock) TryLock(role Role) bool {
	if !l.mu.TryLock() {
		return false
	}
	l.holder.Store(int32(role))
	return true
}

// Unlock releases the lock.
func (l *FrameLock) Unlock() {
	l.holder.Store(int32(RoleNone))
	l.mu.Unlock()
}

// Holder returns the role currently holding the lock. Diagnostic only; the
// value may be stale by the time it is used.
func (l *FrameLock) Holder() Role {
	return Role(l.holder.Load())
}
