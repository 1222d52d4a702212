package service

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"moove/internal/domain"
)

// lockKind orders lock acquisition across entity kinds.
type lockKind uint8

const (
	lockKindUser lockKind = iota + 1
	lockKindVehicle
)

// LockKey identifies one lockable entity.
type LockKey struct {
	kind lockKind
	id   int64
}

// VehicleKey returns the lock key of a vehicle.
func VehicleKey(id domain.VehicleID) LockKey {
	return LockKey{kind: lockKindVehicle, id: int64(id)}
}

// UserKey returns the lock key of a user.
func UserKey(id domain.UserID) LockKey {
	return LockKey{kind: lockKindUser, id: int64(id)}
}

func compareLockKeys(a, b LockKey) int {
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// LockManager hands out exclusive per-entity locks. A set of keys is always
// acquired in ascending (kind, id) order, so two callers locking overlapping
// sets cannot deadlock.
type LockManager struct {
	mu    sync.Mutex
	locks map[LockKey]*entityLock
}

type entityLock struct {
	sem  chan struct{}
	refs int
}

// NewLockManager creates a new LockManager.
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[LockKey]*entityLock)}
}

// Lock blocks until every key is held or ctx is done. The returned function
// releases all keys and must be called exactly once.
func (m *LockManager) Lock(ctx context.Context, keys ...LockKey) (func(), error) {
	ordered := slices.Clone(keys)
	slices.SortFunc(ordered, compareLockKeys)
	ordered = slices.Compact(ordered)

	held := make([]LockKey, 0, len(ordered))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			m.unlock(held[i])
		}
	}

	for _, key := range ordered {
		if err := m.lock(ctx, key); err != nil {
			release()
			return nil, err
		}
		held = append(held, key)
	}
	return release, nil
}

func (m *LockManager) lock(ctx context.Context, key LockKey) error {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &entityLock{sem: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.drop(key, l)
		return ctx.Err()
	}
}

func (m *LockManager) unlock(key LockKey) {
	m.mu.Lock()
	l := m.locks[key]
	m.mu.Unlock()

	<-l.sem
	m.drop(key, l)
}

// drop releases one reference and forgets idle locks.
func (m *LockManager) drop(key LockKey, l *entityLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}
