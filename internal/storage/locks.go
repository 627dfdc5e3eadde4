package storage

import (
	"sync"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
)

// RoomLocks provides per-room mutual exclusion. Every mutation of a room
// record (ledger transactions, seat changes, deletion) runs under that
// room's lock, so no two mutations of the same room are ever in flight
// concurrently while different rooms stay fully independent.
type RoomLocks struct {
	mu    sync.Mutex
	locks map[model.RoomID]*sync.Mutex
}

// NewRoomLocks creates an empty lock table
func NewRoomLocks() *RoomLocks {
	return &RoomLocks{
		locks: make(map[model.RoomID]*sync.Mutex),
	}
}

// Lock acquires the lock for a room and returns the unlock function.
// Locks are held only for the duration of a single validate-apply-snapshot
// cycle, never across network I/O.
func (l *RoomLocks) Lock(id model.RoomID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Forget drops the lock entry for a deleted room
func (l *RoomLocks) Forget(id model.RoomID) {
	l.mu.Lock()
	delete(l.locks, id)
	l.mu.Unlock()
}
