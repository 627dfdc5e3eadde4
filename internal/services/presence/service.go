package presence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jashanpreetsinghdod/bankroom/internal/dependencies/clock"
	"github.com/jashanpreetsinghdod/bankroom/internal/model"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/registry"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage"
)

// Config holds lifecycle timings for rooms and seats
type Config struct {
	// EmptyGracePeriod is how long a room may have zero connections
	// before it is deleted with reason "empty"
	EmptyGracePeriod time.Duration
	// SeatGracePeriod is how long a disconnected player's seat survives
	// before it is vacated; an explicit leave skips the grace window
	SeatGracePeriod time.Duration
	// RoomTTL is the absolute time-to-live since room creation
	RoomTTL time.Duration
	// SweepInterval is how often the expiry sweep runs
	SweepInterval time.Duration
}

// DefaultConfig returns default lifecycle timings
func DefaultConfig() Config {
	return Config{
		EmptyGracePeriod: 5 * time.Minute,
		SeatGracePeriod:  2 * time.Minute,
		RoomTTL:          24 * time.Hour,
		SweepInterval:    30 * time.Second,
	}
}

type roomUser struct {
	roomID model.RoomID
	userID model.UserID
}

// Service tracks which live connections are subscribed to which room and
// on whose behalf, and drives room disposal when occupancy or expiry
// conditions are met.
type Service struct {
	store    storage.RoomStore
	locks    *storage.RoomLocks
	registry *registry.Service
	clock    clock.Clock
	logger   *slog.Logger
	cfg      Config

	mu sync.Mutex
	// conns counts live connections per (room, user)
	conns map[roomUser]int
	// emptySince records when a room last dropped to zero connections
	emptySince map[model.RoomID]time.Time
	// vacatedAt records when a seated player's last connection dropped
	vacatedAt map[roomUser]time.Time
}

// New creates a new presence tracker
func New(
	store storage.RoomStore,
	locks *storage.RoomLocks,
	reg *registry.Service,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:      store,
		locks:      locks,
		registry:   reg,
		clock:      clock,
		logger:     logger.With(slog.String("component", "presence")),
		cfg:        cfg,
		conns:      make(map[roomUser]int),
		emptySince: make(map[model.RoomID]time.Time),
		vacatedAt:  make(map[roomUser]time.Time),
	}
}

// Join seats a user in a room, or re-associates an existing seat on
// reconnect. Returns a snapshot of the room after the join.
func (s *Service) Join(ctx context.Context, roomID model.RoomID, user model.User) (*model.Room, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if room.GetPlayer(user.ID) == nil {
		if len(room.Players) >= room.Config.MaxPlayers {
			return nil, model.ErrRoomFull
		}
		room.Players = append(room.Players, model.Player{
			UserID:   user.ID,
			Username: user.Username,
			Avatar:   user.Avatar,
			Balance:  room.Config.InitialStake,
			JoinedAt: s.clock.Now(),
		})
	}

	room.LastActivityAt = s.clock.Now()
	if err := s.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	return room.Clone(), nil
}

// JoinByCode resolves a join code and seats the user
func (s *Service) JoinByCode(ctx context.Context, code string, user model.User) (*model.Room, error) {
	room, err := s.registry.GetRoomByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Join(ctx, room.ID, user)
}

// Leave is the single authoritative seat-removal operation, idempotent
// and callable from any transport. The departing player's balance is
// discarded, not returned to the bank. If the last seat empties the
// room, the room is deleted with reason "empty".
func (s *Service) Leave(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Room, error) {
	unlock := s.locks.Lock(roomID)

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		unlock()
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !room.RemovePlayer(userID) {
		snap := room.Clone()
		unlock()
		return snap, nil
	}

	s.mu.Lock()
	delete(s.vacatedAt, roomUser{roomID, userID})
	s.mu.Unlock()

	if len(room.Players) == 0 {
		if err := s.store.SaveRoom(ctx, room); err != nil {
			unlock()
			return nil, err
		}
		unlock()
		// Emptiness is re-checked under the registry's own hold of the
		// room lock; a join that slips in between keeps the room alive
		// and we return its snapshot instead
		return s.registry.DeleteRoomIfEmpty(ctx, roomID)
	}

	room.LastActivityAt = s.clock.Now()
	if err := s.store.SaveRoom(ctx, room); err != nil {
		unlock()
		return nil, err
	}
	snap := room.Clone()
	unlock()

	s.logger.Info("player left room",
		slog.String("room_id", string(roomID)),
		slog.String("user_id", string(userID)),
	)

	return snap, nil
}

// Connect records an established subscription for a (room, user) pair
func (s *Service) Connect(roomID model.RoomID, userID model.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := roomUser{roomID, userID}
	s.conns[key]++
	delete(s.vacatedAt, key)
	delete(s.emptySince, roomID)
}

// Disconnect records a dropped subscription. The seat is not removed
// here: an ungraceful disconnect starts the seat grace window instead,
// so a brief reconnect does not cost the player their stake.
func (s *Service) Disconnect(roomID model.RoomID, userID model.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := roomUser{roomID, userID}
	if s.conns[key] > 1 {
		s.conns[key]--
		return
	}
	delete(s.conns, key)
	s.vacatedAt[key] = s.clock.Now()

	if !s.roomHasConnectionsLocked(roomID) {
		s.emptySince[roomID] = s.clock.Now()
	}
}

func (s *Service) roomHasConnectionsLocked(roomID model.RoomID) bool {
	for key := range s.conns {
		if key.roomID == roomID {
			return true
		}
	}
	return false
}

// ConnectionCount reports live connections for a room
func (s *Service) ConnectionCount(roomID model.RoomID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, c := range s.conns {
		if key.roomID == roomID {
			n += c
		}
	}
	return n
}

// forgetRoom drops all presence bookkeeping for a deleted room
func (s *Service) forgetRoom(roomID model.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.conns {
		if key.roomID == roomID {
			delete(s.conns, key)
		}
	}
	for key := range s.vacatedAt {
		if key.roomID == roomID {
			delete(s.vacatedAt, key)
		}
	}
	delete(s.emptySince, roomID)
}
