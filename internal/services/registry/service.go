package registry

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jashanpreetsinghdod/bankroom/internal/dependencies/clock"
	"github.com/jashanpreetsinghdod/bankroom/internal/dependencies/random"
	"github.com/jashanpreetsinghdod/bankroom/internal/model"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage"
)

const (
	// JoinCodeLength is the length of generated join codes
	JoinCodeLength = 6
	// JoinCodeAlphabet is the characters used in join codes (avoid confusing chars)
	JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Notifier receives room lifecycle events for fan-out to subscribers.
// The terminal event must be delivered before the room record is removed
// so every current subscriber learns the reason.
type Notifier interface {
	RoomDeleted(roomID model.RoomID, reason model.DeleteReason)
}

// Service owns the authoritative collection of rooms
type Service struct {
	store    storage.RoomStore
	locks    *storage.RoomLocks
	notifier Notifier
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
}

// New creates a new room registry
func New(
	store storage.RoomStore,
	locks *storage.RoomLocks,
	notifier Notifier,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		locks:    locks,
		notifier: notifier,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "registry")),
	}
}

// CreateRoom allocates a fresh room with the given admin auto-seated as
// its first player. The initial bank balance must be a positive integer.
func (s *Service) CreateRoom(ctx context.Context, admin model.User, initialBankBalance int64, cfg model.RoomConfig) (*model.Room, error) {
	if initialBankBalance <= 0 {
		return nil, model.ErrInvalidParameters
	}
	if cfg.InitialStake < 0 || cfg.MaxPlayers <= 0 {
		return nil, model.ErrInvalidParameters
	}

	now := s.clock.Now()

	// Generate unique join code
	var code model.JoinCode
	for {
		code = model.JoinCode(s.random.String(JoinCodeLength, JoinCodeAlphabet))
		exists, err := s.store.JoinCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	room := &model.Room{
		ID:          model.RoomID(uuid.NewString()),
		JoinCode:    code,
		AdminID:     admin.ID,
		BankBalance: initialBankBalance,
		Config:      cfg,
		Players: []model.Player{
			{
				UserID:   admin.ID,
				Username: admin.Username,
				Avatar:   admin.Avatar,
				Balance:  cfg.InitialStake,
				JoinedAt: now,
			},
		},
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := s.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("join_code", string(room.JoinCode)),
		slog.String("admin_id", string(admin.ID)),
		slog.Int64("bank_balance", initialBankBalance),
	)

	return room, nil
}

// GetRoom retrieves a room by id
func (s *Service) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return s.store.GetRoom(ctx, id)
}

// GetRoomByJoinCode retrieves a room by join code, case-insensitively
func (s *Service) GetRoomByJoinCode(ctx context.Context, code string) (*model.Room, error) {
	return s.store.GetRoomByJoinCode(ctx, NormalizeJoinCode(code))
}

// NormalizeJoinCode uppercases a join code for lookup and storage
func NormalizeJoinCode(code string) model.JoinCode {
	return model.JoinCode(strings.ToUpper(strings.TrimSpace(code)))
}

// DeleteRoom tears a room down, notifying subscribers of the reason first.
// Idempotent: deleting a room that no longer exists is not an error.
func (s *Service) DeleteRoom(ctx context.Context, id model.RoomID, reason model.DeleteReason) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.store.GetRoom(ctx, id); err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil
		}
		return err
	}

	return s.deleteLocked(ctx, id, reason)
}

// DeleteRoomIfEmpty deletes a room with reason "empty" only if it still
// has no seated players once the room lock is held. A player who joined
// since the caller last looked wins: the room survives and its current
// snapshot is returned instead of nil.
func (s *Service) DeleteRoomIfEmpty(ctx context.Context, id model.RoomID) (*model.Room, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(room.Players) > 0 {
		return room, nil
	}

	return nil, s.deleteLocked(ctx, id, model.DeleteReasonEmpty)
}

// deleteLocked tears the room down; the caller holds the room lock
func (s *Service) deleteLocked(ctx context.Context, id model.RoomID, reason model.DeleteReason) error {
	// Terminal event goes out before the record disappears
	if s.notifier != nil {
		s.notifier.RoomDeleted(id, reason)
	}

	if err := s.store.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.locks.Forget(id)

	s.logger.Info("room deleted",
		slog.String("room_id", string(id)),
		slog.String("reason", string(reason)),
	)
	return nil
}

// DeleteRoomByAdmin deletes a room on behalf of a requester, enforcing
// that only the room admin may do so
func (s *Service) DeleteRoomByAdmin(ctx context.Context, id model.RoomID, requester model.UserID) error {
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if room.AdminID != requester {
		return model.ErrForbidden
	}
	return s.DeleteRoom(ctx, id, model.DeleteReasonAdmin)
}
