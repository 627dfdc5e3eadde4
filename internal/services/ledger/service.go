package ledger

import (
	"context"
	"log/slog"

	"github.com/jashanpreetsinghdod/bankroom/internal/dependencies/clock"
	"github.com/jashanpreetsinghdod/bankroom/internal/model"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage"
)

// Service is the serialized authority over a room's currency state.
// All operations on a given room execute under that room's lock, so no
// two transactions on the same room are ever in flight concurrently and
// two concurrent transfers can never both pass the funds check against a
// stale balance. Rooms are fully independent of one another.
//
// Each call is atomic start-to-finish: validate, apply, snapshot. A call
// that fails validation or the funds check leaves the room exactly as it
// was. The returned snapshot is a deep copy taken under the same lock
// that protected the write, so the very next transaction cannot tear it.
type Service struct {
	store  storage.RoomStore
	locks  *storage.RoomLocks
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new ledger service
func New(store storage.RoomStore, locks *storage.RoomLocks, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		locks:  locks,
		clock:  clock,
		logger: logger.With(slog.String("component", "ledger")),
	}
}

// Transfer moves currency between two players. Total room currency is
// conserved: the sender is debited and the receiver credited as a single
// visible state transition.
func (s *Service) Transfer(ctx context.Context, roomID model.RoomID, senderID, receiverID model.UserID, amount int64) (*model.Room, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidParameters
	}
	if senderID == receiverID {
		return nil, model.ErrSelfTransfer
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	sender := room.GetPlayer(senderID)
	if sender == nil {
		return nil, model.ErrNotInRoom
	}
	receiver := room.GetPlayer(receiverID)
	if receiver == nil {
		return nil, model.ErrRecipientNotFound
	}
	if sender.Balance < amount {
		return nil, model.ErrInsufficientFunds
	}

	sender.Balance -= amount
	receiver.Balance += amount
	room.LastActivityAt = s.clock.Now()

	if err := s.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("transfer committed",
		slog.String("room_id", string(roomID)),
		slog.String("sender_id", string(senderID)),
		slog.String("receiver_id", string(receiverID)),
		slog.Int64("amount", amount),
	)

	return room.Clone(), nil
}

// BankAdjust moves currency between the bank counter and a player.
// ADD may drive the bank negative (it is a ledger counter, not a
// constraint); DEDUCT fails rather than taking a player below zero.
// Only the room admin may adjust the bank.
func (s *Service) BankAdjust(ctx context.Context, roomID model.RoomID, actorID, playerID model.UserID, amount int64, direction model.Direction) (*model.Room, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidParameters
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if room.AdminID != actorID {
		return nil, model.ErrForbidden
	}

	player := room.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrRecipientNotFound
	}

	switch direction {
	case model.DirectionAdd:
		player.Balance += amount
		room.BankBalance -= amount
	case model.DirectionDeduct:
		if player.Balance < amount {
			return nil, model.ErrInsufficientFunds
		}
		player.Balance -= amount
		room.BankBalance += amount
	default:
		return nil, model.ErrInvalidDirection
	}

	room.LastActivityAt = s.clock.Now()

	if err := s.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("bank adjustment committed",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(playerID)),
		slog.String("direction", string(direction)),
		slog.Int64("amount", amount),
	)

	return room.Clone(), nil
}
