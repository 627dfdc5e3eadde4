package presence

import (
	"context"
	"log/slog"
	"time"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
)

// Run executes the expiry sweep on a ticker until the context is done
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	s.logger.Info("expiry sweep started",
		slog.Duration("interval", s.cfg.SweepInterval),
		slog.Duration("room_ttl", s.cfg.RoomTTL),
		slog.Duration("empty_grace", s.cfg.EmptyGracePeriod),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweep stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one expiry pass over every room. Failures are logged and
// retried on the next cycle, never surfaced to clients.
func (s *Service) Sweep(ctx context.Context) {
	now := s.clock.Now()

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		s.logger.Error("sweep failed to list rooms", slog.Any("error", err))
		return
	}

	for _, room := range rooms {
		s.sweepSeats(ctx, room.ID, now)
		s.sweepRoom(ctx, room, now)
	}
}

// sweepSeats vacates seats whose owner has been disconnected longer than
// the seat grace window
func (s *Service) sweepSeats(ctx context.Context, roomID model.RoomID, now time.Time) {
	s.mu.Lock()
	var stale []model.UserID
	for key, at := range s.vacatedAt {
		if key.roomID == roomID && now.Sub(at) > s.cfg.SeatGracePeriod {
			stale = append(stale, key.userID)
		}
	}
	s.mu.Unlock()

	for _, userID := range stale {
		if _, err := s.Leave(ctx, roomID, userID); err != nil {
			s.logger.Error("sweep failed to vacate seat",
				slog.String("room_id", string(roomID)),
				slog.String("user_id", string(userID)),
				slog.Any("error", err))
		}
	}
}

// sweepRoom deletes a room that exceeded its TTL or has been without
// connections past the grace period
func (s *Service) sweepRoom(ctx context.Context, room *model.Room, now time.Time) {
	if now.Sub(room.CreatedAt) > s.cfg.RoomTTL {
		if err := s.registry.DeleteRoom(ctx, room.ID, model.DeleteReasonExpired); err != nil {
			s.logger.Error("sweep failed to expire room",
				slog.String("room_id", string(room.ID)),
				slog.Any("error", err))
			return
		}
		s.forgetRoom(room.ID)
		return
	}

	s.mu.Lock()
	hasConns := s.roomHasConnectionsLocked(room.ID)
	emptySince, tracked := s.emptySince[room.ID]
	if !hasConns && !tracked {
		// First sweep to observe the room empty starts the grace window
		s.emptySince[room.ID] = now
	}
	s.mu.Unlock()

	if hasConns || !tracked {
		return
	}

	if now.Sub(emptySince) > s.cfg.EmptyGracePeriod {
		if err := s.registry.DeleteRoom(ctx, room.ID, model.DeleteReasonEmpty); err != nil {
			s.logger.Error("sweep failed to delete empty room",
				slog.String("room_id", string(room.ID)),
				slog.Any("error", err))
			return
		}
		s.forgetRoom(room.ID)
	}
}
