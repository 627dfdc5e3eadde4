package ws

import (
	"log/slog"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
)

// Broadcaster delivers room state changes and transient events to the
// correct audience. Every state update is a full self-contained snapshot
// rather than a diff, so observers simply replace their local state and
// a reconnect self-heals any missed update.
type Broadcaster struct {
	hubs   *HubManager
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubs *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "broadcaster")),
	}
}

// BroadcastSnapshot sends the full room state to every subscriber
func (b *Broadcaster) BroadcastSnapshot(room *model.Room) {
	hub := b.hubs.GetHub(room.ID)
	if hub == nil {
		return
	}
	hub.Broadcast(MarshalEvent(model.EventUpdateData, model.SnapshotFromRoom(room)))
}

// NotifyUser sends a transient notification to one player's connections
// in a room
func (b *Broadcaster) NotifyUser(roomID model.RoomID, userID model.UserID, message string) {
	hub := b.hubs.GetHub(roomID)
	if hub == nil {
		return
	}
	hub.SendToUser(userID, MarshalEvent(model.EventTransactionNotification, message))
}

// NotifyRoom sends a transient notification to every subscriber
func (b *Broadcaster) NotifyRoom(roomID model.RoomID, message string) {
	hub := b.hubs.GetHub(roomID)
	if hub == nil {
		return
	}
	hub.Broadcast(MarshalEvent(model.EventTransactionNotification, message))
}

// RoomDeleted broadcasts the terminal deletion event with its reason to
// all subscribers, then detaches them. Implements the registry's
// Notifier contract: the event goes out before the room record is gone.
func (b *Broadcaster) RoomDeleted(roomID model.RoomID, reason model.DeleteReason) {
	hub := b.hubs.GetHub(roomID)
	if hub == nil {
		return
	}

	hub.Broadcast(MarshalEvent(model.EventRoomDeleted, model.RoomDeletedPayload{Reason: reason}))
	b.hubs.RemoveHub(roomID)

	b.logger.Info("room deletion broadcast",
		slog.String("room_id", string(roomID)),
		slog.String("reason", string(reason)))
}
