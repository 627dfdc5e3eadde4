package model

// EventType identifies a server-to-client event
type EventType string

const (
	// EventConnected acknowledges a freshly established channel
	EventConnected EventType = "connected"
	// EventUpdateData carries a full room snapshot
	EventUpdateData EventType = "update_data"
	// EventTransactionError carries a rejection, delivered only to the requester
	EventTransactionError EventType = "transaction_error"
	// EventTransactionNotification carries a transient notice for one player
	// or the whole room (the client auto-expires it after a short window)
	EventTransactionNotification EventType = "transaction_notification"
	// EventRoomDeleted is the terminal event; subscribers are detached after it
	EventRoomDeleted EventType = "room_deleted"
)

// PlayerSnapshot is a player's seat as seen by observers
type PlayerSnapshot struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Balance  int64  `json:"balance"`
}

// RoomSnapshot is a complete, self-contained representation of a room.
// Every update is a full snapshot rather than a diff, so applying the same
// snapshot twice is idempotent and a reconnect self-heals missed updates.
type RoomSnapshot struct {
	RoomID      string           `json:"roomId"`
	JoinCode    string           `json:"joinCode"`
	AdminID     string           `json:"adminId"`
	BankBalance int64            `json:"bankBalance"`
	Players     []PlayerSnapshot `json:"players"`
}

// SnapshotFromRoom converts a room into its observer-facing snapshot
func SnapshotFromRoom(r *Room) RoomSnapshot {
	players := make([]PlayerSnapshot, len(r.Players))
	for i, p := range r.Players {
		players[i] = PlayerSnapshot{
			UserID:   string(p.UserID),
			Username: p.Username,
			Avatar:   p.Avatar,
			Balance:  p.Balance,
		}
	}
	return RoomSnapshot{
		RoomID:      string(r.ID),
		JoinCode:    string(r.JoinCode),
		AdminID:     string(r.AdminID),
		BankBalance: r.BankBalance,
		Players:     players,
	}
}

// ConnectedPayload is the payload of a connected event
type ConnectedPayload struct {
	UserID string `json:"userId"`
}

// RoomDeletedPayload is the payload of a room_deleted event
type RoomDeletedPayload struct {
	Reason DeleteReason `json:"reason"`
}
