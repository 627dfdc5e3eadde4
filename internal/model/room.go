package model

import "time"

// RoomID uniquely identifies a room across the system
type RoomID string

// JoinCode is a short human-typable identifier for joining rooms.
// Codes are stored uppercase and matched case-insensitively.
type JoinCode string

// DeleteReason explains why a room was torn down
type DeleteReason string

const (
	// DeleteReasonAdmin means the room admin requested deletion
	DeleteReasonAdmin DeleteReason = "admin"
	// DeleteReasonExpired means the room exceeded its time-to-live
	DeleteReasonExpired DeleteReason = "expired"
	// DeleteReasonEmpty means everyone left the room
	DeleteReasonEmpty DeleteReason = "empty"
)

// DefaultBankBalance seeds the bank when the creator does not choose one
const DefaultBankBalance int64 = 5_000_000

// RoomConfig holds per-room settings fixed at creation
type RoomConfig struct {
	// InitialStake is the balance every player starts with
	InitialStake int64
	// MaxPlayers caps the number of seats in the room
	MaxPlayers int
}

// DefaultRoomConfig returns the default room configuration
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		InitialStake: 0,
		MaxPlayers:   12,
	}
}

// Room is the unit of isolation: one game session with its own bank
// counter and player set
type Room struct {
	ID       RoomID
	JoinCode JoinCode
	// AdminID is the principal who created the room (the banker).
	// Exactly one per room, immutable for the room's lifetime.
	AdminID UserID
	// BankBalance is a ledger counter, not a constraint - it may go negative
	BankBalance int64
	Players     []Player
	Config      RoomConfig
	CreatedAt   time.Time
	// LastActivityAt is bumped by every accepted mutation and join/leave
	LastActivityAt time.Time
}

// GetPlayer returns the seat for the given user, or nil if not seated
func (r *Room) GetPlayer(userID UserID) *Player {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			return &r.Players[i]
		}
	}
	return nil
}

// RemovePlayer removes the seat for the given user.
// Returns false if the user held no seat.
func (r *Room) RemovePlayer(userID UserID) bool {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// TotalCurrency is the bank balance plus every player balance.
// It is invariant across transfers and changes only on bank adjustments.
func (r *Room) TotalCurrency() int64 {
	total := r.BankBalance
	for i := range r.Players {
		total += r.Players[i].Balance
	}
	return total
}

// Clone returns a deep copy of the room.
// Snapshots handed to the broadcaster are clones taken under the room's
// transaction lock so later mutations cannot tear them.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Players = make([]Player, len(r.Players))
	copy(cp.Players, r.Players)
	return &cp
}
