package ws

import (
	"encoding/json"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
)

// MessageType identifies a client-to-server intent
type MessageType string

const (
	// TypeJoinRoom subscribes the connection to a room (seating the
	// player if they hold no seat yet)
	TypeJoinRoom MessageType = "join_room"
	// TypeLeaveRoom vacates the player's seat and unsubscribes
	TypeLeaveRoom MessageType = "leave_room"
	// TypeSendMoney submits a player-to-player transfer
	TypeSendMoney MessageType = "send_money"
	// TypeBankTransaction submits an admin bank adjustment
	TypeBankTransaction MessageType = "bank_transaction"
)

// Inbound is the client-to-server message envelope
type Inbound struct {
	Type       MessageType `json:"type"`
	RoomID     string      `json:"roomId,omitempty"`
	ReceiverID string      `json:"receiverId,omitempty"`
	PlayerID   string      `json:"playerId,omitempty"`
	Amount     int64       `json:"amount,omitempty"`
	Action     string      `json:"action,omitempty"`
}

// Outbound is the server-to-client event envelope
type Outbound struct {
	Type model.EventType `json:"type"`
	Data any             `json:"data,omitempty"`
}

// MarshalEvent encodes an outbound event, panicking only on
// unmarshalable payloads (a programming error)
func MarshalEvent(eventType model.EventType, data any) []byte {
	msg, err := json.Marshal(Outbound{Type: eventType, Data: data})
	if err != nil {
		panic(err)
	}
	return msg
}
