package response

import (
	"time"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/auth"
)

// User represents a user in API responses
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	IsGuest  bool   `json:"isGuest"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:       string(u.ID),
		Username: u.Username,
		Avatar:   u.Avatar,
		IsGuest:  u.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User         User      `json:"user"`
	SessionToken string    `json:"sessionToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		User:         UserFromModel(&s.User),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Room is the observer-facing view of a room. The REST surface and the
// WebSocket update_data event share this shape, so a client parses one
// representation regardless of which channel delivered it.
type Room = model.RoomSnapshot

// RoomFromModel converts a model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	return model.SnapshotFromRoom(r)
}
