package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// User represents an identity issued by the auth service
type User struct {
	ID        UserID
	Username  string
	Avatar    string
	IsGuest   bool // true for unregistered users
	CreatedAt time.Time
}

// RegisteredUser extends User with authentication data
// Stored separately for security (password never in memory with session)
type RegisteredUser struct {
	UserID       UserID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Player is a member's seat in a room. Username and avatar are copied
// from the user's profile at join time and never updated afterwards,
// so a global profile change does not retroactively alter a live room.
type Player struct {
	UserID   UserID
	Username string
	Avatar   string
	// Balance is mutated only through the ledger service
	Balance  int64
	JoinedAt time.Time
}
