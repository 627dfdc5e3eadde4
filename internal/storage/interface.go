package storage

import (
	"context"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
)

// RoomStore persists room state. Room state is ephemeral: nothing here
// needs to survive beyond a room's lifetime.
type RoomStore interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	// GetRoomByJoinCode expects a normalized (uppercase) code
	GetRoomByJoinCode(ctx context.Context, code model.JoinCode) (*model.Room, error)
	JoinCodeExists(ctx context.Context, code model.JoinCode) (bool, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	// ListRooms returns every live room; used by the expiry sweep
	ListRooms(ctx context.Context) ([]*model.Room, error)
}

// AccountStore persists user identities. Unlike rooms, accounts may be
// backed by a durable store so identities survive process restarts.
type AccountStore interface {
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	DeleteUser(ctx context.Context, id model.UserID) error

	SaveRegisteredUser(ctx context.Context, ru *model.RegisteredUser) error
	GetRegisteredUser(ctx context.Context, userID model.UserID) (*model.RegisteredUser, error)
	GetRegisteredUserByUsername(ctx context.Context, username string) (*model.RegisteredUser, error)
}

// Storage defines the interface for data persistence
type Storage interface {
	RoomStore
	AccountStore
}
