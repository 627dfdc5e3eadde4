package redis

import (
	"fmt"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
)

// Key prefix for all room-ledger data
const keyPrefix = "bankroom"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// registeredUserKey returns the Redis key for a RegisteredUser
func registeredUserKey(userID model.UserID) string {
	return fmt.Sprintf("%s:registered_user:%s", keyPrefix, userID)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomKeyPattern matches every room key; used by ListRooms
func roomKeyPattern() string {
	return fmt.Sprintf("%s:room:*", keyPrefix)
}

// joinCodeIndexKey returns the Redis key for the join_code -> room_id index
func joinCodeIndexKey(code model.JoinCode) string {
	return fmt.Sprintf("%s:idx:join_code:%s", keyPrefix, code)
}
