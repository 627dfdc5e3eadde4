package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotInRoom    = errors.New("user is not in room")
	ErrForbidden    = errors.New("user is not the room admin")

	// Transaction errors
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRecipientNotFound = errors.New("recipient is not in room")
	ErrSelfTransfer      = errors.New("cannot send money to yourself")
	ErrInvalidDirection  = errors.New("bank transaction must be ADD or DEDUCT")
)
