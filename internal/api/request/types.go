package request

// CreateGuestRequest is the request body for creating a guest user
type CreateGuestRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// RegisterRequest is the request body for registering a user
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateRoomRequest is the request body for creating a room. A zero
// BankBalance selects the default initial bank.
type CreateRoomRequest struct {
	BankBalance  int64 `json:"bankBalance,omitempty"`
	InitialStake int64 `json:"initialStake,omitempty"`
	MaxPlayers   int   `json:"maxPlayers,omitempty"`
}

// JoinRoomRequest is the request body for joining a room by code
type JoinRoomRequest struct {
	JoinCode string `json:"joinCode"`
}

// TransferRequest is the request body for a player-to-player transfer
type TransferRequest struct {
	ReceiverID string `json:"receiverId"`
	Amount     int64  `json:"amount"`
}

// BankAdjustRequest is the request body for an admin bank adjustment
type BankAdjustRequest struct {
	PlayerID string `json:"playerId"`
	Amount   int64  `json:"amount"`
	Action   string `json:"action"`
}
