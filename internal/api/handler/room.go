package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jashanpreetsinghdod/bankroom/internal/api/middleware"
	"github.com/jashanpreetsinghdod/bankroom/internal/api/request"
	"github.com/jashanpreetsinghdod/bankroom/internal/api/response"
	"github.com/jashanpreetsinghdod/bankroom/internal/model"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/ledger"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/presence"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/registry"
	"github.com/jashanpreetsinghdod/bankroom/internal/ws"
)

// RoomHandler handles room lifecycle and ledger endpoints
type RoomHandler struct {
	registry    *registry.Service
	presence    *presence.Service
	ledger      *ledger.Service
	broadcaster *ws.Broadcaster
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(reg *registry.Service, pres *presence.Service, led *ledger.Service, broadcaster *ws.Broadcaster) *RoomHandler {
	return &RoomHandler{
		registry:    reg,
		presence:    pres,
		ledger:      led,
		broadcaster: broadcaster,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body for defaults
		req = request.CreateRoomRequest{}
	}

	bankBalance := req.BankBalance
	if bankBalance == 0 {
		bankBalance = model.DefaultBankBalance
	}

	cfg := model.DefaultRoomConfig()
	if req.InitialStake > 0 {
		cfg.InitialStake = req.InitialStake
	}
	if req.MaxPlayers > 0 {
		cfg.MaxPlayers = req.MaxPlayers
	}

	room, err := h.registry.CreateRoom(r.Context(), *user, bankBalance, cfg)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(room))
}

// Get handles GET /api/v1/rooms/{room_id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	room, err := h.registry.GetRoom(r.Context(), roomID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Join handles POST /api/v1/rooms/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.JoinCode == "" {
		WriteError(w, NewInvalidRequestError("joinCode is required"))
		return
	}

	room, err := h.presence.JoinByCode(r.Context(), req.JoinCode, *user)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.BroadcastSnapshot(room)

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Leave handles POST /api/v1/rooms/{room_id}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	room, err := h.presence.Leave(r.Context(), roomID, user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	// A nil room means the departure emptied the room; the deletion
	// broadcast already went out through the registry's notifier.
	if room != nil {
		h.broadcaster.BroadcastSnapshot(room)
	}

	response.NoContent(w)
}

// Delete handles DELETE /api/v1/rooms/{room_id}
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	if err := h.registry.DeleteRoomByAdmin(r.Context(), roomID, user.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Transfer handles POST /api/v1/rooms/{room_id}/transfer
func (h *RoomHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	var req request.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	room, err := h.ledger.Transfer(r.Context(), roomID, user.ID, model.UserID(req.ReceiverID), req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.BroadcastSnapshot(room)
	h.broadcaster.NotifyUser(roomID, model.UserID(req.ReceiverID), transferNotice(room, user.ID, req.Amount))

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// BankAdjust handles POST /api/v1/rooms/{room_id}/bank
func (h *RoomHandler) BankAdjust(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	roomID := model.RoomID(mux.Vars(r)["room_id"])

	var req request.BankAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	direction, err := model.ParseDirection(req.Action)
	if err != nil {
		WriteError(w, err)
		return
	}

	room, err := h.ledger.BankAdjust(r.Context(), roomID, user.ID, model.UserID(req.PlayerID), req.Amount, direction)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.BroadcastSnapshot(room)
	h.broadcaster.NotifyUser(roomID, model.UserID(req.PlayerID), bankNotice(req.Amount, direction))

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}
