package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/jashanpreetsinghdod/bankroom/internal/api/apierr"
	"github.com/jashanpreetsinghdod/bankroom/internal/api/middleware"
	"github.com/jashanpreetsinghdod/bankroom/internal/model"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/auth"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/ledger"
	"github.com/jashanpreetsinghdod/bankroom/internal/services/presence"
	"github.com/jashanpreetsinghdod/bankroom/internal/ws"
)

// WSHandler owns the WebSocket endpoint and dispatches decoded intents
// to the room services. Rejections go back to the requester alone as
// transaction_error events; accepted mutations fan out to the whole room
// as fresh snapshots.
type WSHandler struct {
	authService *auth.Service
	presence    *presence.Service
	ledger      *ledger.Service
	hubs        *ws.HubManager
	broadcaster *ws.Broadcaster
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(
	authService *auth.Service,
	pres *presence.Service,
	led *ledger.Service,
	hubs *ws.HubManager,
	broadcaster *ws.Broadcaster,
	logger *slog.Logger,
) *WSHandler {
	return &WSHandler{
		authService: authService,
		presence:    pres,
		ledger:      led,
		hubs:        hubs,
		broadcaster: broadcaster,
		logger:      logger.With(slog.String("component", "ws_handler")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement is delegated to the fronting proxy
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws. Authentication happens before the upgrade so a
// bad token costs a plain 401, not a torn socket.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token == "" {
		apierr.WriteError(w, apierr.NewUnauthorizedError())
		return
	}

	session, err := h.authService.ValidateSession(token)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := ws.NewClient(session.User, conn, h.logger)
	go client.WritePump()

	client.SendEvent(model.EventConnected, model.ConnectedPayload{UserID: string(session.User.ID)})

	// Blocks until the connection drops
	client.ReadPump(r.Context(), h)
}

// HandleMessage implements ws.Handler
func (h *WSHandler) HandleMessage(ctx context.Context, client *ws.Client, msg ws.Inbound) {
	switch msg.Type {
	case ws.TypeJoinRoom:
		h.handleJoin(ctx, client, msg)
	case ws.TypeLeaveRoom:
		h.handleLeave(ctx, client, msg)
	case ws.TypeSendMoney:
		h.handleSendMoney(ctx, client, msg)
	case ws.TypeBankTransaction:
		h.handleBankTransaction(ctx, client, msg)
	default:
		client.SendEvent(model.EventTransactionError, "Unknown message type")
	}
}

// HandleClose implements ws.Handler. The seat survives: presence starts
// the grace window and the sweeper vacates it only if no reconnect comes.
func (h *WSHandler) HandleClose(client *ws.Client) {
	h.detach(client)
}

// detach ends the client's current room subscription, if any
func (h *WSHandler) detach(client *ws.Client) {
	hub := client.Hub()
	if hub == nil {
		return
	}
	hub.Unregister(client)
	h.presence.Disconnect(hub.RoomID(), client.User.ID)
}

func (h *WSHandler) handleJoin(ctx context.Context, client *ws.Client, msg ws.Inbound) {
	if msg.RoomID == "" {
		client.SendEvent(model.EventTransactionError, "roomId is required")
		return
	}
	roomID := model.RoomID(msg.RoomID)

	// A connection subscribes to one room at a time
	h.detach(client)

	room, err := h.presence.Join(ctx, roomID, client.User)
	if err != nil {
		client.SendEvent(model.EventTransactionError, apierr.Message(err))
		return
	}

	h.hubs.GetOrCreateHub(roomID).Register(client)
	h.presence.Connect(roomID, client.User.ID)

	h.broadcaster.BroadcastSnapshot(room)
}

func (h *WSHandler) handleLeave(ctx context.Context, client *ws.Client, msg ws.Inbound) {
	roomID := model.RoomID(msg.RoomID)
	if roomID == "" {
		current, ok := client.Room()
		if !ok {
			return
		}
		roomID = current
	}

	h.detach(client)

	room, err := h.presence.Leave(ctx, roomID, client.User.ID)
	if err != nil {
		client.SendEvent(model.EventTransactionError, apierr.Message(err))
		return
	}

	// Nil means the room emptied and its deletion already went out
	if room != nil {
		h.broadcaster.BroadcastSnapshot(room)
	}
}

func (h *WSHandler) handleSendMoney(ctx context.Context, client *ws.Client, msg ws.Inbound) {
	roomID, ok := h.resolveRoom(client, msg)
	if !ok {
		return
	}
	receiverID := model.UserID(msg.ReceiverID)

	room, err := h.ledger.Transfer(ctx, roomID, client.User.ID, receiverID, msg.Amount)
	if err != nil {
		client.SendEvent(model.EventTransactionError, apierr.Message(err))
		return
	}

	h.broadcaster.BroadcastSnapshot(room)
	h.broadcaster.NotifyUser(roomID, receiverID, transferNotice(room, client.User.ID, msg.Amount))
}

func (h *WSHandler) handleBankTransaction(ctx context.Context, client *ws.Client, msg ws.Inbound) {
	roomID, ok := h.resolveRoom(client, msg)
	if !ok {
		return
	}
	playerID := model.UserID(msg.PlayerID)

	direction, err := model.ParseDirection(msg.Action)
	if err != nil {
		client.SendEvent(model.EventTransactionError, apierr.Message(err))
		return
	}

	room, err := h.ledger.BankAdjust(ctx, roomID, client.User.ID, playerID, msg.Amount, direction)
	if err != nil {
		client.SendEvent(model.EventTransactionError, apierr.Message(err))
		return
	}

	h.broadcaster.BroadcastSnapshot(room)
	h.broadcaster.NotifyUser(roomID, playerID, bankNotice(msg.Amount, direction))
}

// resolveRoom picks the room a money intent targets: the explicit roomId
// if given, otherwise the client's current subscription
func (h *WSHandler) resolveRoom(client *ws.Client, msg ws.Inbound) (model.RoomID, bool) {
	if msg.RoomID != "" {
		return model.RoomID(msg.RoomID), true
	}
	roomID, ok := client.Room()
	if !ok {
		client.SendEvent(model.EventTransactionError, "Not subscribed to a room")
		return "", false
	}
	return roomID, true
}
