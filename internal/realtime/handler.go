package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"votegate/pkg/platform/httputil"
	adminmw "votegate/pkg/platform/middleware/admin"
	authmw "votegate/pkg/platform/middleware/auth"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/requestcontext"
)

const writeTimeout = 10 * time.Second

// Handler upgrades authorized requests to websocket connections registered with the hub.
type Handler struct {
	hub        *Hub
	verifier   authmw.TokenVerifier
	adminToken string
	logger     *slog.Logger
	origins    []string
}

type HandlerOption func(*Handler)

// WithOriginPatterns allows cross-origin browser clients matching patterns.
func WithOriginPatterns(patterns ...string) HandlerOption {
	return func(h *Handler) {
		h.origins = append(h.origins, patterns...)
	}
}

func NewHandler(hub *Hub, verifier authmw.TokenVerifier, adminToken string, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{hub: hub, verifier: verifier, adminToken: adminToken, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/ws", h.HandleConnect)
}

// clientMessage is what a connected client may send.
type clientMessage struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

type ackMessage struct {
	Type  string   `json:"type"`
	Rooms []string `json:"rooms,omitempty"`
	Error string   `json:"error,omitempty"`
}

// HandleConnect authorizes the handshake, then serves the connection until either
// side closes it. Invalid credentials are rejected with 401 before the upgrade.
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	client, err := h.authorize(r)
	if err != nil {
		h.logger.WarnContext(ctx, "realtime handshake rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			"request_id", requestID,
			"error", err,
		)
		return
	}
	conn.SetReadLimit(4096)

	h.hub.Register(client)
	for _, room := range defaultRooms(client) {
		h.hub.Join(client, room)
	}
	defer h.hub.Unregister(client)

	h.logger.InfoContext(ctx, "realtime client connected",
		"request_id", requestID,
		"connection_id", client.ID,
		"role", client.Role,
	)

	// The request context ends when the handler returns; detach so the
	// writer is not cancelled while the reader is still draining.
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	go h.readLoop(connCtx, cancel, conn, client)
	h.writeLoop(connCtx, conn, client)
}

func (h *Handler) authorize(r *http.Request) (*Client, error) {
	role := r.URL.Query().Get("role")
	if role == "" {
		role = RoleVoter
	}
	connID := uuid.NewString()

	switch role {
	case RoleAdmin:
		token := r.Header.Get(adminmw.HeaderAdminToken)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if !adminmw.ValidToken(h.adminToken, token) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "admin token required").WithReason(dErrors.ReasonTokenInvalid)
		}
		return NewClient(connID, RoleAdmin, connID), nil
	case RoleVoter:
		token := authmw.BearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token").WithReason(dErrors.ReasonTokenInvalid)
		}
		claims, err := h.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			return nil, err
		}
		if claims.Phase != authmw.PhaseFull {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token not valid for this operation").WithReason(dErrors.ReasonTokenInvalid)
		}
		return NewClient(connID, RoleVoter, claims.VoterID.String()), nil
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "role must be voter or admin")
	}
}

func defaultRooms(c *Client) []string {
	if c.Role == RoleAdmin {
		return []string{RoomAdmins, AdminRoom(c.ID), RoomPublic}
	}
	return []string{VoterRoom(c.Subject), RoomVoters, RoomPublic}
}

func (h *Handler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, client *Client) {
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				h.logger.DebugContext(ctx, "realtime read ended",
					"connection_id", client.ID,
					"error", err,
				)
			}
			return
		}

		var msg clientMessage
		ack := ackMessage{Type: "ack"}
		switch {
		case json.Unmarshal(data, &msg) != nil:
			ack = ackMessage{Type: "error", Error: "malformed message"}
		case !IsElectionRoom(msg.Room):
			ack = ackMessage{Type: "error", Error: "only election rooms can be joined"}
		case msg.Action == "join":
			h.hub.Join(client, msg.Room)
		case msg.Action == "leave":
			h.hub.Leave(client, msg.Room)
		default:
			ack = ackMessage{Type: "error", Error: "action must be join or leave"}
		}
		if ack.Type == "ack" {
			ack.Rooms = h.hub.Rooms(client)
		}
		payload, _ := json.Marshal(ack)
		if !client.trySend(payload) {
			h.logger.WarnContext(ctx, "realtime ack dropped", "connection_id", client.ID)
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, client *Client) {
	for {
		select {
		case msg := <-client.Send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				h.logger.DebugContext(ctx, "realtime write failed",
					"connection_id", client.ID,
					"error", err,
				)
				conn.Close(websocket.StatusInternalError, "write failed")
				return
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-client.Done():
			conn.Close(websocket.StatusGoingAway, "")
			return
		}
	}
}
