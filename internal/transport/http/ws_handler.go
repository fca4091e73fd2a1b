package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gameroom-service/internal/app"
	"gameroom-service/internal/domain"
)

const (
	maxMessageSize = 64 * 1024
	closeGrace     = time.Second
)

type WSHandler struct {
	namespace app.Namespace
	hub       *Hub
	logger    *zap.Logger
	upgrader  websocket.Upgrader
	newID     func() string
}

func NewWSHandler(namespace app.Namespace, hub *Hub, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		namespace: namespace,
		hub:       hub,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		newID: uuid.NewString,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// ServeWS upgrades the request and drives one connection through the namespace.
// Events from one connection are handled strictly in arrival order.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	ctx := r.Context()
	connID := h.newID()
	send := h.hub.register(connID)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.String("conn", connID), zap.Error(err))
				// keep draining so unregister never races a blocked writer
				for range send {
				}
				return
			}
		}
	}()

	refused := false
	if err := h.namespace.Connect(ctx, connID); err != nil {
		h.logger.Error("connect failed", zap.String("conn", connID), zap.Error(err))
		h.hub.Emit(connID, app.EventError, errorPayload{Error: "internal server error"})
		refused = true
	}

	for !refused {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var inbound inboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.hub.Emit(connID, app.EventError, errorPayload{Error: "invalid message"})
			continue
		}
		refused = h.dispatch(ctx, connID, inbound)
	}

	h.namespace.Disconnect(context.WithoutCancel(ctx), connID)
	h.hub.unregister(connID)
	<-writerDone

	if refused {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "connection refused"),
			time.Now().Add(closeGrace))
	}
}

// dispatch runs one event and reports whether the connection must be closed.
func (h *WSHandler) dispatch(ctx context.Context, connID string, inbound inboundMessage) bool {
	err := h.namespace.Handle(ctx, connID, inbound.Type, inbound.Payload)
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrConnectionRefused):
		h.logger.Info("connection refused", zap.String("conn", connID), zap.Error(err))
		return true
	case errors.Is(err, app.ErrUnsupportedEvent):
		h.hub.Emit(connID, app.EventError, errorPayload{Error: "unsupported event"})
		return false
	default:
		h.logger.Error("event failed",
			zap.String("conn", connID),
			zap.String("event", inbound.Type),
			zap.Error(err))
		h.hub.Emit(connID, app.EventError, errorPayload{Error: "internal server error"})
		return false
	}
}
