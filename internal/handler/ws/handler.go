package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/broadcast"
	"github.com/shenikar/fleet_location_core/internal/models"
)

const (
	writeTimeout    = 10 * time.Second
	subscribeBudget = 5 * time.Second
	maxMessageBytes = 64 << 10
)

// Handler обслуживает живой канал /ws/live
type Handler struct {
	hub      *broadcast.Hub
	logger   *logrus.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *broadcast.Hub, logger *logrus.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve godoc
// @Summary      Live position channel
// @Description  Websocket. Client sends {type: subscribe|unsubscribe|heartbeat, subscription?}; server pushes initial_positions, position_update, geofence_event, heartbeat_ack, error.
// @Tags         live
// @Security     ApiKeyAuth
// @Success      101
// @Router       /ws/live [get]
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	client := h.hub.Register()
	log := h.logger.WithFields(logrus.Fields{"handler": "ws", "client_id": client.ID})

	go h.writeLoop(conn, client, log)
	h.readLoop(c.Request.Context(), conn, client, log)
}

// readLoop завершается при ошибке чтения; клиент сразу снимается с учета
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, client *broadcast.Client, log *logrus.Entry) {
	defer h.hub.Unregister(client.ID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("Live connection closed unexpectedly")
			}
			return
		}

		var msg broadcast.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.hub.ReplyError(client.ID, "malformed message")
			continue
		}

		switch msg.Type {
		case broadcast.ClientSubscribe:
			subCtx, cancel := context.WithTimeout(ctx, subscribeBudget)
			err = h.hub.Subscribe(subCtx, client.ID, msg.Subscription)
			cancel()
			if err != nil {
				log.WithError(err).Debug("Subscription rejected")
				h.hub.ReplyError(client.ID, subscribeErrorText(err))
			}
		case broadcast.ClientUnsubscribe:
			err = h.hub.Unsubscribe(client.ID)
		case broadcast.ClientHeartbeat:
			err = h.hub.Heartbeat(client.ID)
		default:
			h.hub.ReplyError(client.ID, "unknown message type")
		}
		if errors.Is(err, broadcast.ErrUnknownClient) {
			return
		}
	}
}

// writeLoop - единственный писатель в соединение
func (h *Handler) writeLoop(conn *websocket.Conn, client *broadcast.Client, log *logrus.Entry) {
	defer conn.Close()
	for {
		select {
		case msg := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Warn("Failed to write to live client")
				h.hub.Unregister(client.ID)
				return
			}
		case <-client.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "subscription closed"))
			return
		}
	}
}

func subscribeErrorText(err error) string {
	switch {
	case errors.Is(err, models.ErrValidation):
		return err.Error()
	case errors.Is(err, broadcast.ErrClientBacklog):
		return "client is lagging"
	}
	return "subscription failed"
}
