package broadcast

import (
	"time"

	"github.com/shenikar/fleet_location_core/internal/models"
)

// Типы входящих сообщений живого канала
const (
	ClientSubscribe   = "subscribe"
	ClientUnsubscribe = "unsubscribe"
	ClientHeartbeat   = "heartbeat"
)

// MessageType - тип исходящего сообщения
type MessageType string

const (
	MessageInitialPositions MessageType = "initial_positions"
	MessagePositionUpdate   MessageType = "position_update"
	MessageGeofenceEvent    MessageType = "geofence_event"
	MessageHeartbeatAck     MessageType = "heartbeat_ack"
	MessageError            MessageType = "error"
)

// ClientMessage - сообщение от клиента
type ClientMessage struct {
	Type         string                     `json:"type"`
	Subscription *models.SubscriptionFilter `json:"subscription,omitempty"`
}

// ServerMessage - сообщение клиенту. Заполнено только поле, соответствующее типу.
type ServerMessage struct {
	Type      MessageType           `json:"type"`
	Positions []*models.Position    `json:"positions,omitempty"`
	Position  *models.Position      `json:"position,omitempty"`
	Event     *models.GeofenceEvent `json:"event,omitempty"`
	Error     string                `json:"error,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}
