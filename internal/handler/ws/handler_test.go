package ws

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/fleet_location_core/internal/broadcast"
	"github.com/shenikar/fleet_location_core/internal/config"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/softfail"
)

type stubSource struct {
	positions []*models.Position
}

func (s *stubSource) GetCurrentPositions(context.Context, []models.EntityRef) ([]*models.Position, error) {
	return s.positions, nil
}

func (s *stubSource) GetNearbyEntities(context.Context, models.NearbyQuery) ([]*models.EntityPosition, error) {
	return nil, nil
}

func setupLive(t *testing.T) (*broadcast.Hub, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	source := &stubSource{positions: []*models.Position{{EntityID: "v1", EntityType: models.EntityVehicle, Latitude: 34.05, Longitude: -118.24}}}
	hub := broadcast.NewHub(source, logger, softfail.Nop{}, &config.Config{Tuning: config.DefaultTuning()})

	router := gin.New()
	router.GET("/ws/live", NewHandler(hub, logger).Serve)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/live", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func readServer(t *testing.T, conn *websocket.Conn) broadcast.ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg broadcast.ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestLive_SubscribeHeartbeatAndUpdates(t *testing.T) {
	// Подготовка
	hub, conn := setupLive(t)

	// Действие: подписка
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":         "subscribe",
		"subscription": map[string]any{"entities": []map[string]string{{"entity_id": "v1"}}},
	}))

	// Проверки
	initial := readServer(t, conn)
	assert.Equal(t, broadcast.MessageInitialPositions, initial.Type)
	require.Len(t, initial.Positions, 1)
	assert.Equal(t, "v1", initial.Positions[0].EntityID)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "heartbeat"}))
	assert.Equal(t, broadcast.MessageHeartbeatAck, readServer(t, conn).Type)

	require.NoError(t, hub.BroadcastPosition(context.Background(), &models.Position{EntityID: "v1", EntityType: models.EntityVehicle, Latitude: 34.06}))
	update := readServer(t, conn)
	assert.Equal(t, broadcast.MessagePositionUpdate, update.Type)
	assert.Equal(t, 34.06, update.Position.Latitude)
}

func TestLive_MalformedMessagesGetErrors(t *testing.T) {
	_, conn := setupLive(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, broadcast.MessageError, readServer(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "dance"}))
	assert.Equal(t, broadcast.MessageError, readServer(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "subscribe", "subscription": map[string]any{}}))
	msg := readServer(t, conn)
	assert.Equal(t, broadcast.MessageError, msg.Type)
	assert.Contains(t, msg.Error, "validation failed")
}

func TestLive_DisconnectReleasesClient(t *testing.T) {
	hub, conn := setupLive(t)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
