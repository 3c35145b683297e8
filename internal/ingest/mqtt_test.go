package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/fleet_location_core/internal/models"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return mqttQoS }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Error() error                   { return t.err }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// fakeClient реализует только то, что вызывает потребитель
type fakeClient struct {
	pahomqtt.Client
	mu           sync.Mutex
	subscribed   []string
	disconnected bool
}

func (c *fakeClient) Subscribe(topic string, _ byte, _ pahomqtt.MessageHandler) pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed = append(c.subscribed, topic)
	return fakeToken{}
}

func (c *fakeClient) Unsubscribe(...string) pahomqtt.Token { return fakeToken{} }

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

func TestMQTTConsumer_FillsRefFromTopic(t *testing.T) {
	// Подготовка
	adder := &fakeAdder{}
	consumer := NewMQTTConsumer(nil, "fleet/+/+/position", adder, newTestLogger())

	// Действие
	consumer.handleMessage(nil, fakeMessage{
		topic:   "fleet/vehicle/v-7/position",
		payload: []byte(`{"latitude":34.05,"longitude":-118.24,"speed":42}`),
	})
	consumer.handleMessage(nil, fakeMessage{
		topic:   "fleet/vehicle/v-8/position",
		payload: []byte(`{"entity_id":"d-1","entity_type":"driver","latitude":1,"longitude":2,"source":"mobile_app"}`),
	})
	consumer.handleMessage(nil, fakeMessage{topic: "fleet/vehicle/v-9/position", payload: []byte(`{"latitude":"north"}`)})

	// Проверки
	got := adder.received()
	require.Len(t, got, 2)
	assert.Equal(t, "v-7", got[0].EntityID)
	assert.Equal(t, models.EntityVehicle, got[0].EntityType)
	assert.Equal(t, models.SourceGPSDevice, got[0].Source)
	assert.Equal(t, "d-1", got[1].EntityID)
	assert.Equal(t, models.EntityDriver, got[1].EntityType)
	assert.Equal(t, models.SourceMobileApp, got[1].Source)
}

func TestMQTTConsumer_ReconnectsOnceThenFails(t *testing.T) {
	// Подготовка
	client := &fakeClient{}
	var calls int32
	connect := func(onLost pahomqtt.ConnectionLostHandler) (pahomqtt.Client, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return client, nil
		}
		return nil, errTransport
	}
	consumer := NewMQTTConsumer(connect, "fleet/+/+/position", &fakeAdder{}, newTestLogger())
	done := make(chan error, 1)

	// Действие
	go func() { done <- consumer.Run(context.Background()) }()
	require.Eventually(t, consumer.Ready, 2*time.Second, 10*time.Millisecond)
	consumer.onConnectionLost(client, errors.New("connection reset"))

	// Проверки
	select {
	case err := <-done:
		assert.ErrorIs(t, err, errTransport)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after failed reconnect")
	}
	assert.False(t, consumer.Ready())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMQTTConsumer_ReconnectRestoresReadiness(t *testing.T) {
	clients := []*fakeClient{{}, {}}
	var calls int32
	connect := func(onLost pahomqtt.ConnectionLostHandler) (pahomqtt.Client, error) {
		i := atomic.AddInt32(&calls, 1) - 1
		return clients[i], nil
	}
	consumer := NewMQTTConsumer(connect, "fleet/+/+/position", &fakeAdder{}, newTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- consumer.Run(ctx) }()
	require.Eventually(t, consumer.Ready, 2*time.Second, 10*time.Millisecond)
	consumer.onConnectionLost(clients[0], errors.New("connection reset"))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 && consumer.Ready() }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, []string{"fleet/+/+/position"}, clients[1].subscribed)
	assert.True(t, clients[1].disconnected)
}
