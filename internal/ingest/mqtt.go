package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/models"
)

const (
	mqttQoS             = 1
	mqttDisconnectQuiet = 250 // мс
	mqttHandoffTimeout  = 5 * time.Second
)

// ClientFactory подключает клиента с заданным обработчиком потери соединения
type ClientFactory func(onLost pahomqtt.ConnectionLostHandler) (pahomqtt.Client, error)

// MQTTConsumer подписывается на fleet/{type}/{id}/position.
// Тип и id из топика подставляются, если их нет в теле сообщения.
type MQTTConsumer struct {
	connect ClientFactory
	topic   string
	sink    Adder
	logger  *logrus.Logger
	ready   atomic.Bool
	lost    chan error

	mu  sync.Mutex
	ctx context.Context
}

func NewMQTTConsumer(connect ClientFactory, topic string, sink Adder, logger *logrus.Logger) *MQTTConsumer {
	return &MQTTConsumer{
		connect: connect,
		topic:   topic,
		sink:    sink,
		logger:  logger,
		lost:    make(chan error, 1),
		ctx:     context.Background(),
	}
}

func (c *MQTTConsumer) Ready() bool {
	return c.ready.Load()
}

// Run подключается, подписывается и ждет отмены ctx.
// Потеря соединения дает одну попытку переподключения.
func (c *MQTTConsumer) Run(ctx context.Context) error {
	log := c.logger.WithFields(logrus.Fields{"component": "mqtt_consumer", "topic": c.topic})

	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	client, err := c.subscribe()
	if err != nil {
		log.WithError(err).Error("MQTT consumer failed to start")
		return err
	}
	c.ready.Store(true)
	log.Info("MQTT consumer started")

	for {
		select {
		case <-ctx.Done():
			c.ready.Store(false)
			client.Unsubscribe(c.topic).WaitTimeout(time.Second)
			client.Disconnect(mqttDisconnectQuiet)
			log.Info("MQTT consumer stopped")
			return nil

		case lostErr := <-c.lost:
			c.ready.Store(false)
			log.WithError(lostErr).Warn("MQTT connection lost, reconnecting")
			client.Disconnect(0)
			client, err = c.subscribe()
			if err != nil {
				log.WithError(err).Error("MQTT reconnect failed, consumer is not ready")
				return err
			}
			c.ready.Store(true)
			log.Info("MQTT consumer reconnected")
		}
	}
}

func (c *MQTTConsumer) subscribe() (pahomqtt.Client, error) {
	client, err := c.connect(c.onConnectionLost)
	if err != nil {
		return nil, fmt.Errorf("ingest: mqtt connect: %w", err)
	}
	token := client.Subscribe(c.topic, mqttQoS, c.handleMessage)
	if token.Wait() && token.Error() != nil {
		client.Disconnect(mqttDisconnectQuiet)
		return nil, fmt.Errorf("ingest: mqtt subscribe %s: %w", c.topic, token.Error())
	}
	return client, nil
}

func (c *MQTTConsumer) onConnectionLost(_ pahomqtt.Client, err error) {
	select {
	case c.lost <- err:
	default:
	}
}

func (c *MQTTConsumer) handleMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	log := c.logger.WithFields(logrus.Fields{"component": "mqtt_consumer", "topic": msg.Topic()})

	update, err := decodeWithRef(msg.Payload(), models.SourceGPSDevice, refFromTopic(msg.Topic()))
	if err != nil {
		log.WithError(err).Warn("Dropping malformed position message")
		return
	}

	c.mu.Lock()
	base := c.ctx
	c.mu.Unlock()
	ctx, cancel := context.WithTimeout(base, mqttHandoffTimeout)
	defer cancel()
	if err := c.sink.Add(ctx, update); err != nil {
		log.WithError(err).Warn("Failed to hand off position update")
	}
}
