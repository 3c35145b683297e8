package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/models"
)

// MessageReader - часть kafka.Reader, которую использует потребитель
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReaderFactory создает новый reader, вызывается при старте и при переподключении
type ReaderFactory func() MessageReader

// KafkaConsumer читает топик обновлений положения и передает их батчеру.
// Смещение фиксируется только после записи пачки, в которую попало сообщение.
type KafkaConsumer struct {
	newReader ReaderFactory
	sink      AckAdder
	logger    *logrus.Logger
	ready     atomic.Bool

	mu     sync.Mutex
	reader MessageReader
}

func NewKafkaConsumer(newReader ReaderFactory, sink AckAdder, logger *logrus.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		newReader: newReader,
		sink:      sink,
		logger:    logger,
	}
}

// Ready - потребитель подключен и читает
func (c *KafkaConsumer) Ready() bool {
	return c.ready.Load()
}

// Run читает сообщения до отмены ctx. После ошибки транспорта делается одна попытка
// переподключения; повторная ошибка подряд переводит потребителя в not-ready и возвращается.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	log := c.logger.WithField("component", "kafka_consumer")

	reader := c.newReader()
	c.setReader(reader)
	c.ready.Store(true)
	defer func() {
		c.ready.Store(false)
		c.setReader(nil)
		if err := reader.Close(); err != nil {
			log.WithError(err).Warn("Failed to close kafka reader")
		}
	}()
	log.Info("Kafka consumer started")

	reconnected := false
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Kafka consumer stopped")
				return nil
			}
			if reconnected {
				log.WithError(err).Error("Kafka reader failed again after reconnect, consumer is not ready")
				return fmt.Errorf("ingest: kafka fetch: %w", err)
			}
			log.WithError(err).Warn("Kafka fetch failed, reconnecting")
			if cerr := reader.Close(); cerr != nil {
				log.WithError(cerr).Warn("Failed to close kafka reader")
			}
			reader = c.newReader()
			c.setReader(reader)
			reconnected = true
			continue
		}
		reconnected = false

		if err := c.handle(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrBatcherClosed) {
				return nil
			}
			log.WithError(err).Warn("Failed to hand off position update")
		}
	}
}

func (c *KafkaConsumer) setReader(r MessageReader) {
	c.mu.Lock()
	c.reader = r
	c.mu.Unlock()
}

// commit фиксирует смещение через текущий reader. После остановки потребителя фиксировать некуда,
// сообщение будет прочитано повторно.
func (c *KafkaConsumer) commit(ctx context.Context, msg kafka.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reader == nil || ctx.Err() != nil {
		return
	}
	if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
		c.logger.WithFields(logrus.Fields{
			"component": "kafka_consumer",
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).WithError(err).Warn("Failed to commit kafka offset")
	}
}

// handle декодирует сообщение. Битое сообщение логируется, фиксируется и отбрасывается.
// Корректное фиксируется, когда батчер подтвердит запись. Сбой хранилища не фиксирует сообщение.
func (c *KafkaConsumer) handle(ctx context.Context, msg kafka.Message) error {
	log := c.logger.WithFields(logrus.Fields{
		"component": "kafka_consumer",
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})
	update, err := DecodePositionMessage(msg.Value, models.SourceMobileApp)
	if err != nil {
		log.WithError(err).Warn("Dropping malformed position message")
		c.commit(ctx, msg)
		return nil
	}
	return c.sink.AddWithAck(ctx, update, func(err error) {
		if err != nil && !errors.Is(err, models.ErrValidation) {
			log.WithError(err).Warn("Position update not stored, offset left uncommitted")
			return
		}
		c.commit(ctx, msg)
	})
}
