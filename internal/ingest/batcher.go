package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/config"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/softfail"
)

var ErrBatcherClosed = errors.New("ingest: batcher is closed")

// PositionWriter - то, что батчеру нужно от сервиса положений
type PositionWriter interface {
	BulkUpdatePositions(ctx context.Context, updates []*models.PositionUpdate) ([]*models.PositionUpdateResult, error)
	UpdatePosition(ctx context.Context, update *models.PositionUpdate) (*models.PositionUpdateResult, error)
}

// Adder принимает провалидированные обновления от потребителей
type Adder interface {
	Add(ctx context.Context, update *models.PositionUpdate) error
}

// Ack вызывается после того, как пачка с обновлением записана. err - ошибка записи этого обновления.
type Ack func(err error)

// AckAdder - Adder с подтверждением записи
type AckAdder interface {
	AddWithAck(ctx context.Context, update *models.PositionUpdate, ack Ack) error
}

type pending struct {
	update *models.PositionUpdate
	ack    Ack
}

func (p pending) done(err error) {
	if p.ack != nil {
		p.ack(err)
	}
}

// Batcher копит обновления и сбрасывает пачку по размеру или по таймеру от первого элемента.
// Сброс выполняет одна горутина, поэтому пачки пишутся строго по очереди.
type Batcher struct {
	writer       PositionWriter
	size         int
	interval     time.Duration
	storeTimeout time.Duration
	logger       *logrus.Logger
	sink         softfail.Sink

	in        chan pending
	quit      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

func NewBatcher(writer PositionWriter, logger *logrus.Logger, sink softfail.Sink, cfg *config.Config) *Batcher {
	return &Batcher{
		writer:       writer,
		size:         cfg.Tuning.BatchSize,
		interval:     cfg.Tuning.BatchInterval,
		storeTimeout: cfg.Tuning.StoreTimeout,
		logger:       logger,
		sink:         sink,
		in:           make(chan pending, cfg.Tuning.BatchSize*4),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start запускает цикл сброса
func (b *Batcher) Start() {
	b.startOnce.Do(func() { go b.run() })
}

// Add ставит обновление в очередь. Блокируется, если очередь заполнена.
func (b *Batcher) Add(ctx context.Context, update *models.PositionUpdate) error {
	return b.AddWithAck(ctx, update, nil)
}

// AddWithAck ставит обновление в очередь, ack вызывается из цикла сброса после записи пачки.
// Если обновление не принято в очередь, ack не вызывается.
func (b *Batcher) AddWithAck(ctx context.Context, update *models.PositionUpdate, ack Ack) error {
	select {
	case <-b.quit:
		return ErrBatcherClosed
	default:
	}
	select {
	case b.in <- pending{update: update, ack: ack}:
		return nil
	case <-b.quit:
		return ErrBatcherClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close сбрасывает остаток и дожидается завершения цикла
func (b *Batcher) Close() {
	b.closeOnce.Do(func() { close(b.quit) })
	b.Start()
	<-b.done
}

func (b *Batcher) run() {
	defer close(b.done)

	batch := make([]pending, 0, b.size)
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timerC = nil
	}
	flush := func() {
		stopTimer()
		if len(batch) == 0 {
			return
		}
		b.flush(batch)
		batch = make([]pending, 0, b.size)
	}

	for {
		select {
		case p := <-b.in:
			batch = append(batch, p)
			if len(batch) == 1 {
				timer = time.NewTimer(b.interval)
				timerC = timer.C
			}
			if len(batch) >= b.size {
				flush()
			}
		case <-timerC:
			flush()
		case <-b.quit:
			// Дочитываем то, что уже лежит в очереди
		drain:
			for {
				select {
				case p := <-b.in:
					batch = append(batch, p)
					if len(batch) >= b.size {
						flush()
					}
				default:
					break drain
				}
			}
			flush()
			return
		}
	}
}

// flush пишет пачку с ограничением по времени. Пачка, отклоненная валидацией,
// повторяется поштучно, чтобы один плохой элемент не потянул за собой остальные.
func (b *Batcher) flush(batch []pending) {
	ctx, cancel := context.WithTimeout(context.Background(), b.storeTimeout)
	defer cancel()

	log := b.logger.WithFields(logrus.Fields{
		"component": "batcher",
		"size":      len(batch),
	})

	updates := make([]*models.PositionUpdate, len(batch))
	for i, p := range batch {
		updates[i] = p.update
	}

	_, err := b.writer.BulkUpdatePositions(ctx, updates)
	if err == nil {
		log.Debug("Batch flushed")
		for _, p := range batch {
			p.done(nil)
		}
		return
	}
	if !errors.Is(err, models.ErrValidation) {
		b.sink.Warn("ingest.flush", err, logrus.Fields{"size": len(batch)})
		for _, p := range batch {
			p.done(err)
		}
		return
	}

	log.WithError(err).Warn("Batch rejected, retrying item by item")
	for _, p := range batch {
		itemCtx, itemCancel := context.WithTimeout(context.Background(), b.storeTimeout)
		_, err := b.writer.UpdatePosition(itemCtx, p.update)
		itemCancel()
		if err != nil {
			b.sink.Warn("ingest.flush_item", err, logrus.Fields{
				"entity_id":   p.update.EntityID,
				"entity_type": p.update.EntityType,
			})
		}
		p.done(err)
	}
}
