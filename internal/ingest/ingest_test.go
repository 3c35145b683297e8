package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/config"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/softfail"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

// fakeWriter запоминает размеры пачек и поштучные записи
type fakeWriter struct {
	mu      sync.Mutex
	batches []int
	singles []string
	bulkErr error
	itemErr map[string]error
}

func (w *fakeWriter) BulkUpdatePositions(_ context.Context, updates []*models.PositionUpdate) ([]*models.PositionUpdateResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batches = append(w.batches, len(updates))
	if w.bulkErr != nil {
		return nil, w.bulkErr
	}
	return make([]*models.PositionUpdateResult, len(updates)), nil
}

func (w *fakeWriter) UpdatePosition(_ context.Context, u *models.PositionUpdate) (*models.PositionUpdateResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.singles = append(w.singles, u.EntityID)
	if err := w.itemErr[u.EntityID]; err != nil {
		return nil, err
	}
	return &models.PositionUpdateResult{}, nil
}

func (w *fakeWriter) batchSizes() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]int(nil), w.batches...)
}

func (w *fakeWriter) singleIDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.singles...)
}

// fakeAdder запоминает все, что передали потребители. Без hold подтверждает запись сразу.
type fakeAdder struct {
	mu      sync.Mutex
	updates []*models.PositionUpdate
	err     error
	hold    bool
	acks    []Ack
}

func (a *fakeAdder) AddWithAck(ctx context.Context, u *models.PositionUpdate, ack Ack) error {
	if err := a.Add(ctx, u); err != nil {
		return err
	}
	a.mu.Lock()
	if a.hold {
		a.acks = append(a.acks, ack)
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()
	ack(nil)
	return nil
}

// release подтверждает отложенные обновления с результатом err
func (a *fakeAdder) release(err error) {
	a.mu.Lock()
	acks := a.acks
	a.acks = nil
	a.mu.Unlock()
	for _, ack := range acks {
		ack(err)
	}
}

func (a *fakeAdder) Add(_ context.Context, u *models.PositionUpdate) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.updates = append(a.updates, u)
	return nil
}

func (a *fakeAdder) received() []*models.PositionUpdate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*models.PositionUpdate(nil), a.updates...)
}

func newTestBatcher(w PositionWriter, size int, interval time.Duration, sink softfail.Sink) *Batcher {
	tuning := config.DefaultTuning()
	tuning.BatchSize = size
	tuning.BatchInterval = interval
	tuning.StoreTimeout = time.Second
	return NewBatcher(w, newTestLogger(), sink, &config.Config{Tuning: tuning})
}

func vehicleUpdate(i int) *models.PositionUpdate {
	return models.NewPositionUpdate(fmt.Sprintf("v-%d", i), models.EntityVehicle, 34.05, -118.24)
}

var errTransport = errors.New("broker went away")
