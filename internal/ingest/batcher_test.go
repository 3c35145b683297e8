package ingest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/softfail"
)

func TestBatcher_SplitsBySize(t *testing.T) {
	// Подготовка
	w := &fakeWriter{}
	b := newTestBatcher(w, 10, 100*time.Millisecond, softfail.Nop{})
	b.Start()
	defer b.Close()

	// Действие
	for i := 0; i < 25; i++ {
		require.NoError(t, b.Add(context.Background(), vehicleUpdate(i)))
	}

	// Проверки
	assert.Eventually(t, func() bool { return len(w.batchSizes()) == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{10, 10, 5}, w.batchSizes())
}

func TestBatcher_SingleItemFlushedByTimer(t *testing.T) {
	w := &fakeWriter{}
	b := newTestBatcher(w, 10, 50*time.Millisecond, softfail.Nop{})
	b.Start()
	defer b.Close()

	require.NoError(t, b.Add(context.Background(), vehicleUpdate(1)))

	assert.Empty(t, w.batchSizes())
	assert.Eventually(t, func() bool { return len(w.batchSizes()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{1}, w.batchSizes())
}

func TestBatcher_CloseFlushesRemainder(t *testing.T) {
	w := &fakeWriter{}
	b := newTestBatcher(w, 10, time.Hour, softfail.Nop{})
	b.Start()

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Add(context.Background(), vehicleUpdate(i)))
	}
	b.Close()

	assert.Equal(t, []int{3}, w.batchSizes())
	assert.ErrorIs(t, b.Add(context.Background(), vehicleUpdate(4)), ErrBatcherClosed)
}

func TestBatcher_RetriesItemsAfterValidationFailure(t *testing.T) {
	// Подготовка
	w := &fakeWriter{
		bulkErr: fmt.Errorf("service: %w: bulk upsert item 1", models.ErrValidation),
		itemErr: map[string]error{"v-1": models.ErrStaleUpdate},
	}
	sink := &softfail.Recorder{}
	b := newTestBatcher(w, 3, time.Hour, sink)
	b.Start()

	// Действие
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Add(context.Background(), vehicleUpdate(i)))
	}
	b.Close()

	// Проверки
	assert.Equal(t, []int{3}, w.batchSizes())
	assert.Equal(t, []string{"v-0", "v-1", "v-2"}, w.singleIDs())
	assert.Equal(t, []string{"ingest.flush_item"}, sink.Ops())
}

func TestBatcher_StoreFailureIsSoft(t *testing.T) {
	w := &fakeWriter{bulkErr: context.DeadlineExceeded}
	sink := &softfail.Recorder{}
	b := newTestBatcher(w, 2, time.Hour, sink)
	b.Start()

	require.NoError(t, b.Add(context.Background(), vehicleUpdate(1)))
	require.NoError(t, b.Add(context.Background(), vehicleUpdate(2)))
	b.Close()

	assert.Empty(t, w.singleIDs())
	assert.Equal(t, []string{"ingest.flush"}, sink.Ops())
}

func TestBatcher_AcksAfterFlush(t *testing.T) {
	w := &fakeWriter{
		bulkErr: fmt.Errorf("service: %w: bulk upsert item 1", models.ErrValidation),
		itemErr: map[string]error{"v-1": models.ErrStaleUpdate},
	}
	b := newTestBatcher(w, 3, time.Hour, &softfail.Recorder{})
	b.Start()

	acked := make(map[string]error)
	var order []string
	for i := 0; i < 3; i++ {
		u := vehicleUpdate(i)
		require.NoError(t, b.AddWithAck(context.Background(), u, func(err error) {
			acked[u.EntityID] = err
			order = append(order, u.EntityID)
		}))
	}
	b.Close()

	assert.Equal(t, []string{"v-0", "v-1", "v-2"}, order)
	assert.NoError(t, acked["v-0"])
	assert.ErrorIs(t, acked["v-1"], models.ErrStaleUpdate)
	assert.NoError(t, acked["v-2"])
}

func TestBatcher_StoreFailureAcksWithError(t *testing.T) {
	w := &fakeWriter{bulkErr: context.DeadlineExceeded}
	b := newTestBatcher(w, 2, time.Hour, softfail.Nop{})
	b.Start()

	var errs []error
	for i := 0; i < 2; i++ {
		require.NoError(t, b.AddWithAck(context.Background(), vehicleUpdate(i), func(err error) { errs = append(errs, err) }))
	}
	b.Close()

	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
}
