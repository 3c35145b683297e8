package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/config"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/softfail"
)

const clientBufferSize = 64

var (
	ErrUnknownClient = errors.New("broadcast: unknown client")
	ErrClientBacklog = errors.New("broadcast: client send buffer is full")
)

// SnapshotSource - откуда берется начальный снимок при подписке
type SnapshotSource interface {
	GetCurrentPositions(ctx context.Context, refs []models.EntityRef) ([]*models.Position, error)
	GetNearbyEntities(ctx context.Context, q models.NearbyQuery) ([]*models.EntityPosition, error)
}

// Client - одно живое соединение. Фильтр и время последнего heartbeat защищены своим мьютексом,
// общий реестр хаба при отправке не держится.
type Client struct {
	ID   uuid.UUID
	send chan ServerMessage
	done chan struct{}

	mu        sync.Mutex
	filter    *models.SubscriptionFilter
	lastSeen  time.Time
	closeOnce sync.Once
}

// Send - очередь исходящих сообщений
func (c *Client) Send() <-chan ServerMessage { return c.send }

// Done закрывается, когда клиент снят с учета (отключение или пропущенный heartbeat)
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.filter = nil
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *Client) currentFilter() *models.SubscriptionFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// enqueue не блокируется: переполненный буфер теряет сообщение только этого клиента
func (c *Client) enqueue(msg ServerMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Hub - реестр живых подписок процесса
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client

	source            SnapshotSource
	snapshotLimit     int
	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration
	logger            *logrus.Logger
	sink              softfail.Sink
	now               func() time.Time
}

func NewHub(source SnapshotSource, logger *logrus.Logger, sink softfail.Sink, cfg *config.Config) *Hub {
	return &Hub{
		clients:           make(map[uuid.UUID]*Client),
		source:            source,
		snapshotLimit:     cfg.Tuning.SnapshotLimit,
		heartbeatInterval: cfg.Tuning.HeartbeatInterval,
		heartbeatTimeout:  cfg.Tuning.HeartbeatTimeout,
		logger:            logger,
		sink:              sink,
		now:               time.Now,
	}
}

// Register заводит клиента без фильтра
func (h *Hub) Register() *Client {
	c := &Client{
		ID:       uuid.New(),
		send:     make(chan ServerMessage, clientBufferSize),
		done:     make(chan struct{}),
		lastSeen: h.now(),
	}
	h.mu.Lock()
	h.clients[c.ID] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"component": "live_hub",
		"client_id": c.ID,
		"clients":   total,
	}).Info("Live client registered")
	return c
}

// Unregister снимает клиента с учета и освобождает его фильтр. Повторный вызов безопасен.
func (h *Hub) Unregister(id uuid.UUID) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	total := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	c.close()
	h.logger.WithFields(logrus.Fields{
		"component": "live_hub",
		"client_id": id,
		"clients":   total,
	}).Info("Live client unregistered")
}

func (h *Hub) client(id uuid.UUID) (*Client, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	if !ok {
		return nil, ErrUnknownClient
	}
	return c, nil
}

// Count - число зарегистрированных клиентов
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Subscribe заменяет фильтр клиента и сразу ставит в очередь initial_positions.
// Ошибка снимка не отменяет подписку: клиент получает пустой снимок.
func (h *Hub) Subscribe(ctx context.Context, id uuid.UUID, filter *models.SubscriptionFilter) error {
	if err := filter.Validate(); err != nil {
		return err
	}
	c, err := h.client(id)
	if err != nil {
		return err
	}

	snapshot, err := h.snapshot(ctx, filter)
	if err != nil {
		h.sink.Warn("live.snapshot", err, logrus.Fields{"client_id": id})
		snapshot = []*models.Position{}
	}

	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()

	if !c.enqueue(ServerMessage{Type: MessageInitialPositions, Positions: snapshot, Timestamp: h.now()}) {
		return ErrClientBacklog
	}
	h.logger.WithFields(logrus.Fields{
		"component":  "live_hub",
		"client_id":  id,
		"geographic": filter.IsGeographic(),
		"snapshot":   len(snapshot),
	}).Debug("Live subscription replaced")
	return nil
}

// Unsubscribe очищает фильтр, соединение остается
func (h *Hub) Unsubscribe(id uuid.UUID) error {
	c, err := h.client(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.filter = nil
	c.mu.Unlock()
	return nil
}

// Heartbeat продлевает жизнь клиента и отвечает heartbeat_ack
func (h *Hub) Heartbeat(id uuid.UUID) error {
	c, err := h.client(id)
	if err != nil {
		return err
	}
	now := h.now()
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
	c.enqueue(ServerMessage{Type: MessageHeartbeatAck, Timestamp: now})
	return nil
}

// ReplyError отправляет клиенту сообщение об ошибке
func (h *Hub) ReplyError(id uuid.UUID, reason string) {
	c, err := h.client(id)
	if err != nil {
		return
	}
	c.enqueue(ServerMessage{Type: MessageError, Error: reason, Timestamp: h.now()})
}

// BroadcastPosition отправляет положение всем подходящим подпискам
func (h *Hub) BroadcastPosition(_ context.Context, pos *models.Position) error {
	msg := ServerMessage{Type: MessagePositionUpdate, Position: pos, Timestamp: h.now()}
	h.fanOut(msg, func(f *models.SubscriptionFilter) bool { return f.MatchesPosition(pos) })
	return nil
}

// BroadcastEvent отправляет событие геозоны всем подходящим подпискам
func (h *Hub) BroadcastEvent(_ context.Context, event *models.GeofenceEvent) error {
	msg := ServerMessage{Type: MessageGeofenceEvent, Event: event, Timestamp: h.now()}
	h.fanOut(msg, func(f *models.SubscriptionFilter) bool { return f.MatchesEvent(event) })
	return nil
}

func (h *Hub) fanOut(msg ServerMessage, match func(*models.SubscriptionFilter) bool) {
	for _, c := range h.snapshotClients() {
		f := c.currentFilter()
		if f == nil || !match(f) {
			continue
		}
		if !c.enqueue(msg) {
			h.logger.WithFields(logrus.Fields{
				"component": "live_hub",
				"client_id": c.ID,
				"type":      msg.Type,
			}).Warn("Live client is lagging, message dropped")
		}
	}
}

func (h *Hub) snapshotClients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Sweep снимает клиентов, молчащих дольше таймаута. Возвращает число снятых.
func (h *Hub) Sweep(now time.Time) int {
	var stale []uuid.UUID
	for _, c := range h.snapshotClients() {
		c.mu.Lock()
		silent := now.Sub(c.lastSeen)
		c.mu.Unlock()
		if silent > h.heartbeatTimeout {
			stale = append(stale, c.ID)
		}
	}
	for _, id := range stale {
		h.logger.WithFields(logrus.Fields{"component": "live_hub", "client_id": id}).Warn("Heartbeat timeout, closing live client")
		h.Unregister(id)
	}
	return len(stale)
}

// Run выполняет проверку heartbeat по таймеру до отмены ctx, затем закрывает всех клиентов
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			for _, c := range h.snapshotClients() {
				h.Unregister(c.ID)
			}
			return nil
		case <-ticker.C:
			h.Sweep(h.now())
		}
	}
}

// snapshot - текущие положения явно названных сущностей или ближайшие к центру, не больше лимита
func (h *Hub) snapshot(ctx context.Context, f *models.SubscriptionFilter) ([]*models.Position, error) {
	if h.source == nil {
		return []*models.Position{}, nil
	}
	if !f.IsGeographic() {
		positions, err := h.source.GetCurrentPositions(ctx, f.Entities)
		if err != nil {
			return nil, fmt.Errorf("snapshot of named entities: %w", err)
		}
		return positions, nil
	}

	types := f.EntityTypes
	if len(types) == 0 {
		types = []models.EntityType{""}
	}
	var found []*models.EntityPosition
	for _, t := range types {
		batch, err := h.source.GetNearbyEntities(ctx, models.NearbyQuery{
			Latitude:    f.Center.Lat,
			Longitude:   f.Center.Lon,
			RadiusMiles: f.RadiusMiles,
			EntityType:  t,
			Limit:       h.snapshotLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("snapshot of nearby %q: %w", t, err)
		}
		found = append(found, batch...)
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].DistanceMiles < found[j].DistanceMiles })
	if len(found) > h.snapshotLimit {
		found = found[:h.snapshotLimit]
	}

	out := make([]*models.Position, 0, len(found))
	for _, p := range found {
		pos := p.Position
		out = append(out, &pos)
	}
	return out, nil
}
