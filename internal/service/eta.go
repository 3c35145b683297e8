package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/fleet_location_core/internal/config"
	"github.com/shenikar/fleet_location_core/internal/geo"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/softfail"
)

const (
	currentSpeedWeight    = 0.3
	historicalSpeedWeight = 0.4

	minTrafficFactor = 0.5
	maxTrafficFactor = 2.0

	baseConfidence = 0.5
	minConfidence  = 0.5
	maxConfidence  = 0.95

	shortTripKm = 50
	longTripKm  = 500

	multiETAConcurrency = 8
)

// ETACache хранит посчитанные ETA по (сущность, округленная точка назначения, маршрут или нет)
type ETACache interface {
	Get(ctx context.Context, ref models.EntityRef, dest geo.LatLng, withRoute bool) (*models.ETAResult, error)
	Set(ctx context.Context, ref models.EntityRef, dest geo.LatLng, withRoute bool, result *models.ETAResult) error
	Invalidate(ctx context.Context, ref models.EntityRef) (int, error)
}

// TrafficProvider отдает коэффициент замедления на участке, nil - данных нет
type TrafficProvider interface {
	Factor(ctx context.Context, from, to geo.LatLng) (*float64, error)
}

// DriverBehaviorSource отдает множитель времени в пути для сущности, nil - множителя нет
type DriverBehaviorSource interface {
	Factor(ctx context.Context, entityID string) (*float64, error)
}

type CurrentPositionReader interface {
	GetCurrentPosition(ctx context.Context, entityID string, entityType models.EntityType) (*models.Position, error)
}

type SpeedHistory interface {
	AverageReportedSpeed(ctx context.Context, entityID string, entityType models.EntityType, since time.Time) (*float64, error)
}

// ETAService определяет контракт оценки времени прибытия
type ETAService interface {
	GetETA(ctx context.Context, req models.ETARequest) (*models.ETAResult, error)
	GetETAWithRouteInfo(ctx context.Context, req models.ETARequest) (*models.ETAResult, error)
	GetETAForMultipleEntities(ctx context.Context, refs []models.EntityRef, dest geo.LatLng) ([]*models.EntityETA, error)
	GetETAToMultipleDestinations(ctx context.Context, ref models.EntityRef, dests []geo.LatLng) ([]*models.DestinationETA, error)
	GetRemainingDistance(ctx context.Context, ref models.EntityRef, dest geo.LatLng, route []geo.LatLng) (*float64, error)
	InvalidateETACache(ctx context.Context, ref models.EntityRef) (int, error)
}

type etaService struct {
	positions CurrentPositionReader
	speeds    SpeedHistory
	cache     ETACache
	traffic   TrafficProvider
	drivers   DriverBehaviorSource
	sink      softfail.Sink
	logger    *logrus.Logger
	cfg       *config.Config
	now       func() time.Time
}

// NewETAService - traffic и drivers могут быть nil
func NewETAService(positions CurrentPositionReader, speeds SpeedHistory, cache ETACache, traffic TrafficProvider, drivers DriverBehaviorSource, logger *logrus.Logger, sink softfail.Sink, cfg *config.Config) ETAService {
	return &etaService{
		positions: positions,
		speeds:    speeds,
		cache:     cache,
		traffic:   traffic,
		drivers:   drivers,
		sink:      sink,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// GetETA - оценка по прямой до точки назначения. nil, если положение сущности неизвестно.
func (s *etaService) GetETA(ctx context.Context, req models.ETARequest) (*models.ETAResult, error) {
	req.Route = nil
	return s.estimate(ctx, req, false)
}

// GetETAWithRouteInfo - оценка по маршруту с разбивкой по участкам
func (s *etaService) GetETAWithRouteInfo(ctx context.Context, req models.ETARequest) (*models.ETAResult, error) {
	if len(req.Route) == 0 {
		return nil, fmt.Errorf("service: %w: route is required", models.ErrValidation)
	}
	return s.estimate(ctx, req, true)
}

func (s *etaService) estimate(ctx context.Context, req models.ETARequest, withRoute bool) (*models.ETAResult, error) {
	if err := validateETARequest(req); err != nil {
		return nil, err
	}
	ref := models.EntityRef{EntityID: req.EntityID, EntityType: req.EntityType}
	fields := logrus.Fields{"entity_id": req.EntityID, "entity_type": req.EntityType}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, ref, req.Destination, withRoute)
		if err != nil {
			s.sink.Warn("eta_cache.get", err, fields)
		} else if cached != nil {
			return cached, nil
		}
	}

	pos, err := s.positions.GetCurrentPosition(ctx, req.EntityID, req.EntityType)
	if err != nil {
		return nil, fmt.Errorf("service: could not load position for eta: %w", err)
	}
	if pos == nil {
		return nil, nil
	}

	result := s.calculate(ctx, req, pos, withRoute)

	if s.cache != nil {
		if err := s.cache.Set(ctx, ref, req.Destination, withRoute, result); err != nil {
			s.sink.Warn("eta_cache.set", err, fields)
		}
	}
	s.logger.WithFields(fields).WithFields(logrus.Fields{
		"service":    "eta",
		"method":     "estimate",
		"minutes":    result.EstimatedDurationMinutes,
		"confidence": result.Confidence,
	}).Debug("ETA calculated")
	return result, nil
}

// calculate собирает скорость, расстояние и поправки. Необязательные сигналы только добавляют уверенности.
func (s *etaService) calculate(ctx context.Context, req models.ETARequest, pos *models.Position, withRoute bool) *models.ETAResult {
	now := s.now()
	fields := logrus.Fields{"entity_id": req.EntityID, "entity_type": req.EntityType}
	start := geo.LatLng{Lat: pos.Latitude, Lon: pos.Longitude}

	factors := models.ETAFactors{CurrentSpeedKmh: pos.Speed, LoadStatus: req.LoadStatus, UsedRoute: withRoute}
	signals := etaSignals{currentSpeed: pos.Speed > 0}

	hist := s.historicalSpeed(ctx, req)
	if hist != nil {
		factors.HistoricalSpeedKmh = hist
		signals.historicalSpeed = true
	}
	speed, usedDefault := BlendSpeed(pos.Speed, hist, s.cfg.Tuning.DefaultSpeedKmh)
	factors.UsedDefaultSpeed = usedDefault

	path := []geo.LatLng{start, req.Destination}
	if withRoute {
		path = RoutePath(start, req.Route, req.Destination)
		signals.route = true
	}

	var (
		segments       []models.SegmentETA
		totalKm        float64
		totalHours     float64
		trafficSum     float64
		trafficSamples int
	)
	for i := 0; i+1 < len(path); i++ {
		from, to := path[i], path[i+1]
		distKm := geo.Distance(from, to)
		factor := 1.0
		if f := s.trafficFactor(ctx, from, to, fields); f != nil {
			factor = *f
			trafficSum += factor
			trafficSamples++
		}
		hours := distKm / (speed / factor)
		totalKm += distKm
		totalHours += hours
		segments = append(segments, models.SegmentETA{
			From:            from,
			To:              to,
			DistanceKm:      distKm,
			TrafficFactor:   factor,
			DurationMinutes: hours * 60,
		})
	}
	if trafficSamples > 0 {
		avg := trafficSum / float64(trafficSamples)
		factors.TrafficFactor = &avg
		signals.traffic = true
	}
	if totalHours > 0 {
		factors.EffectiveSpeedKmh = totalKm / totalHours
	} else {
		factors.EffectiveSpeedKmh = speed
	}

	if m := s.driverFactor(ctx, req.EntityID, fields); m != nil {
		totalHours *= *m
		factors.DriverBehaviorFactor = m
		signals.driverBehavior = true
	}

	duration := time.Duration(totalHours * float64(time.Hour))
	result := &models.ETAResult{
		EntityID:                 req.EntityID,
		EntityType:               req.EntityType,
		Destination:              req.Destination,
		ArrivalTime:              now.Add(duration),
		EstimatedDurationMinutes: totalHours * 60,
		RemainingDistanceKm:      totalKm,
		Confidence:               confidence(signals, totalKm, req.LoadStatus),
		Factors:                  factors,
		CalculatedAt:             now,
	}
	if withRoute {
		result.Segments = segments
	}
	return result
}

func (s *etaService) historicalSpeed(ctx context.Context, req models.ETARequest) *float64 {
	if s.speeds == nil {
		return nil
	}
	since := s.now().Add(-s.cfg.Tuning.HistoricalSpeedWindow)
	avg, err := s.speeds.AverageReportedSpeed(ctx, req.EntityID, req.EntityType, since)
	if err != nil {
		s.sink.Warn("eta.historical_speed", err, logrus.Fields{"entity_id": req.EntityID, "entity_type": req.EntityType})
		return nil
	}
	if avg == nil || *avg <= 0 {
		return nil
	}
	return avg
}

func (s *etaService) trafficFactor(ctx context.Context, from, to geo.LatLng, fields logrus.Fields) *float64 {
	if s.traffic == nil {
		return nil
	}
	f, err := s.traffic.Factor(ctx, from, to)
	if err != nil {
		s.sink.Warn("eta.traffic", err, fields)
		return nil
	}
	if f == nil || *f <= 0 {
		return nil
	}
	clamped := clamp(*f, minTrafficFactor, maxTrafficFactor)
	return &clamped
}

func (s *etaService) driverFactor(ctx context.Context, entityID string, fields logrus.Fields) *float64 {
	if s.drivers == nil {
		return nil
	}
	m, err := s.drivers.Factor(ctx, entityID)
	if err != nil {
		s.sink.Warn("eta.driver_behavior", err, fields)
		return nil
	}
	if m == nil || *m <= 0 {
		return nil
	}
	return m
}

// GetETAForMultipleEntities считает ETA для нескольких сущностей параллельно.
// Ошибка одной сущности попадает в ее элемент результата.
func (s *etaService) GetETAForMultipleEntities(ctx context.Context, refs []models.EntityRef, dest geo.LatLng) ([]*models.EntityETA, error) {
	if !geo.ValidCoordinates(dest.Lat, dest.Lon) {
		return nil, fmt.Errorf("service: %w: destination out of range", models.ErrValidation)
	}
	results := make([]*models.EntityETA, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(multiETAConcurrency)
	for i, ref := range refs {
		g.Go(func() error {
			item := &models.EntityETA{EntityRef: ref}
			res, err := s.GetETA(gctx, models.ETARequest{EntityID: ref.EntityID, EntityType: ref.EntityType, Destination: dest})
			switch {
			case err != nil:
				item.Error = err.Error()
			case res == nil:
				item.Error = "position not found"
			default:
				item.Result = res
			}
			results[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetETAToMultipleDestinations - одна сущность, несколько точек назначения
func (s *etaService) GetETAToMultipleDestinations(ctx context.Context, ref models.EntityRef, dests []geo.LatLng) ([]*models.DestinationETA, error) {
	if err := validateRef(ref.EntityID, ref.EntityType); err != nil {
		return nil, err
	}
	out := make([]*models.DestinationETA, 0, len(dests))
	for _, dest := range dests {
		item := &models.DestinationETA{Destination: dest}
		res, err := s.GetETA(ctx, models.ETARequest{EntityID: ref.EntityID, EntityType: ref.EntityType, Destination: dest})
		switch {
		case err != nil:
			item.Error = err.Error()
		case res == nil:
			return nil, nil
		default:
			item.Result = res
		}
		out = append(out, item)
	}
	return out, nil
}

// GetRemainingDistance - оставшееся расстояние в км, по маршруту если он задан
func (s *etaService) GetRemainingDistance(ctx context.Context, ref models.EntityRef, dest geo.LatLng, route []geo.LatLng) (*float64, error) {
	if err := validateRef(ref.EntityID, ref.EntityType); err != nil {
		return nil, err
	}
	if !geo.ValidCoordinates(dest.Lat, dest.Lon) {
		return nil, fmt.Errorf("service: %w: destination out of range", models.ErrValidation)
	}
	pos, err := s.positions.GetCurrentPosition(ctx, ref.EntityID, ref.EntityType)
	if err != nil {
		return nil, fmt.Errorf("service: could not load position: %w", err)
	}
	if pos == nil {
		return nil, nil
	}
	start := geo.LatLng{Lat: pos.Latitude, Lon: pos.Longitude}
	d := geo.PathLengthKm(RoutePath(start, route, dest))
	return &d, nil
}

// InvalidateETACache удаляет все закешированные ETA сущности
func (s *etaService) InvalidateETACache(ctx context.Context, ref models.EntityRef) (int, error) {
	if err := validateRef(ref.EntityID, ref.EntityType); err != nil {
		return 0, err
	}
	if s.cache == nil {
		return 0, nil
	}
	n, err := s.cache.Invalidate(ctx, ref)
	if err != nil {
		return 0, fmt.Errorf("service: could not invalidate eta cache: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"service":   "eta",
		"method":    "InvalidateETACache",
		"entity_id": ref.EntityID,
		"deleted":   n,
	}).Info("ETA cache invalidated")
	return n, nil
}

func validateETARequest(req models.ETARequest) error {
	if err := validateRef(req.EntityID, req.EntityType); err != nil {
		return err
	}
	if !geo.ValidCoordinates(req.Destination.Lat, req.Destination.Lon) {
		return fmt.Errorf("service: %w: destination out of range", models.ErrValidation)
	}
	for i, p := range req.Route {
		if !geo.ValidCoordinates(p.Lat, p.Lon) {
			return fmt.Errorf("service: %w: route point %d out of range", models.ErrValidation, i)
		}
	}
	return nil
}

// BlendSpeed смешивает текущую и историческую скорость. Второй результат - взята скорость по умолчанию.
func BlendSpeed(current float64, historical *float64, defaultSpeed float64) (float64, bool) {
	switch {
	case historical != nil && current > 0:
		return (current*currentSpeedWeight + *historical*historicalSpeedWeight) / (currentSpeedWeight + historicalSpeedWeight), false
	case historical != nil:
		return *historical, false
	case current > 0:
		return current, false
	}
	return defaultSpeed, true
}

// RoutePath - путь от текущей точки: прыжок к ближайшей точке маршрута, остаток маршрута, точка назначения
func RoutePath(start geo.LatLng, route []geo.LatLng, dest geo.LatLng) []geo.LatLng {
	idx := geo.ClosestPointIndex(start, route)
	if idx < 0 {
		return []geo.LatLng{start, dest}
	}
	path := make([]geo.LatLng, 0, len(route)-idx+2)
	path = append(path, start)
	path = append(path, route[idx:]...)
	if last := path[len(path)-1]; last != dest {
		path = append(path, dest)
	}
	return path
}

type etaSignals struct {
	currentSpeed    bool
	historicalSpeed bool
	traffic         bool
	route           bool
	driverBehavior  bool
}

// confidence - базовые 0.5 плюс фиксированные поправки, результат в [0.5, 0.95]
func confidence(sig etaSignals, distanceKm float64, status models.LoadStatus) float64 {
	c := baseConfidence
	if sig.currentSpeed {
		c += 0.05
	}
	if sig.historicalSpeed {
		c += 0.10
	}
	if sig.traffic {
		c += 0.10
	}
	if sig.route {
		c += 0.05
	}
	if sig.driverBehavior {
		c += 0.05
	}

	switch {
	case distanceKm < shortTripKm:
		c += 0.1
	case distanceKm > longTripKm:
		c -= 0.1
	}

	switch status {
	case models.LoadInTransit, models.LoadLoaded:
		c += 0.05
	case models.LoadAtPickup, models.LoadAtDropoff:
		c += 0.02
	case models.LoadDelayed, models.LoadException:
		c -= 0.1
	}
	return clamp(c, minConfidence, maxConfidence)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
