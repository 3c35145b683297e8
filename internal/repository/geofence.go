package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shenikar/fleet_location_core/internal/geo"
	"github.com/shenikar/fleet_location_core/internal/models"
)

const geofenceColumns = `id, name, geofence_type, entity_type, entity_id, center_lat, center_lon, radius_meters,
	vertices, centerline, width_meters, is_active, starts_at, ends_at, created_at, updated_at`

// GeofenceRepository хранит геозоны и журнал событий. Реализует service.GeofenceRepository
// и service.GeofenceStore.
type GeofenceRepository struct {
	db      *sql.DB
	postgis bool
}

func NewGeofenceRepository(db *sql.DB, postgis bool) *GeofenceRepository {
	return &GeofenceRepository{
		db:      db,
		postgis: postgis,
	}
}

// geometryColumns раскладывает геометрию по плоским колонкам таблицы
type geometryColumns struct {
	centerLat, centerLon, radius sql.NullFloat64
	vertices, centerline         []byte
	width                        sql.NullFloat64
}

func flattenGeometry(g models.Geometry) (geometryColumns, error) {
	var cols geometryColumns
	var err error
	switch v := g.(type) {
	case models.CircleGeometry:
		cols.centerLat = sql.NullFloat64{Float64: v.Center.Lat, Valid: true}
		cols.centerLon = sql.NullFloat64{Float64: v.Center.Lon, Valid: true}
		cols.radius = sql.NullFloat64{Float64: v.RadiusMeters, Valid: true}
	case models.PolygonGeometry:
		cols.vertices, err = json.Marshal(v.Vertices)
	case models.CorridorGeometry:
		cols.centerline, err = json.Marshal(v.Centerline)
		cols.width = sql.NullFloat64{Float64: v.WidthMeters, Valid: true}
	default:
		err = fmt.Errorf("%w: unsupported geometry %T", models.ErrValidation, g)
	}
	return cols, err
}

func scanGeofence(row rowScanner) (*models.Geofence, error) {
	g := &models.Geofence{}
	var (
		geofenceType, entityType string
		entityID                 sql.NullString
		cols                     geometryColumns
		startsAt, endsAt         sql.NullTime
	)
	err := row.Scan(
		&g.ID,
		&g.Name,
		&geofenceType,
		&entityType,
		&entityID,
		&cols.centerLat,
		&cols.centerLon,
		&cols.radius,
		&cols.vertices,
		&cols.centerline,
		&cols.width,
		&g.IsActive,
		&startsAt,
		&endsAt,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.EntityType = models.EntityType(entityType)
	g.EntityID = entityID.String
	if startsAt.Valid {
		g.StartsAt = &startsAt.Time
	}
	if endsAt.Valid {
		g.EndsAt = &endsAt.Time
	}
	// Битая геометрия не прерывает выборку, ошибка едет вместе с зоной
	g.Geometry, g.GeometryErr = buildGeometry(models.GeofenceType(geofenceType), cols)
	return g, nil
}

func buildGeometry(t models.GeofenceType, cols geometryColumns) (models.Geometry, error) {
	var (
		center               *geo.LatLng
		vertices, centerline []geo.LatLng
	)
	if cols.centerLat.Valid && cols.centerLon.Valid {
		center = &geo.LatLng{Lat: cols.centerLat.Float64, Lon: cols.centerLon.Float64}
	}
	if len(cols.vertices) > 0 {
		if err := json.Unmarshal(cols.vertices, &vertices); err != nil {
			return nil, fmt.Errorf("%w: malformed vertices: %v", models.ErrValidation, err)
		}
	}
	if len(cols.centerline) > 0 {
		if err := json.Unmarshal(cols.centerline, &centerline); err != nil {
			return nil, fmt.Errorf("%w: malformed centerline: %v", models.ErrValidation, err)
		}
	}
	return models.NewGeometry(t, center, cols.radius.Float64, vertices, centerline, cols.width.Float64)
}

func scanGeofences(rows *sql.Rows) ([]*models.Geofence, error) {
	defer rows.Close()
	out := make([]*models.Geofence, 0)
	for rows.Next() {
		g, err := scanGeofence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan geofence row: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error geofence iteration: %w", err)
	}
	return out, nil
}

// Create создает новую геозону в бд
func (r *GeofenceRepository) Create(ctx context.Context, g *models.Geofence) error {
	cols, err := flattenGeometry(g.Geometry)
	if err != nil {
		return err
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	bounds := g.Geometry.Bounds()

	query := `
		INSERT INTO geofences (id, name, geofence_type, entity_type, entity_id, center_lat, center_lon, radius_meters,
			vertices, centerline, width_meters, min_lat, min_lon, max_lat, max_lon, is_active, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at;
	`
	err = r.db.QueryRowContext(ctx, query,
		g.ID,
		g.Name,
		string(g.Type()),
		string(g.EntityType),
		nullString(g.EntityID),
		cols.centerLat,
		cols.centerLon,
		cols.radius,
		nullBytes(cols.vertices),
		nullBytes(cols.centerline),
		cols.width,
		bounds.MinLat,
		bounds.MinLon,
		bounds.MaxLat,
		bounds.MaxLon,
		g.IsActive,
		nullTime(g.StartsAt),
		nullTime(g.EndsAt),
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create geofence: %w", err)
	}
	return nil
}

// GetByID возвращает геозону по UUID, nil если ее нет
func (r *GeofenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Geofence, error) {
	query := `SELECT ` + geofenceColumns + ` FROM geofences WHERE id = $1`
	g, err := scanGeofence(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get geofence by id: %w", err)
	}
	return g, nil
}

// GetByIDs - пакетная выборка, отсутствующие id пропускаются
func (r *GeofenceRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Geofence, error) {
	if len(ids) == 0 {
		return []*models.Geofence{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT ` + geofenceColumns + ` FROM geofences WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get geofences by ids: %w", err)
	}
	return scanGeofences(rows)
}

// List возвращает список геозон с пагинацией
func (r *GeofenceRepository) List(ctx context.Context, page, pageSize int) ([]*models.Geofence, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + geofenceColumns + ` FROM geofences ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list geofences: %w", err)
	}
	return scanGeofences(rows)
}

// Deactivate снимает флаг активности
func (r *GeofenceRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE geofences SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate geofence: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("geofence with id %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// FindNearby - активные в момент filter.At зоны, чей ограничивающий прямоугольник
// ближе radiusMeters к точке. Точная проверка формы делается отдельно.
func (r *GeofenceRepository) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, filter models.GeofenceFilter) ([]*models.Geofence, error) {
	at := filter.At
	if at.IsZero() {
		at = time.Now()
	}
	box := geo.BoundsOf([]geo.LatLng{{Lat: lat, Lon: lon}}).Expand(radiusMeters)

	query := `
		SELECT ` + geofenceColumns + `
		FROM geofences
		WHERE
			is_active
			AND entity_type = $1
			AND ($2 = '' OR entity_id IS NULL OR entity_id = $2)
			AND (starts_at IS NULL OR starts_at <= $3)
			AND (ends_at IS NULL OR ends_at >= $3)
			AND max_lat >= $4 AND min_lat <= $5
			AND max_lon >= $6 AND min_lon <= $7
		ORDER BY created_at, id;
	`
	rows, err := r.db.QueryContext(ctx, query,
		string(filter.EntityType),
		filter.EntityID,
		at,
		box.MinLat,
		box.MaxLat,
		box.MinLon,
		box.MaxLon,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby geofences: %w", err)
	}
	return scanGeofences(rows)
}

// ContainsPoint - проверка формы средствами PostGIS. Полигоны и режим без PostGIS
// считаются в процессе по загруженной геометрии.
func (r *GeofenceRepository) ContainsPoint(ctx context.Context, geofenceID uuid.UUID, lat, lon float64) (bool, error) {
	if r.postgis {
		query := `
			SELECT CASE geofence_type
				WHEN 'circle' THEN ST_DWithin(
					ST_SetSRID(ST_MakePoint(center_lon, center_lat), 4326)::geography,
					ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography,
					radius_meters
				)
				WHEN 'corridor' THEN ST_DWithin(
					ST_SetSRID(ST_MakeLine(ARRAY(
						SELECT ST_MakePoint((p->>'longitude')::float8, (p->>'latitude')::float8)
						FROM jsonb_array_elements(centerline) WITH ORDINALITY AS t(p, n)
						ORDER BY n
					)), 4326)::geography,
					ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography,
					width_meters / 2
				)
				ELSE NULL
			END
			FROM geofences
			WHERE id = $1;
		`
		var inside sql.NullBool
		err := r.db.QueryRowContext(ctx, query, geofenceID, lon, lat).Scan(&inside)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, fmt.Errorf("geofence with id %s: %w", geofenceID, models.ErrNotFound)
			}
			return false, fmt.Errorf("failed to check geofence containment: %w", err)
		}
		if inside.Valid {
			return inside.Bool, nil
		}
	}

	g, err := r.GetByID(ctx, geofenceID)
	if err != nil {
		return false, err
	}
	if g == nil {
		return false, fmt.Errorf("geofence with id %s: %w", geofenceID, models.ErrNotFound)
	}
	if g.GeometryErr != nil {
		return false, g.GeometryErr
	}
	return g.Geometry.Contains(lat, lon), nil
}

// SaveEvent добавляет событие в журнал
func (r *GeofenceRepository) SaveEvent(ctx context.Context, e *models.GeofenceEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal event metadata: %w", err)
	}

	query := `
		INSERT INTO geofence_events (id, geofence_id, entity_id, entity_type, event_type, latitude, longitude, "timestamp", metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		e.GeofenceID,
		e.EntityID,
		string(e.EntityType),
		string(e.EventType),
		e.Latitude,
		e.Longitude,
		e.Timestamp,
		metaJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save geofence event: %w", err)
	}
	return nil
}

// LatestEvent - последнее событие пары (сущность, зона), nil если событий не было
func (r *GeofenceRepository) LatestEvent(ctx context.Context, ref models.EntityRef, geofenceID uuid.UUID) (*models.GeofenceEvent, error) {
	query := `
		SELECT id, geofence_id, entity_id, entity_type, event_type, latitude, longitude, "timestamp", metadata
		FROM geofence_events
		WHERE entity_id = $1 AND entity_type = $2 AND geofence_id = $3
		ORDER BY "timestamp" DESC, created_at DESC
		LIMIT 1;
	`
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, ref.EntityID, string(ref.EntityType), geofenceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest geofence event: %w", err)
	}
	return e, nil
}

// ListEvents - события сущности, новые первыми
func (r *GeofenceRepository) ListEvents(ctx context.Context, ref models.EntityRef, limit int) ([]*models.GeofenceEvent, error) {
	query := `
		SELECT id, geofence_id, entity_id, entity_type, event_type, latitude, longitude, "timestamp", metadata
		FROM geofence_events
		WHERE entity_id = $1 AND entity_type = $2
		ORDER BY "timestamp" DESC, created_at DESC
		LIMIT $3;
	`
	rows, err := r.db.QueryContext(ctx, query, ref.EntityID, string(ref.EntityType), limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list geofence events: %w", err)
	}
	defer rows.Close()

	out := make([]*models.GeofenceEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan geofence event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error event iteration: %w", err)
	}
	return out, nil
}

func scanEvent(row rowScanner) (*models.GeofenceEvent, error) {
	e := &models.GeofenceEvent{}
	var entityType, eventType string
	var meta []byte
	if err := row.Scan(
		&e.ID,
		&e.GeofenceID,
		&e.EntityID,
		&entityType,
		&eventType,
		&e.Latitude,
		&e.Longitude,
		&e.Timestamp,
		&meta,
	); err != nil {
		return nil, err
	}
	e.EntityType = models.EntityType(entityType)
	e.EventType = models.GeofenceEventType(eventType)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &e.Metadata); err != nil {
			return nil, fmt.Errorf("malformed event metadata: %w", err)
		}
	}
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
