package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shenikar/fleet_location_core/internal/geo"
	"github.com/shenikar/fleet_location_core/internal/models"
	"github.com/shenikar/fleet_location_core/internal/service"
)

const positionColumns = `entity_id, entity_type, latitude, longitude, heading, speed, accuracy, source, "timestamp", updated_at`

type PositionRepository struct {
	db         *sql.DB
	postgis    bool
	thresholds models.SignificanceThresholds
}

// NewPositionRepository - postgis включает пространственный поиск на стороне БД
func NewPositionRepository(db *sql.DB, postgis bool, thresholds models.SignificanceThresholds) service.PositionRepository {
	return &PositionRepository{
		db:         db,
		postgis:    postgis,
		thresholds: thresholds,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (*models.Position, error) {
	p := &models.Position{}
	var entityType, source string
	err := row.Scan(
		&p.EntityID,
		&entityType,
		&p.Latitude,
		&p.Longitude,
		&p.Heading,
		&p.Speed,
		&p.Accuracy,
		&source,
		&p.Timestamp,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.EntityType = models.EntityType(entityType)
	p.Source = models.Source(source)
	return p, nil
}

// GetCurrent возвращает текущее положение, nil если записи нет
func (r *PositionRepository) GetCurrent(ctx context.Context, entityID string, entityType models.EntityType) (*models.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM current_positions WHERE entity_id = $1 AND entity_type = $2`
	pos, err := scanPosition(r.db.QueryRowContext(ctx, query, entityID, string(entityType)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current position: %w", err)
	}
	return pos, nil
}

// Upsert в одной транзакции читает текущую запись под блокировкой, при значимом изменении
// переносит ее в историю и записывает новое положение
func (r *PositionRepository) Upsert(ctx context.Context, pos *models.Position) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	archived, err := r.upsertTx(ctx, tx, pos)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit position upsert: %w", err)
	}
	return archived, nil
}

// BulkUpsert применяет список по порядку в одной транзакции: все или ничего
func (r *PositionRepository) BulkUpsert(ctx context.Context, positions []*models.Position) ([]bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	archived := make([]bool, len(positions))
	for i, pos := range positions {
		a, err := r.upsertTx(ctx, tx, pos)
		if err != nil {
			return nil, fmt.Errorf("bulk upsert item %d: %w", i, err)
		}
		archived[i] = a
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bulk upsert: %w", err)
	}
	return archived, nil
}

func (r *PositionRepository) upsertTx(ctx context.Context, tx *sql.Tx, pos *models.Position) (bool, error) {
	selectQuery := `SELECT ` + positionColumns + ` FROM current_positions WHERE entity_id = $1 AND entity_type = $2 FOR UPDATE`
	prev, err := scanPosition(tx.QueryRowContext(ctx, selectQuery, pos.EntityID, string(pos.EntityType)))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to lock current position: %w", err)
	}

	// История упорядочена по времени: обновление старше сохраненного не принимается
	if prev != nil && pos.Timestamp.Before(prev.Timestamp) {
		return false, fmt.Errorf("%w: %s update at %s, stored %s", models.ErrStaleUpdate,
			pos.Key(), pos.Timestamp.Format(time.RFC3339Nano), prev.Timestamp.Format(time.RFC3339Nano))
	}

	archived := r.thresholds.IsSignificant(prev, pos)
	// Значимое обновление с тем же временем дало бы в истории две строки с одной меткой
	if archived && !pos.Timestamp.After(prev.Timestamp) {
		return false, fmt.Errorf("%w: %s significant update at %s repeats stored timestamp", models.ErrStaleUpdate,
			pos.Key(), pos.Timestamp.Format(time.RFC3339Nano))
	}
	if archived {
		historyQuery := `
			INSERT INTO position_history (entity_id, entity_type, latitude, longitude, heading, speed, accuracy, source, "timestamp")
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
		`
		_, err := tx.ExecContext(ctx, historyQuery,
			prev.EntityID,
			string(prev.EntityType),
			prev.Latitude,
			prev.Longitude,
			prev.Heading,
			prev.Speed,
			prev.Accuracy,
			string(prev.Source),
			prev.Timestamp,
		)
		if err != nil {
			return false, fmt.Errorf("failed to archive position: %w", err)
		}
	}

	upsertQuery := `
		INSERT INTO current_positions (entity_id, entity_type, latitude, longitude, heading, speed, accuracy, source, "timestamp", updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (entity_id, entity_type) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			heading = EXCLUDED.heading,
			speed = EXCLUDED.speed,
			accuracy = EXCLUDED.accuracy,
			source = EXCLUDED.source,
			"timestamp" = EXCLUDED."timestamp",
			updated_at = NOW()
		RETURNING updated_at;
	`
	err = tx.QueryRowContext(ctx, upsertQuery,
		pos.EntityID,
		string(pos.EntityType),
		pos.Latitude,
		pos.Longitude,
		pos.Heading,
		pos.Speed,
		pos.Accuracy,
		string(pos.Source),
		pos.Timestamp,
	).Scan(&pos.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to upsert current position: %w", err)
	}
	return archived, nil
}

// GetOrCreateDefault создает запись из def, только если текущей нет. Возвращает текущую запись.
func (r *PositionRepository) GetOrCreateDefault(ctx context.Context, def *models.Position) (*models.Position, bool, error) {
	query := `
		INSERT INTO current_positions (entity_id, entity_type, latitude, longitude, heading, speed, accuracy, source, "timestamp", updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (entity_id, entity_type) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		def.EntityID,
		string(def.EntityType),
		def.Latitude,
		def.Longitude,
		def.Heading,
		def.Speed,
		def.Accuracy,
		string(def.Source),
		def.Timestamp,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create default position: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	pos, err := r.GetCurrent(ctx, def.EntityID, def.EntityType)
	if err != nil {
		return nil, false, err
	}
	if pos == nil {
		return nil, false, fmt.Errorf("position %s vanished after create: %w", def.Key(), models.ErrNotFound)
	}
	return pos, affected > 0, nil
}

// Delete удаляет текущее положение. История остается.
func (r *PositionRepository) Delete(ctx context.Context, entityID string, entityType models.EntityType) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM current_positions WHERE entity_id = $1 AND entity_type = $2`, entityID, string(entityType))
	if err != nil {
		return false, fmt.Errorf("failed to delete position: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// Nearby ищет сущности в радиусе. Без PostGIS расстояние считается в процессе
// по всем записям нужного типа.
func (r *PositionRepository) Nearby(ctx context.Context, q models.NearbyQuery) ([]*models.EntityPosition, error) {
	if r.postgis {
		return r.nearbyPostGIS(ctx, q)
	}
	return r.nearbyInProcess(ctx, q)
}

func (r *PositionRepository) nearbyPostGIS(ctx context.Context, q models.NearbyQuery) ([]*models.EntityPosition, error) {
	query := `
		SELECT ` + positionColumns + `,
			ST_Distance(
				ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography,
				ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
			) AS distance_meters
		FROM current_positions
		WHERE
			($3 = '' OR entity_type = $3)
			AND ST_DWithin(
				ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography,
				ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
				$4
			)
		ORDER BY distance_meters
		LIMIT $5;
	`
	radiusMeters := geo.MilesToKm(q.RadiusMiles) * 1000
	rows, err := r.db.QueryContext(ctx, query, q.Longitude, q.Latitude, string(q.EntityType), radiusMeters, limitArg(q.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby positions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.EntityPosition, 0)
	for rows.Next() {
		p := &models.Position{}
		var entityType, source string
		var distanceMeters float64
		if err := rows.Scan(
			&p.EntityID, &entityType, &p.Latitude, &p.Longitude, &p.Heading, &p.Speed,
			&p.Accuracy, &source, &p.Timestamp, &p.UpdatedAt, &distanceMeters,
		); err != nil {
			return nil, fmt.Errorf("failed to scan nearby position: %w", err)
		}
		p.EntityType = models.EntityType(entityType)
		p.Source = models.Source(source)
		out = append(out, &models.EntityPosition{Position: *p, DistanceMiles: geo.KmToMiles(distanceMeters / 1000)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error nearby iteration: %w", err)
	}
	return out, nil
}

func (r *PositionRepository) nearbyInProcess(ctx context.Context, q models.NearbyQuery) ([]*models.EntityPosition, error) {
	query := `SELECT ` + positionColumns + ` FROM current_positions WHERE ($1 = '' OR entity_type = $1)`
	rows, err := r.db.QueryContext(ctx, query, string(q.EntityType))
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate positions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.EntityPosition, 0)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate position: %w", err)
		}
		miles := geo.KmToMiles(geo.DistanceKm(q.Latitude, q.Longitude, p.Latitude, p.Longitude))
		if miles <= q.RadiusMiles {
			out = append(out, &models.EntityPosition{Position: *p, DistanceMiles: miles})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error candidate iteration: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceMiles < out[j].DistanceMiles })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// History возвращает архив положений в окне по возрастанию времени
func (r *PositionRepository) History(ctx context.Context, q models.HistoryQuery) ([]*models.Position, error) {
	query := `
		SELECT entity_id, entity_type, latitude, longitude, heading, speed, accuracy, source, "timestamp", archived_at
		FROM position_history
		WHERE entity_id = $1 AND entity_type = $2 AND "timestamp" >= $3 AND "timestamp" <= $4
		ORDER BY "timestamp" ASC, id ASC
		LIMIT $5 OFFSET $6;
	`
	rows, err := r.db.QueryContext(ctx, query, q.EntityID, string(q.EntityType), q.Start, q.End, limitArg(q.Limit), q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query position history: %w", err)
	}
	defer rows.Close()

	history := make([]*models.Position, 0)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error history iteration: %w", err)
	}
	return history, nil
}

// AverageReportedSpeed - средняя ненулевая скорость из истории начиная с since, nil если данных нет
func (r *PositionRepository) AverageReportedSpeed(ctx context.Context, entityID string, entityType models.EntityType, since time.Time) (*float64, error) {
	query := `
		SELECT AVG(speed)
		FROM position_history
		WHERE entity_id = $1 AND entity_type = $2 AND "timestamp" >= $3 AND speed > 0;
	`
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, query, entityID, string(entityType), since).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to get average speed: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// limitArg - 0 означает без ограничения (LIMIT NULL)
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
