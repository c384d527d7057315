package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/sos_detection_system/internal/models"
	"github.com/shenikar/sos_detection_system/internal/service"
	"github.com/shenikar/sos_detection_system/pkg/geo"
)

type SignalRepository struct {
	db *pgxpool.Pool
}

func NewSignalRepository(db *pgxpool.Pool) service.SignalRepository {
	return &SignalRepository{
		db: db,
	}
}

// Create сохраняет новый сигнал в бд. Для legacy-сигналов координаты не пишутся.
func (r *SignalRepository) Create(ctx context.Context, signal *models.Signal) error {
	query := `
		INSERT INTO signals (reporter_id, kind, location, accuracy_meters, note, location_text, allergies, captured_at)
		VALUES (
			$1, $2,
			CASE WHEN $2 = 'geo' THEN ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography ELSE NULL END,
			$5, $6, $7, $8, $9
		) RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		signal.ReporterID,
		signal.Kind,
		signal.Longitude,
		signal.Latitude,
		signal.AccuracyMeters,
		signal.Note,
		signal.LocationText,
		signal.Allergies,
		signal.CapturedAt,
	).Scan(&signal.ID, &signal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create signal: %w", err)
	}
	return nil
}

// FindNearby возвращает гео-сигналы в радиусе radiusMeters от точки,
// зафиксированные в окне [since, until]. Расстояние считается по геоиду
// (тип geography), а не в плоской проекции.
func (r *SignalRepository) FindNearby(ctx context.Context, lat, lng float64, radiusMeters int, since, until time.Time) ([]*models.Signal, error) {
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("radius must be positive, got %d: %w", radiusMeters, service.ErrInvalidQuery)
	}
	if since.After(until) {
		return nil, fmt.Errorf("since is after until: %w", service.ErrInvalidQuery)
	}
	if !geo.ValidCoordinate(lat, lng) {
		return nil, fmt.Errorf("invalid coordinate (%f, %f): %w", lat, lng, service.ErrInvalidQuery)
	}

	query := `
		SELECT
			id,
			reporter_id,
			kind,
			ST_Y(location::geometry) as latitude,
			ST_X(location::geometry) as longitude,
			accuracy_meters,
			note,
			allergies,
			read,
			captured_at,
			created_at
		FROM signals
		WHERE
			kind = 'geo'
			AND ST_DWithin(
				location,
				ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
				$3
			)
			AND captured_at BETWEEN $4 AND $5;
	`
	rows, err := r.db.Query(ctx, query, lng, lat, radiusMeters, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby signals: %w", err)
	}
	defer rows.Close()

	signals := make([]*models.Signal, 0)
	for rows.Next() {
		signal := &models.Signal{}
		err := rows.Scan(
			&signal.ID,
			&signal.ReporterID,
			&signal.Kind,
			&signal.Latitude,
			&signal.Longitude,
			&signal.AccuracyMeters,
			&signal.Note,
			&signal.Allergies,
			&signal.Read,
			&signal.CapturedAt,
			&signal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal row in FindNearby: %w", err)
		}
		signals = append(signals, signal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in FindNearby: %w", err)
	}
	return signals, nil
}

// List возвращает сигналы по фильтру, отсортированные по возрастанию captured_at
func (r *SignalRepository) List(ctx context.Context, filter models.SignalFilter, skip, limit int) ([]*models.Signal, error) {
	query := `
		SELECT
			id,
			reporter_id,
			kind,
			COALESCE(ST_Y(location::geometry), 0) as latitude,
			COALESCE(ST_X(location::geometry), 0) as longitude,
			accuracy_meters,
			note,
			location_text,
			allergies,
			read,
			captured_at,
			created_at
		FROM signals
		WHERE
			($1 = '' OR reporter_id = $1)
			AND (NOT $2::boolean OR read = false)
		ORDER BY captured_at ASC
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.db.Query(ctx, query, filter.ReporterID, filter.UnreadOnly, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list signals: %w", err)
	}
	defer rows.Close()

	signals := make([]*models.Signal, 0)
	for rows.Next() {
		signal := &models.Signal{}
		err := rows.Scan(
			&signal.ID,
			&signal.ReporterID,
			&signal.Kind,
			&signal.Latitude,
			&signal.Longitude,
			&signal.AccuracyMeters,
			&signal.Note,
			&signal.LocationText,
			&signal.Allergies,
			&signal.Read,
			&signal.CapturedAt,
			&signal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal row: %w", err)
		}
		signals = append(signals, signal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return signals, nil
}

// MarkRead помечает сигналы прочитанными и возвращает число обновленных строк
func (r *SignalRepository) MarkRead(ctx context.Context, ids []uuid.UUID) (int64, error) {
	query := `
		UPDATE signals SET read = true
		WHERE id = ANY($1) AND read = false;
	`
	cmdTag, err := r.db.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to mark signals read: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// Delete удаляет запись сигнала по ID
func (r *SignalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM signals WHERE id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete signal: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("signal with id %s: %w", id, service.ErrNotFound)
	}
	return nil
}

// GetReporterStats возвращает количество уникальных отправителей за окно времени
func (r *SignalRepository) GetReporterStats(ctx context.Context, minutes int) (int, error) {
	query := `
		SELECT COUNT(DISTINCT reporter_id)
		FROM signals
		WHERE captured_at >= NOW() - ($1 * INTERVAL '1 minute');
	`
	var count int
	err := r.db.QueryRow(ctx, query, minutes).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get reporter stats: %w", err)
	}
	return count, nil
}
