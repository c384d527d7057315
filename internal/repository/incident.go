package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/sos_detection_system/internal/models"
	"github.com/shenikar/sos_detection_system/internal/service"
)

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client) service.IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// Create создает новую запись об инциденте в бд. Центроид записывается
// один раз и больше никогда не обновляется.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (centroid, radius_meters, member_count, first_signal_at, last_signal_at, status)
		VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326), $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.CentroidLng,
		incident.CentroidLat,
		incident.RadiusMeters,
		incident.MemberCount,
		incident.FirstSignalAt,
		incident.LastSignalAt,
		incident.Status,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	incident := &models.Incident{}
	query := `
		SELECT
			id,
			ST_Y(centroid::geometry) as centroid_lat,
			ST_X(centroid::geometry) as centroid_lng,
			radius_meters,
			member_count,
			first_signal_at,
			last_signal_at,
			status,
			created_at,
			updated_at
		FROM incidents
		WHERE id = $1;
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&incident.ID,
		&incident.CentroidLat,
		&incident.CentroidLng,
		&incident.RadiusMeters,
		&incident.MemberCount,
		&incident.FirstSignalAt,
		&incident.LastSignalAt,
		&incident.Status,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// Update обновляет только счетчик участников и время последнего сигнала.
// Колонка centroid намеренно не входит в запрос.
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	query := `
		UPDATE incidents SET
			member_count = $1,
			last_signal_at = $2,
			updated_at = NOW()
		WHERE id = $3;
		`
	cmdTag, err := r.db.Exec(ctx, query,
		incident.MemberCount,
		incident.LastSignalAt,
		incident.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for update: %w", incident.ID, service.ErrNotFound)
	}
	return nil
}

// FindActiveNear находит активные инциденты, чей центроид лежит в радиусе
// radiusMeters от точки. Результат упорядочен по возрастанию расстояния,
// при равенстве - по времени создания.
func (r *IncidentRepository) FindActiveNear(ctx context.Context, lat, lng float64, radiusMeters int) ([]*models.Incident, error) {
	query := `
		SELECT
			id,
			ST_Y(centroid::geometry) as centroid_lat,
			ST_X(centroid::geometry) as centroid_lng,
			radius_meters,
			member_count,
			first_signal_at,
			last_signal_at,
			status,
			created_at,
			updated_at
		FROM incidents
		WHERE
			status = 'active'
			AND ST_DWithin(
				centroid,
				ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
				$3
			)
		ORDER BY
			ST_Distance(centroid, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) ASC,
			created_at ASC;
		`
	rows, err := r.db.Query(ctx, query, lng, lat, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("failed to find active incidents near point: %w", err)
	}
	defer rows.Close()
	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident := &models.Incident{}
		err := rows.Scan(
			&incident.ID,
			&incident.CentroidLat,
			&incident.CentroidLng,
			&incident.RadiusMeters,
			&incident.MemberCount,
			&incident.FirstSignalAt,
			&incident.LastSignalAt,
			&incident.Status,
			&incident.CreatedAt,
			&incident.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row in FindActiveNear: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in FindActiveNear: %w", err)
	}
	return incidents, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (r *IncidentRepository) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	// рассчитываем смещение
	offset := (page - 1) * pageSize

	query := `
		SELECT
			id,
			ST_Y(centroid::geometry) as centroid_lat,
			ST_X(centroid::geometry) as centroid_lng,
			radius_meters,
			member_count,
			first_signal_at,
			last_signal_at,
			status,
			created_at,
			updated_at
		FROM incidents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident := &models.Incident{}
		err := rows.Scan(
			&incident.ID,
			&incident.CentroidLat,
			&incident.CentroidLng,
			&incident.RadiusMeters,
			&incident.MemberCount,
			&incident.FirstSignalAt,
			&incident.LastSignalAt,
			&incident.Status,
			&incident.CreatedAt,
			&incident.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// Resolve переводит активный инцидент в статус 'resolved'
func (r *IncidentRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE incidents SET
			status = 'resolved',
			updated_at = NOW()
		WHERE id = $1 AND status = 'active';
	`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to resolve incident: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("active incident with id %s not found for resolve: %w", id, service.ErrNotFound)
	}
	return nil
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	key := fmt.Sprintf("incident:%s", id.String())
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент в Redis
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	key := fmt.Sprintf("incident:%s", incident.ID.String())
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	// Устанавливаем срок жизни кэша, например, 5 минут
	if err := r.redisClient.Set(ctx, key, val, 5*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	key := fmt.Sprintf("incident:%s", id.String())
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
