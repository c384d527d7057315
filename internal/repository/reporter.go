package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/sos_detection_system/internal/models"
	"github.com/shenikar/sos_detection_system/internal/service"
)

type ReporterRepository struct {
	db *pgxpool.Pool
}

func NewReporterRepository(db *pgxpool.Pool) service.ReporterRepository {
	return &ReporterRepository{
		db: db,
	}
}

// GetProfile возвращает профиль пользователя или (nil, nil), если профиль
// не найден: отсутствие профиля не ошибка, снимок данных просто будет пустым.
func (r *ReporterRepository) GetProfile(ctx context.Context, reporterID string) (*models.ReporterProfile, error) {
	profile := &models.ReporterProfile{}
	query := `
		SELECT reporter_id, name, mobile, age, date_of_birth, allergies
		FROM reporters
		WHERE reporter_id = $1;
	`
	err := r.db.QueryRow(ctx, query, reporterID).Scan(
		&profile.ReporterID,
		&profile.Name,
		&profile.Mobile,
		&profile.Age,
		&profile.DateOfBirth,
		&profile.Allergies,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reporter profile: %w", err)
	}
	return profile, nil
}
