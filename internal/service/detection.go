package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/sos_detection_system/internal/config"
	"github.com/shenikar/sos_detection_system/internal/models"
	"github.com/shenikar/sos_detection_system/internal/webhook"
	"github.com/shenikar/sos_detection_system/pkg/geo"
	"github.com/sirupsen/logrus"
)

// SignalRepository определяет контракт для работы с хранилищем сигналов.
// FindNearby - пространственно-временной запрос близости (Proximity Index).
type SignalRepository interface {
	Create(ctx context.Context, signal *models.Signal) error
	FindNearby(ctx context.Context, lat, lng float64, radiusMeters int, since, until time.Time) ([]*models.Signal, error)
	List(ctx context.Context, filter models.SignalFilter, skip, limit int) ([]*models.Signal, error)
	MarkRead(ctx context.Context, ids []uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetReporterStats(ctx context.Context, minutes int) (int, error)
}

// IncidentRepository определяет контракт для работы с хранилищем инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	Update(ctx context.Context, incident *models.Incident) error
	FindActiveNear(ctx context.Context, lat, lng float64, radiusMeters int) ([]*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	Resolve(ctx context.Context, id uuid.UUID) error
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// ReporterRepository определяет контракт для чтения профилей пользователей.
// GetProfile возвращает (nil, nil), если профиль не найден.
type ReporterRepository interface {
	GetProfile(ctx context.Context, reporterID string) (*models.ReporterProfile, error)
}

// SOSPayload - входные данные одного сигнала SOS
type SOSPayload struct {
	Latitude       *float64
	Longitude      *float64
	AccuracyMeters float64
	Note           string
	// LocationText - свободный текст для legacy-сигналов без координат
	LocationText string
	// Allergies из запроса имеет приоритет над значением из профиля
	Allergies  string
	CapturedAt time.Time
}

// DetectionOutcome - результат обработки одного сигнала
type DetectionOutcome struct {
	Signal                *models.Signal
	MassIncidentTriggered bool
	MassIncidentID        *uuid.UUID
	// ClusteringSkipped - сигнал сохранен, но кластеризация не выполнена
	ClusteringSkipped bool
}

// DetectionService определяет контракт бизнес-логики обнаружения массовых инцидентов
type DetectionService interface {
	ReportSOS(ctx context.Context, reporterID string, payload SOSPayload) (*DetectionOutcome, error)
	ListSignals(ctx context.Context, filter models.SignalFilter, skip, limit int) ([]*models.Signal, error)
	MarkSignalsRead(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteSignal(ctx context.Context, id uuid.UUID) error
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	ResolveIncident(ctx context.Context, id uuid.UUID) error
	GetStats(ctx context.Context) (int, error)
}

type detectionService struct {
	signals   SignalRepository
	incidents IncidentRepository
	reporters ReporterRepository
	tracker   *IncidentTracker
	logger    *logrus.Logger
	cfg       *config.Config
}

// NewDetectionService создает сервис обнаружения массовых инцидентов
func NewDetectionService(signals SignalRepository, incidents IncidentRepository, reporters ReporterRepository, tracker *IncidentTracker, logger *logrus.Logger, cfg *config.Config) DetectionService {
	return &detectionService{
		signals:   signals,
		incidents: incidents,
		reporters: reporters,
		tracker:   tracker,
		logger:    logger,
		cfg:       cfg,
	}
}

// ReportSOS обрабатывает один сигнал: валидация -> снимок данных о здоровье ->
// сохранение сигнала -> запрос близости -> трекер инцидентов.
// Сохранение сигнала всегда предшествует кластеризации и не откатывается
// из-за ее сбоев: ни один сигнал бедствия не должен быть потерян.
func (s *detectionService) ReportSOS(ctx context.Context, reporterID string, payload SOSPayload) (*DetectionOutcome, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "detection",
		"method":      "ReportSOS",
		"reporter_id": reporterID,
	})

	if reporterID == "" {
		log.Warn("SOS without resolvable reporter")
		return nil, fmt.Errorf("service: resolve reporter: %w", ErrUnauthenticated)
	}

	signal, err := s.buildSignal(ctx, reporterID, payload, log)
	if err != nil {
		return nil, err
	}

	// Шаг 4: сохранение сигнала. Его сбой фатален для всего запроса.
	if err := s.signals.Create(ctx, signal); err != nil {
		log.WithError(err).Error("Failed to persist signal")
		return nil, fmt.Errorf("service: persist signal: %w", ErrPersistence)
	}
	log = log.WithField("signal_id", signal.ID)
	log.Info("Signal persisted")

	outcome := &DetectionOutcome{Signal: signal}

	// Legacy-сигналы без координат не участвуют в кластеризации
	if signal.Kind == models.SignalKindLegacyText {
		return outcome, nil
	}

	now := time.Now().UTC()
	since := now.Add(-time.Duration(s.cfg.MassWindowMinutes) * time.Minute)

	// Сигнал уже записан, поэтому кластеризация ограничена по времени:
	// зависшее хранилище деградирует до частичного успеха, а не держит запрос
	clusterCtx, cancel := context.WithTimeout(ctx, s.cfg.ClusterTimeout)
	defer cancel()

	cluster, err := s.signals.FindNearby(clusterCtx, signal.Latitude, signal.Longitude, s.cfg.MassRadiusMeters, since, now)
	if err != nil {
		// InvalidQuery - ошибка программиста, не деградируем
		if isInvalidQuery(err) {
			return nil, err
		}
		log.WithError(err).Error("Proximity query failed, clustering skipped")
		outcome.ClusteringSkipped = true
		return outcome, nil
	}

	incident, triggered, err := s.tracker.Observe(clusterCtx, signal, cluster, now)
	if err != nil {
		log.WithError(err).Error("Incident tracker failed, clustering skipped")
		outcome.ClusteringSkipped = true
		return outcome, nil
	}

	outcome.MassIncidentTriggered = triggered
	if incident != nil {
		id := incident.ID
		outcome.MassIncidentID = &id
	}
	return outcome, nil
}

// buildSignal валидирует нагрузку и собирает модель сигнала со снимком
// данных о здоровье. Нагрузка без корректных координат, но со свободным
// текстом, деградирует до legacy-сигнала.
func (s *detectionService) buildSignal(ctx context.Context, reporterID string, payload SOSPayload, log *logrus.Entry) (*models.Signal, error) {
	signal := &models.Signal{
		ReporterID:     reporterID,
		AccuracyMeters: payload.AccuracyMeters,
		Note:           payload.Note,
		CapturedAt:     payload.CapturedAt,
	}
	if signal.CapturedAt.IsZero() {
		signal.CapturedAt = time.Now().UTC()
	}

	switch {
	case payload.Latitude != nil && payload.Longitude != nil && geo.ValidCoordinate(*payload.Latitude, *payload.Longitude):
		signal.Kind = models.SignalKindGeo
		signal.Latitude = *payload.Latitude
		signal.Longitude = *payload.Longitude
	case payload.LocationText != "":
		log.Info("Payload without valid coordinates, falling back to legacy text report")
		signal.Kind = models.SignalKindLegacyText
		signal.LocationText = payload.LocationText
	default:
		log.Warn("Payload has neither valid coordinates nor location text")
		return nil, fmt.Errorf("service: signal payload: %w", ErrValidation)
	}

	signal.Allergies = s.snapshotAllergies(ctx, reporterID, payload.Allergies, log)
	return signal, nil
}

// snapshotAllergies фиксирует аллергии на момент сигнала. Значение из запроса
// имеет приоритет; отсутствующий профиль дает пустую строку и никогда не ошибку.
func (s *detectionService) snapshotAllergies(ctx context.Context, reporterID, override string, log *logrus.Entry) string {
	if override != "" {
		return override
	}
	profile, err := s.reporters.GetProfile(ctx, reporterID)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch reporter profile, allergies snapshot empty")
		return ""
	}
	if profile == nil {
		return ""
	}
	return profile.Allergies
}

// ListSignals возвращает сигналы по фильтру, отсортированные по времени фиксации
func (s *detectionService) ListSignals(ctx context.Context, filter models.SignalFilter, skip, limit int) ([]*models.Signal, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "detection",
		"method":  "ListSignals",
		"skip":    skip,
		"limit":   limit,
	})

	signals, err := s.signals.List(ctx, filter, skip, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list signals from repository")
		return nil, fmt.Errorf("service: could not list signals: %w", err)
	}

	log.WithField("count", len(signals)).Info("Signals listed successfully")
	return signals, nil
}

// MarkSignalsRead помечает сигналы прочитанными, возвращает число обновленных
func (s *detectionService) MarkSignalsRead(ctx context.Context, ids []uuid.UUID) (int64, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "detection",
		"method":  "MarkSignalsRead",
		"count":   len(ids),
	})

	if len(ids) == 0 {
		return 0, nil
	}

	updated, err := s.signals.MarkRead(ctx, ids)
	if err != nil {
		log.WithError(err).Error("Failed to mark signals read")
		return 0, fmt.Errorf("service: could not mark signals read: %w", err)
	}

	log.WithField("updated", updated).Info("Signals marked read")
	return updated, nil
}

// DeleteSignal удаляет запись сигнала
func (s *detectionService) DeleteSignal(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "detection",
		"method":    "DeleteSignal",
		"signal_id": id,
	})

	if err := s.signals.Delete(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to delete signal")
		return fmt.Errorf("service: could not delete signal: %w", err)
	}

	log.Info("Signal deleted")
	return nil
}

// GetIncident получает инцидент по ID, сначала из кеша, затем из БД
func (s *detectionService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "detection",
		"method":      "GetIncident",
		"incident_id": id,
	})

	cached, err := s.incidents.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Incident cache read failed, falling back to DB")
	}
	if cached != nil {
		log.Debug("Incident served from cache")
		return cached, nil
	}

	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.incidents.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *detectionService) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "detection",
		"method":    "ListIncidents",
		"page":      page,
		"page_size": pageSize,
	})

	incidents, err := s.incidents.ListIncidents(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// ResolveIncident переводит инцидент в статус resolved. Это единственный
// способ закрыть инцидент: автоматического устаревания нет.
func (s *detectionService) ResolveIncident(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "detection",
		"method":      "ResolveIncident",
		"incident_id": id,
	})

	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to resolve a non-existent incident")
		return fmt.Errorf("service: incident %s not found for resolve: %w", id, err)
	}

	if err := s.incidents.Resolve(ctx, id); err != nil {
		log.WithError(err).Error("Failed to resolve incident in repository")
		return fmt.Errorf("service: could not resolve incident: %w", err)
	}

	if err := s.incidents.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	incident.Status = models.IncidentStatusResolved
	s.tracker.publishAlert(ctx, webhook.EventIncidentResolved, incident)

	log.Info("Incident resolved")
	return nil
}

// GetStats возвращает количество уникальных отправителей за окно статистики
func (s *detectionService) GetStats(ctx context.Context) (int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "detection",
		"method":  "GetStats",
	})

	count, err := s.signals.GetReporterStats(ctx, s.cfg.StatsTimeWindowMinutes)
	if err != nil {
		log.WithError(err).Error("Failed to get reporter stats")
		return 0, fmt.Errorf("service: could not get stats: %w", err)
	}
	return count, nil
}

func isInvalidQuery(err error) bool {
	return errors.Is(err, ErrInvalidQuery)
}
