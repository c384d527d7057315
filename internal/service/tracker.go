package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shenikar/sos_detection_system/internal/config"
	"github.com/shenikar/sos_detection_system/internal/models"
	"github.com/shenikar/sos_detection_system/internal/webhook"
	"github.com/shenikar/sos_detection_system/pkg/geo"
	"github.com/sirupsen/logrus"
)

// IncidentTracker владеет множеством активных инцидентов и решает,
// присоединяется ли новый сигнал к существующему инциденту, создает новый
// или остается одиночным.
type IncidentTracker struct {
	repo      IncidentRepository
	publisher webhook.AlertPublisher
	logger    *logrus.Logger
	cfg       *config.Config

	// mu защищает bucketLocks; сами блокировки корзин сериализуют
	// find-active -> create-or-update в пределах одной пространственной ячейки.
	// Карта растет по числу ячеек, где наблюдались кластеры, и не вытесняется:
	// безопасное удаление потребовало бы учета горутин, уже держащих ссылку.
	mu          sync.Mutex
	bucketLocks map[string]*sync.Mutex
}

// NewIncidentTracker создает новый трекер инцидентов
func NewIncidentTracker(repo IncidentRepository, logger *logrus.Logger, cfg *config.Config, publisher webhook.AlertPublisher) *IncidentTracker {
	return &IncidentTracker{
		repo:        repo,
		publisher:   publisher,
		logger:      logger,
		cfg:         cfg,
		bucketLocks: make(map[string]*sync.Mutex),
	}
}

func (t *IncidentTracker) bucketLock(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.bucketLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		t.bucketLocks[key] = lock
	}
	return lock
}

// Observe обрабатывает кластер, собранный вокруг нового сигнала.
// Возвращает инцидент и признак того, что инцидент был создан или обновлен.
// Два конкурентных сигнала в одной точке не должны породить два инцидента,
// поэтому поиск существующего инцидента и create-or-update выполняются под
// блокировкой пространственной корзины.
func (t *IncidentTracker) Observe(ctx context.Context, trigger *models.Signal, cluster []*models.Signal, now time.Time) (*models.Incident, bool, error) {
	log := t.logger.WithFields(logrus.Fields{
		"service":      "tracker",
		"method":       "Observe",
		"signal_id":    trigger.ID,
		"cluster_size": len(cluster),
	})

	if len(cluster) < t.cfg.MassThreshold {
		log.Debug("Cluster below mass threshold, signal stays isolated")
		return nil, false, nil
	}

	lock := t.bucketLock(geo.BucketKey(trigger.Latitude, trigger.Longitude))
	lock.Lock()
	defer lock.Unlock()

	candidates, err := t.repo.FindActiveNear(ctx, trigger.Latitude, trigger.Longitude, t.cfg.MassRadiusMeters)
	if err != nil {
		log.WithError(err).Error("Failed to find active incidents near signal")
		return nil, false, fmt.Errorf("tracker: find active incidents: %w", ErrDependencyUnavailable)
	}

	if len(candidates) > 0 {
		// Репозиторий возвращает кандидатов по возрастанию расстояния,
		// при равенстве - по времени создания
		incident := candidates[0]
		incident.MemberCount = len(cluster) // пересчет, не инкремент
		incident.LastSignalAt = now

		if err := t.repo.Update(ctx, incident); err != nil {
			log.WithError(err).Error("Failed to update incident")
			return nil, false, fmt.Errorf("tracker: update incident: %w", ErrDependencyUnavailable)
		}

		if err := t.repo.InvalidateIncidentCache(ctx, incident.ID); err != nil {
			log.WithError(err).Warn("Failed to invalidate incident cache")
		}

		t.publishAlert(ctx, webhook.EventIncidentUpdated, incident)
		log.WithField("incident_id", incident.ID).Info("Signal joined existing mass incident")
		return incident, true, nil
	}

	incident := &models.Incident{
		CentroidLat:   trigger.Latitude,
		CentroidLng:   trigger.Longitude,
		RadiusMeters:  t.cfg.MassRadiusMeters,
		MemberCount:   len(cluster),
		FirstSignalAt: earliestCaptureTime(cluster, now),
		LastSignalAt:  now,
		Status:        models.IncidentStatusActive,
	}

	if err := t.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident")
		return nil, false, fmt.Errorf("tracker: create incident: %w", ErrDependencyUnavailable)
	}

	t.publishAlert(ctx, webhook.EventIncidentCreated, incident)
	log.WithField("incident_id", incident.ID).Warn("Mass incident detected")
	return incident, true, nil
}

// publishAlert отправляет событие в очередь вебхуков. Доставка best-effort:
// ошибка публикации не влияет на результат обработки сигнала.
func (t *IncidentTracker) publishAlert(ctx context.Context, event string, incident *models.Incident) {
	alert := webhook.IncidentAlert{
		Event:       event,
		IncidentID:  incident.ID,
		CentroidLat: incident.CentroidLat,
		CentroidLng: incident.CentroidLng,
		MemberCount: incident.MemberCount,
		Status:      incident.Status,
		Timestamp:   time.Now().UTC(),
	}
	if err := t.publisher.Publish(ctx, alert); err != nil {
		t.logger.WithError(err).WithField("incident_id", incident.ID).Error("Failed to publish incident alert")
	}
}

// earliestCaptureTime возвращает самое раннее время фиксации среди сигналов кластера
func earliestCaptureTime(cluster []*models.Signal, fallback time.Time) time.Time {
	earliest := fallback
	for _, sig := range cluster {
		if !sig.CapturedAt.IsZero() && sig.CapturedAt.Before(earliest) {
			earliest = sig.CapturedAt
		}
	}
	return earliest
}
