package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/sos_detection_system/internal/config"
	"github.com/shenikar/sos_detection_system/internal/models"
	"github.com/shenikar/sos_detection_system/internal/webhook"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIncidentStore - потокобезопасная in-memory реализация IncidentRepository
// для тестов на конкурентность, где заранее заданные ожидания моков не работают.
type fakeIncidentStore struct {
	mu        sync.Mutex
	incidents map[uuid.UUID]*models.Incident
}

func newFakeIncidentStore() *fakeIncidentStore {
	return &fakeIncidentStore{incidents: make(map[uuid.UUID]*models.Incident)}
}

func (s *fakeIncidentStore) Create(_ context.Context, incident *models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	incident.ID = uuid.New()
	clone := *incident
	s.incidents[incident.ID] = &clone
	return nil
}

func (s *fakeIncidentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	incident, ok := s.incidents[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *incident
	return &clone, nil
}

func (s *fakeIncidentStore) Update(_ context.Context, incident *models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.incidents[incident.ID]
	if !ok {
		return ErrNotFound
	}
	stored.MemberCount = incident.MemberCount
	stored.LastSignalAt = incident.LastSignalAt
	return nil
}

func (s *fakeIncidentStore) FindActiveNear(_ context.Context, lat, lng float64, radiusMeters int) ([]*models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Incident
	for _, incident := range s.incidents {
		if incident.Status != models.IncidentStatusActive {
			continue
		}
		clone := *incident
		result = append(result, &clone)
	}
	return result, nil
}

func (s *fakeIncidentStore) ListIncidents(_ context.Context, page, pageSize int) ([]*models.Incident, error) {
	return s.FindActiveNear(context.Background(), 0, 0, 0)
}

func (s *fakeIncidentStore) Resolve(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	incident, ok := s.incidents[id]
	if !ok || incident.Status != models.IncidentStatusActive {
		return ErrNotFound
	}
	incident.Status = models.IncidentStatusResolved
	return nil
}

func (s *fakeIncidentStore) GetIncidentFromCache(_ context.Context, _ uuid.UUID) (*models.Incident, error) {
	return nil, nil
}

func (s *fakeIncidentStore) SetIncidentCache(_ context.Context, _ *models.Incident) error {
	return nil
}

func (s *fakeIncidentStore) InvalidateIncidentCache(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (s *fakeIncidentStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.incidents)
}

// noopPublisher - заглушка очереди алертов, считающая публикации
type noopPublisher struct {
	mu        sync.Mutex
	published []webhook.IncidentAlert
}

func (p *noopPublisher) Publish(_ context.Context, alert webhook.IncidentAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, alert)
	return nil
}

func newTrackerForTest(store *fakeIncidentStore, publisher webhook.AlertPublisher) *IncidentTracker {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	cfg := &config.Config{
		MassWindowMinutes: 10,
		MassRadiusMeters:  15,
		MassThreshold:     8,
	}
	return NewIncidentTracker(store, logger, cfg, publisher)
}

func TestObserve_ConcurrentSignalsCreateSingleIncident(t *testing.T) {
	store := newFakeIncidentStore()
	publisher := &noopPublisher{}
	tracker := newTrackerForTest(store, publisher)
	ctx := context.Background()
	now := time.Now().UTC()

	const workers = 8
	cluster := makeCluster(workers, 12.9716, 77.5946, now.Add(-time.Minute))

	// Все сигналы поступают одновременно в одну точку с кластером на пороге
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(trigger *models.Signal) {
			defer wg.Done()
			_, triggered, err := tracker.Observe(ctx, trigger, cluster, now)
			assert.NoError(t, err)
			assert.True(t, triggered)
		}(cluster[i])
	}
	wg.Wait()

	// Ровно один инцидент, сколько бы горутин ни прошло через Observe
	assert.Equal(t, 1, store.count())
}

func TestObserve_ArrivalOrderDoesNotChangeOutcome(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	base := makeCluster(8, 12.9716, 77.5946, now.Add(-3*time.Minute))

	permutations := [][]int{
		{0, 1, 2, 3, 4, 5, 6, 7},
		{7, 6, 5, 4, 3, 2, 1, 0},
		{3, 0, 7, 1, 6, 2, 5, 4},
	}

	for _, order := range permutations {
		store := newFakeIncidentStore()
		tracker := newTrackerForTest(store, &noopPublisher{})

		// Наблюдаем кластер, растущий по мере поступления сигналов
		var incident *models.Incident
		for n, idx := range order {
			cluster := make([]*models.Signal, 0, n+1)
			for _, j := range order[:n+1] {
				cluster = append(cluster, base[j])
			}
			var err error
			incident, _, err = tracker.Observe(ctx, base[idx], cluster, now)
			require.NoError(t, err)
		}

		// Инцидент возникает ровно один раз - на восьмом сигнале
		require.Equal(t, 1, store.count())
		require.NotNil(t, incident)
		assert.Equal(t, 8, incident.MemberCount)
		assert.Equal(t, models.IncidentStatusActive, incident.Status)
	}
}

func TestObserve_ResolvedIncidentDoesNotAbsorbNewSignals(t *testing.T) {
	store := newFakeIncidentStore()
	tracker := newTrackerForTest(store, &noopPublisher{})
	ctx := context.Background()
	now := time.Now().UTC()

	cluster := makeCluster(8, 12.9716, 77.5946, now.Add(-time.Minute))
	first, triggered, err := tracker.Observe(ctx, cluster[0], cluster, now)
	require.NoError(t, err)
	require.True(t, triggered)

	require.NoError(t, store.Resolve(ctx, first.ID))

	// Новая волна сигналов в той же точке образует новый инцидент
	second, triggered, err := tracker.Observe(ctx, cluster[1], cluster, now.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, triggered)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, store.count())
}

func TestEarliestCaptureTime(t *testing.T) {
	now := time.Now().UTC()
	cluster := []*models.Signal{
		{CapturedAt: now.Add(-time.Minute)},
		{CapturedAt: now.Add(-5 * time.Minute)},
		{CapturedAt: now.Add(-2 * time.Minute)},
	}

	assert.Equal(t, now.Add(-5*time.Minute), earliestCaptureTime(cluster, now))

	// Пустой кластер и нулевые времена дают запасное значение
	assert.Equal(t, now, earliestCaptureTime(nil, now))
	assert.Equal(t, now, earliestCaptureTime([]*models.Signal{{}}, now))
}
