package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shenikar/sos_detection_system/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Валидация аргументов FindNearby выполняется до обращения к БД,
// поэтому проверяется без подключения.
func TestFindNearby_RejectsInvalidQuery(t *testing.T) {
	repo := &SignalRepository{}
	ctx := context.Background()
	now := time.Now().UTC()

	tests := []struct {
		name   string
		lat    float64
		lng    float64
		radius int
		since  time.Time
		until  time.Time
	}{
		{"zero radius", 12.9716, 77.5946, 0, now.Add(-time.Minute), now},
		{"negative radius", 12.9716, 77.5946, -15, now.Add(-time.Minute), now},
		{"inverted time window", 12.9716, 77.5946, 15, now, now.Add(-time.Minute)},
		{"latitude out of range", 91, 77.5946, 15, now.Add(-time.Minute), now},
		{"longitude out of range", 12.9716, -181, 15, now.Add(-time.Minute), now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals, err := repo.FindNearby(ctx, tt.lat, tt.lng, tt.radius, tt.since, tt.until)
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrInvalidQuery)
			assert.Nil(t, signals)
		})
	}
}
