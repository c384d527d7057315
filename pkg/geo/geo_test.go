package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters_ZeroDistance(t *testing.T) {
	assert.Zero(t, HaversineMeters(12.9716, 77.5946, 12.9716, 77.5946))
}

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// Один градус долготы на экваторе - примерно 111.19 км
	d := HaversineMeters(0, 0, 0, 1)
	assert.InDelta(t, 111195, d, 50)
}

func TestHaversineMeters_ShrinksWithLatitude(t *testing.T) {
	// Один и тот же шаг долготы: ~111 м на экваторе, ~2 м на широте 89.
	// Плоское приближение дало бы одинаковые расстояния.
	atEquator := HaversineMeters(0, 0, 0, 0.001)
	nearPole := HaversineMeters(89, 0, 89, 0.001)

	assert.InDelta(t, 111.19, atEquator, 0.5)
	assert.InDelta(t, 1.94, nearPole, 0.1)

	// Радиус срабатывания 15 м: на экваторе точки далеко, у полюса - рядом
	assert.Greater(t, atEquator, 15.0)
	assert.Less(t, nearPole, 15.0)
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	d1 := HaversineMeters(12.9716, 77.5946, 12.9720, 77.5950)
	d2 := HaversineMeters(12.9720, 77.5950, 12.9716, 77.5946)
	assert.Equal(t, d1, d2)
}

func TestValidCoordinate(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{"valid city point", 12.9716, 77.5946, true},
		{"boundary north pole", 90, 0, true},
		{"boundary date line", 0, -180, true},
		{"latitude out of range", 90.0001, 0, false},
		{"longitude out of range", 0, 180.0001, false},
		{"NaN latitude", math.NaN(), 0, false},
		{"Inf longitude", 0, math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCoordinate(tt.lat, tt.lng))
		})
	}
}

func TestBucketKey(t *testing.T) {
	// Точки в одной ячейке дают один ключ
	assert.Equal(t, BucketKey(12.97161, 77.59461), BucketKey(12.97169, 77.59469))

	// Соседние ячейки - разные ключи
	assert.NotEqual(t, BucketKey(12.9716, 77.5946), BucketKey(12.9726, 77.5946))

	// Отрицательные координаты не схлопываются с положительными вокруг нуля
	assert.NotEqual(t, BucketKey(-0.0005, 0), BucketKey(0.0005, 0))
}
