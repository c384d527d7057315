package geo

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// bucketCellDegrees - размер ячейки пространственной корзины (~110 м по широте)
const bucketCellDegrees = 0.001

// HaversineMeters вычисляет расстояние по дуге большого круга между двумя
// точками в метрах. Плоское приближение здесь непригодно: радиусы срабатывания
// составляют десятки метров, а корректность должна сохраняться на любой широте.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lng1Rad := lng1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lng2Rad := lng2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLng := lng2Rad - lng1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ValidCoordinate проверяет, что координата конечна и лежит в допустимых пределах
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// BucketKey возвращает ключ грубой пространственной корзины для точки.
// Используется как ключ взаимного исключения при создании/обновлении инцидента.
func BucketKey(lat, lng float64) string {
	return fmt.Sprintf("%d:%d",
		int64(math.Floor(lat/bucketCellDegrees)),
		int64(math.Floor(lng/bucketCellDegrees)),
	)
}
