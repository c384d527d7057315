package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы массового инцидента
const (
	IncidentStatusActive   = "active"
	IncidentStatusResolved = "resolved"
)

// Incident представляет обнаруженный массовый инцидент.
// Центроид фиксируется при создании и никогда не пересчитывается.
type Incident struct {
	ID            uuid.UUID `json:"id"`
	CentroidLat   float64   `json:"centroid_lat"`
	CentroidLng   float64   `json:"centroid_lng"`
	RadiusMeters  int       `json:"radius_meters"`
	MemberCount   int       `json:"member_count"`
	FirstSignalAt time.Time `json:"first_signal_at"`
	LastSignalAt  time.Time `json:"last_signal_at"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
