package models

import (
	"time"

	"github.com/google/uuid"
)

// Виды сигналов SOS
const (
	SignalKindGeo        = "geo"
	SignalKindLegacyText = "legacy_text"
)

// Signal представляет один сигнал SOS. Запись неизменяема после создания,
// кроме флага Read (пометка о прочтении оператором).
type Signal struct {
	ID             uuid.UUID `json:"id"`
	ReporterID     string    `json:"reporter_id"`
	Kind           string    `json:"kind"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters,omitempty"`
	Note           string    `json:"note,omitempty"`
	// LocationText заполняется только для legacy-сигналов без координат
	LocationText string `json:"location_text,omitempty"`
	// Allergies - снимок данных из профиля на момент сигнала, не перечитывается
	Allergies  string    `json:"allergies,omitempty"`
	Read       bool      `json:"read"`
	CapturedAt time.Time `json:"captured_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// SignalFilter задает фильтр для выборки сигналов
type SignalFilter struct {
	ReporterID string
	UnreadOnly bool
}
