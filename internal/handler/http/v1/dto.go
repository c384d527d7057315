package v1

import (
	"time"

	"github.com/google/uuid"
)

// ReportSOSRequest DTO для отправки сигнала SOS
// @Description DTO для отправки сигнала SOS. Координаты опциональны и не
// @Description проверяются на диапазон на этом уровне: нагрузка с
// @Description некорректными координатами, но с location_text, должна
// @Description дойти до сервиса и сохраниться как legacy-сигнал.
type ReportSOSRequest struct {
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	AccuracyMeters float64    `json:"accuracy_meters,omitempty" validate:"omitempty,gte=0"`
	Note           string     `json:"note,omitempty" validate:"omitempty,max=1000"`
	LocationText   string     `json:"location_text,omitempty" validate:"omitempty,max=1000"`
	Allergies      string     `json:"allergies,omitempty" validate:"omitempty,max=1000"`
	CapturedAt     *time.Time `json:"captured_at,omitempty"`
}

// SignalResponse DTO для ответа с информацией о сигнале
// @Description DTO для ответа с информацией о сигнале
type SignalResponse struct {
	ID             uuid.UUID `json:"id"`
	ReporterID     string    `json:"reporter_id"`
	Kind           string    `json:"kind"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters,omitempty"`
	Note           string    `json:"note,omitempty"`
	LocationText   string    `json:"location_text,omitempty"`
	Allergies      string    `json:"allergies,omitempty"`
	Read           bool      `json:"read"`
	CapturedAt     time.Time `json:"captured_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// SOSResponse DTO для результата обработки сигнала
// @Description DTO для результата обработки сигнала
type SOSResponse struct {
	Signal                *SignalResponse `json:"signal"`
	MassIncidentTriggered bool            `json:"mass_incident_triggered"`
	MassIncidentID        *uuid.UUID      `json:"mass_incident_id,omitempty"`
	ClusteringSkipped     bool            `json:"clustering_skipped,omitempty"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
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

// MarkSignalsReadRequest DTO для пометки сигналов прочитанными
// @Description DTO для пометки сигналов прочитанными
type MarkSignalsReadRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// MarkSignalsReadResponse DTO для ответа с числом обновленных сигналов
// @Description DTO для ответа с числом обновленных сигналов
type MarkSignalsReadResponse struct {
	Updated int64 `json:"updated"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	ReporterCount int `json:"reporter_count"`
}
