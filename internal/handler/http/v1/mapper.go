package v1

import (
	"github.com/shenikar/sos_detection_system/internal/models"
	"github.com/shenikar/sos_detection_system/internal/service"
)

// DTOToSOSPayload преобразует DTO запроса в нагрузку для сервиса
func DTOToSOSPayload(dto ReportSOSRequest) service.SOSPayload {
	payload := service.SOSPayload{
		Latitude:       dto.Latitude,
		Longitude:      dto.Longitude,
		AccuracyMeters: dto.AccuracyMeters,
		Note:           dto.Note,
		LocationText:   dto.LocationText,
		Allergies:      dto.Allergies,
	}
	if dto.CapturedAt != nil {
		payload.CapturedAt = *dto.CapturedAt
	}
	return payload
}

// ModelToSignalResponse преобразует доменную модель сигнала в DTO для ответа
func ModelToSignalResponse(model *models.Signal) *SignalResponse {
	return &SignalResponse{
		ID:             model.ID,
		ReporterID:     model.ReporterID,
		Kind:           model.Kind,
		Latitude:       model.Latitude,
		Longitude:      model.Longitude,
		AccuracyMeters: model.AccuracyMeters,
		Note:           model.Note,
		LocationText:   model.LocationText,
		Allergies:      model.Allergies,
		Read:           model.Read,
		CapturedAt:     model.CapturedAt,
		CreatedAt:      model.CreatedAt,
	}
}

// ModelsToSignalResponses преобразует слайс моделей сигналов в слайс DTO
func ModelsToSignalResponses(models []*models.Signal) []*SignalResponse {
	responses := make([]*SignalResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToSignalResponse(model)
	}
	return responses
}

// OutcomeToSOSResponse преобразует результат обработки сигнала в DTO для ответа
func OutcomeToSOSResponse(outcome *service.DetectionOutcome) *SOSResponse {
	return &SOSResponse{
		Signal:                ModelToSignalResponse(outcome.Signal),
		MassIncidentTriggered: outcome.MassIncidentTriggered,
		MassIncidentID:        outcome.MassIncidentID,
		ClusteringSkipped:     outcome.ClusteringSkipped,
	}
}

// ModelToIncidentResponse преобразует доменную модель инцидента в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:            model.ID,
		CentroidLat:   model.CentroidLat,
		CentroidLng:   model.CentroidLng,
		RadiusMeters:  model.RadiusMeters,
		MemberCount:   model.MemberCount,
		FirstSignalAt: model.FirstSignalAt,
		LastSignalAt:  model.LastSignalAt,
		Status:        model.Status,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}
