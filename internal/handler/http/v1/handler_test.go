package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/sos_detection_system/internal/config"
	"github.com/shenikar/sos_detection_system/internal/handler/http/v1/mocks"
	"github.com/shenikar/sos_detection_system/internal/models"
	"github.com/shenikar/sos_detection_system/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestRouter - вспомогательная функция для создания роутера с мок-сервисом
func newTestRouter(t *testing.T) (*gin.Engine, *mocks.MockDetectionService) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	serviceMock := mocks.NewMockDetectionService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{}
	handler := NewHandler(serviceMock, logger, cfg)

	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterSystemRoutes(api)
	handler.RegisterRoutes(api)
	return router, serviceMock
}

func makeRequest(router *gin.Engine, method, url string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestReportSOSHandler_Success(t *testing.T) {
	// Подготовка
	router, serviceMock := newTestRouter(t)
	signalID := uuid.New()
	incidentID := uuid.New()

	// Ожидания
	serviceMock.EXPECT().
		ReportSOS(gomock.Any(), "reporter-42", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, payload service.SOSPayload) (*service.DetectionOutcome, error) {
			require.NotNil(t, payload.Latitude)
			require.NotNil(t, payload.Longitude)
			assert.Equal(t, 12.9716, *payload.Latitude)
			assert.Equal(t, 77.5946, *payload.Longitude)
			return &service.DetectionOutcome{
				Signal: &models.Signal{
					ID:         signalID,
					ReporterID: "reporter-42",
					Kind:       models.SignalKindGeo,
					Latitude:   12.9716,
					Longitude:  77.5946,
					CapturedAt: time.Now().UTC(),
				},
				MassIncidentTriggered: true,
				MassIncidentID:        &incidentID,
			}, nil
		}).Times(1)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/sos", gin.H{
		"latitude":  12.9716,
		"longitude": 77.5946,
	}, map[string]string{"X-Reporter-ID": "reporter-42"})

	// Проверки
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SOSResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Signal)
	assert.Equal(t, signalID, resp.Signal.ID)
	assert.True(t, resp.MassIncidentTriggered)
	require.NotNil(t, resp.MassIncidentID)
	assert.Equal(t, incidentID, *resp.MassIncidentID)
}

func TestReportSOSHandler_PartialSuccessStillCreated(t *testing.T) {
	router, serviceMock := newTestRouter(t)
	signalID := uuid.New()

	serviceMock.EXPECT().
		ReportSOS(gomock.Any(), "reporter-42", gomock.Any()).
		Return(&service.DetectionOutcome{
			Signal:            &models.Signal{ID: signalID, Kind: models.SignalKindGeo},
			ClusteringSkipped: true,
		}, nil).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/sos", gin.H{
		"latitude":  12.9716,
		"longitude": 77.5946,
	}, map[string]string{"X-Reporter-ID": "reporter-42"})

	// Сигнал сохранен - частичный успех остается 201
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SOSResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.ClusteringSkipped)
	assert.False(t, resp.MassIncidentTriggered)
}

func TestReportSOSHandler_OutOfRangeCoordinatesReachService(t *testing.T) {
	router, serviceMock := newTestRouter(t)
	signalID := uuid.New()

	// Координаты вне диапазона не отклоняются на уровне DTO: решение
	// принимает сервис, который деградирует до legacy-сигнала по тексту
	serviceMock.EXPECT().
		ReportSOS(gomock.Any(), "reporter-42", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, payload service.SOSPayload) (*service.DetectionOutcome, error) {
			require.NotNil(t, payload.Latitude)
			assert.Equal(t, 91.0, *payload.Latitude)
			assert.Equal(t, "возле старого рынка", payload.LocationText)
			return &service.DetectionOutcome{
				Signal: &models.Signal{
					ID:           signalID,
					Kind:         models.SignalKindLegacyText,
					LocationText: payload.LocationText,
				},
			}, nil
		}).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/sos", gin.H{
		"latitude":      91.0,
		"longitude":     77.5946,
		"location_text": "возле старого рынка",
	}, map[string]string{"X-Reporter-ID": "reporter-42"})

	// Сигнал бедствия не потерян
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SOSResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Signal)
	assert.Equal(t, models.SignalKindLegacyText, resp.Signal.Kind)
}

func TestReportSOSHandler_InvalidJSON(t *testing.T) {
	router, serviceMock := newTestRouter(t)

	serviceMock.EXPECT().ReportSOS(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sos", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportSOSHandler_ValidationError(t *testing.T) {
	router, serviceMock := newTestRouter(t)

	serviceMock.EXPECT().ReportSOS(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Отрицательная точность отклоняется валидатором до вызова сервиса
	w := makeRequest(router, http.MethodPost, "/api/v1/sos", gin.H{
		"latitude":        12.9716,
		"longitude":       77.5946,
		"accuracy_meters": -1.0,
	}, map[string]string{"X-Reporter-ID": "reporter-42"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportSOSHandler_Unauthenticated(t *testing.T) {
	router, serviceMock := newTestRouter(t)

	serviceMock.EXPECT().
		ReportSOS(gomock.Any(), "", gomock.Any()).
		Return(nil, fmt.Errorf("service: resolve reporter: %w", service.ErrUnauthenticated)).
		Times(1)

	// Без заголовка X-Reporter-ID
	w := makeRequest(router, http.MethodPost, "/api/v1/sos", gin.H{
		"latitude":  12.9716,
		"longitude": 77.5946,
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportSOSHandler_ServiceValidationError(t *testing.T) {
	router, serviceMock := newTestRouter(t)

	serviceMock.EXPECT().
		ReportSOS(gomock.Any(), "reporter-42", gomock.Any()).
		Return(nil, fmt.Errorf("service: signal payload: %w", service.ErrValidation)).
		Times(1)

	// Нет ни координат, ни location_text
	w := makeRequest(router, http.MethodPost, "/api/v1/sos", gin.H{
		"note": "help",
	}, map[string]string{"X-Reporter-ID": "reporter-42"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportSOSHandler_InternalError(t *testing.T) {
	router, serviceMock := newTestRouter(t)

	serviceMock.EXPECT().
		ReportSOS(gomock.Any(), "reporter-42", gomock.Any()).
		Return(nil, fmt.Errorf("service: persist signal: %w", service.ErrPersistence)).
		Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/sos", gin.H{
		"latitude":  12.9716,
		"longitude": 77.5946,
	}, map[string]string{"X-Reporter-ID": "reporter-42"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListSignalsHandler_Success(t *testing.T) {
	router, serviceMock := newTestRouter(t)

	expectedFilter := models.SignalFilter{ReporterID: "reporter-42", UnreadOnly: true}
	serviceMock.EXPECT().
		ListSignals(gomock.Any(), expectedFilter, 10, 50).
		Return([]*models.Signal{
			{ID: uuid.New(), ReporterID: "reporter-42", Kind: models.SignalKindGeo},
		}, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/signals?reporter_id=reporter-42&unread_only=true&skip=10&limit=50", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []SignalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestMarkSignalsReadHandler_Success(t *testing.T) {
	router, serviceMock := newTestRouter(t)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	serviceMock.EXPECT().
		MarkSignalsRead(gomock.Any(), ids).
		Return(int64(2), nil).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/signals/mark-read", gin.H{"ids": ids}, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp MarkSignalsReadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Updated)
}

func TestMarkSignalsReadHandler_EmptyIDs(t *testing.T) {
	router, serviceMock := newTestRouter(t)

	serviceMock.EXPECT().MarkSignalsRead(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/signals/mark-read", gin.H{"ids": []string{}}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteSignalHandler_Success(t *testing.T) {
	router, serviceMock := newTestRouter(t)
	id := uuid.New()

	serviceMock.EXPECT().DeleteSignal(gomock.Any(), id).Return(nil).Times(1)

	w := makeRequest(router, http.MethodDelete, "/api/v1/signals/"+id.String(), nil, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeleteSignalHandler_NotFound(t *testing.T) {
	router, serviceMock := newTestRouter(t)
	id := uuid.New()

	serviceMock.EXPECT().
		DeleteSignal(gomock.Any(), id).
		Return(fmt.Errorf("signal with id %s: %w", id, service.ErrNotFound)).
		Times(1)

	w := makeRequest(router, http.MethodDelete, "/api/v1/signals/"+id.String(), nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSignalHandler_InvalidID(t *testing.T) {
	router, serviceMock := newTestRouter(t)

	serviceMock.EXPECT().DeleteSignal(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodDelete, "/api/v1/signals/not-a-uuid", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListIncidentsHandler_Success(t *testing.T) {
	router, serviceMock := newTestRouter(t)

	serviceMock.EXPECT().
		ListIncidents(gomock.Any(), 2, 10).
		Return([]*models.Incident{
			{ID: uuid.New(), Status: models.IncidentStatusActive, MemberCount: 9},
		}, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents?page=2&pageSize=10", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 9, resp[0].MemberCount)
}

func TestGetIncidentHandler_Success(t *testing.T) {
	router, serviceMock := newTestRouter(t)
	id := uuid.New()

	serviceMock.EXPECT().
		GetIncident(gomock.Any(), id).
		Return(&models.Incident{ID: id, Status: models.IncidentStatusActive}, nil).
		Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/"+id.String(), nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, models.IncidentStatusActive, resp.Status)
}

func TestGetIncidentHandler_NotFound(t *testing.T) {
	router, serviceMock := newTestRouter(t)
	id := uuid.New()

	serviceMock.EXPECT().
		GetIncident(gomock.Any(), id).
		Return(nil, fmt.Errorf("incident with id %s: %w", id, service.ErrNotFound)).
		Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/"+id.String(), nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveIncidentHandler_Success(t *testing.T) {
	router, serviceMock := newTestRouter(t)
	id := uuid.New()

	serviceMock.EXPECT().ResolveIncident(gomock.Any(), id).Return(nil).Times(1)

	w := makeRequest(router, http.MethodPut, "/api/v1/incidents/"+id.String()+"/resolve", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResolveIncidentHandler_NotFound(t *testing.T) {
	router, serviceMock := newTestRouter(t)
	id := uuid.New()

	serviceMock.EXPECT().
		ResolveIncident(gomock.Any(), id).
		Return(fmt.Errorf("service: incident %s not found for resolve: %w", id, service.ErrNotFound)).
		Times(1)

	w := makeRequest(router, http.MethodPut, "/api/v1/incidents/"+id.String()+"/resolve", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStatsHandler_Success(t *testing.T) {
	router, serviceMock := newTestRouter(t)

	serviceMock.EXPECT().GetStats(gomock.Any()).Return(17, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/signals/stats", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 17, resp.ReporterCount)
}

func TestHealthCheckHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/system/health", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthCheck_NoAPIKeyRequired(t *testing.T) {
	// Роутер собран как в main: health вне группы с аутентификацией
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	serviceMock := mocks.NewMockDetectionService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{APIKeys: []string{"secret-key"}}
	handler := NewHandler(serviceMock, logger, cfg)

	router := gin.New()
	public := router.Group("/api/v1")
	handler.RegisterSystemRoutes(public)
	api := router.Group("/api/v1")
	api.Use(APIKeyAuthMiddleware(cfg, logger))
	handler.RegisterRoutes(api)

	// Health отвечает без ключа
	w := makeRequest(router, http.MethodGet, "/api/v1/system/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Остальное API без ключа закрыто
	serviceMock.EXPECT().ListSignals(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	w = makeRequest(router, http.MethodGet, "/api/v1/signals", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
