package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	alertQueueKey = "incident_alerts"
)

// Типы событий жизненного цикла инцидента
const (
	EventIncidentCreated  = "incident.created"
	EventIncidentUpdated  = "incident.updated"
	EventIncidentResolved = "incident.resolved"
)

// IncidentAlert - структура события для вебхука об инциденте
type IncidentAlert struct {
	Event       string    `json:"event"`
	IncidentID  uuid.UUID `json:"incident_id"`
	CentroidLat float64   `json:"centroid_lat"`
	CentroidLng float64   `json:"centroid_lng"`
	MemberCount int       `json:"member_count"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// AlertPublisher - интерфейс для публикации событий об инцидентах
type AlertPublisher interface {
	Publish(ctx context.Context, alert IncidentAlert) error
}

// RedisAlertPublisher - реализация AlertPublisher, использующая Redis
type RedisAlertPublisher struct {
	redisClient *redis.Client
}

// NewRedisAlertPublisher создает новый RedisAlertPublisher
func NewRedisAlertPublisher(client *redis.Client) *RedisAlertPublisher {
	return &RedisAlertPublisher{
		redisClient: client,
	}
}

// Publish публикует событие об инциденте в очередь Redis
func (p *RedisAlertPublisher) Publish(ctx context.Context, alert IncidentAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal incident alert: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, alertQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish incident alert to Redis: %w", err)
	}
	return nil
}
