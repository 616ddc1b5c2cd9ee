package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	alertKeyPrefix    = "alert:student:"
	alertIndexKey     = "alert:index"
	alertUpdatedAtKey = "alert:last_updated"
)

// StudentAlert is the dashboard-facing alert payload kept in Redis.
type StudentAlert struct {
	StudentID         string    `json:"student_id"`
	StudentName       string    `json:"student_name"`
	RiskLevel         string    `json:"risk_level"`
	Message           string    `json:"alert_message"`
	CounselorAssigned bool      `json:"counselor_assigned"`
	UpdatedAt         time.Time `json:"last_updated"`
}

// AlertRepository stores per-student alerts keyed by student ID.
type AlertRepository interface {
	ReplaceAll(ctx context.Context, alerts []StudentAlert, ttl time.Duration) error
	GetByStudentID(ctx context.Context, studentID string) (StudentAlert, bool, error)
	ListAll(ctx context.Context) ([]StudentAlert, error)
	LastUpdated(ctx context.Context) (*time.Time, error)
}

type alertRepository struct {
	client *redis.Client
}

// NewAlertRepository constructs the Redis-backed alert store.
func NewAlertRepository(client *redis.Client) AlertRepository {
	return &alertRepository{client: client}
}

func (r *alertRepository) ReplaceAll(ctx context.Context, alerts []StudentAlert, ttl time.Duration) error {
	stale, err := r.client.SMembers(ctx, alertIndexKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read alert index: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, id := range stale {
		pipe.Del(ctx, alertKeyPrefix+id)
	}
	pipe.Del(ctx, alertIndexKey)

	now := time.Now().UTC()
	for _, alert := range alerts {
		payload, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("marshal alert %s: %w", alert.StudentID, err)
		}
		pipe.Set(ctx, alertKeyPrefix+alert.StudentID, payload, ttl)
		pipe.SAdd(ctx, alertIndexKey, alert.StudentID)
	}
	if ttl > 0 {
		pipe.Expire(ctx, alertIndexKey, ttl)
	}
	pipe.Set(ctx, alertUpdatedAtKey, now.Format(time.RFC3339Nano), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace alerts: %w", err)
	}
	return nil
}

func (r *alertRepository) GetByStudentID(ctx context.Context, studentID string) (StudentAlert, bool, error) {
	payload, err := r.client.Get(ctx, alertKeyPrefix+studentID).Result()
	if errors.Is(err, redis.Nil) {
		return StudentAlert{}, false, nil
	}
	if err != nil {
		return StudentAlert{}, false, err
	}

	var alert StudentAlert
	if err := json.Unmarshal([]byte(payload), &alert); err != nil {
		return StudentAlert{}, false, fmt.Errorf("decode alert %s: %w", studentID, err)
	}
	return alert, true, nil
}

func (r *alertRepository) ListAll(ctx context.Context) ([]StudentAlert, error) {
	ids, err := r.client.SMembers(ctx, alertIndexKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	alerts := make([]StudentAlert, 0, len(ids))
	for _, id := range ids {
		alert, ok, err := r.GetByStudentID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

func (r *alertRepository) LastUpdated(ctx context.Context) (*time.Time, error) {
	raw, err := r.client.Get(ctx, alertUpdatedAtKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("decode alert timestamp: %w", err)
	}
	return &parsed, nil
}
