package ports

import (
	"context"
	"time"
)

// NotificationPublisher fans persisted notifications out to other services.
type NotificationPublisher interface {
	PublishNotifications(ctx context.Context, notifications []Notification) error
}

// JobMetrics records scheduled job outcomes.
type JobMetrics interface {
	ObserveJob(job string, success bool, created int, elapsed time.Duration)
	ObserveNotifications(notificationType string, count int)
}
