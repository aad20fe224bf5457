package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"section3/internal/bootstrap/logging"
	"section3/internal/errs"
	"section3/internal/ports"
)

const flushTimeout = 2 * time.Second

var _ ports.NotificationPublisher = (*Publisher)(nil)

// Publisher sends each notification to <subject>.<type>. A Publisher without
// a connection drops everything silently.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

type notificationMessage struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Type              string    `json:"type"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	Priority          string    `json:"priority"`
	RelatedContractID *string   `json:"related_contract_id,omitempty"`
	RelatedTaskID     *string   `json:"related_task_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func Connect(ctx context.Context, url string, subject string) (*Publisher, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	logCtx := logging.WithComponent(ctx, "messaging.natsbus")

	url = strings.TrimSpace(url)
	if url == "" {
		logging.Info(logCtx, "nats publisher disabled")
		return &Publisher{subject: subject}, nil
	}

	conn, err := nats.Connect(
		url,
		nats.Name("section3"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errs.E(errs.KindConfiguration, errs.Wrapf(err, "connect nats %s", url))
	}

	logging.Info(logCtx, "nats publisher connected", slog.String("url", url), slog.String("subject", subject))
	return &Publisher{conn: conn, subject: subject}, nil
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.conn != nil
}

func (p *Publisher) PublishNotifications(ctx context.Context, notifications []ports.Notification) error {
	if !p.Enabled() || len(notifications) == 0 {
		return nil
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return errs.Wrap(err, "check context")
		}
	}

	for _, notification := range notifications {
		payload, err := encode(notification)
		if err != nil {
			return err
		}
		if err := p.conn.Publish(subjectFor(p.subject, notification.Type), payload); err != nil {
			return errs.Wrapf(err, "publish notification %s", notification.ID)
		}
	}

	if err := p.conn.FlushTimeout(flushTimeout); err != nil {
		return errs.Wrap(err, "flush nats")
	}
	return nil
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return errs.Wrap(err, "drain nats")
	}
	return nil
}

func encode(notification ports.Notification) ([]byte, error) {
	payload, err := json.Marshal(notificationMessage{
		ID:                notification.ID,
		UserID:            notification.UserID,
		Type:              notification.Type,
		Title:             notification.Title,
		Message:           notification.Message,
		Priority:          notification.Priority,
		RelatedContractID: notification.RelatedContractID,
		RelatedTaskID:     notification.RelatedTaskID,
		CreatedAt:         notification.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, errs.Wrapf(err, "encode notification %s", notification.ID)
	}
	return payload, nil
}

func subjectFor(base string, notificationType string) string {
	base = strings.TrimSuffix(strings.TrimSpace(base), ".")
	notificationType = strings.TrimSpace(notificationType)
	if notificationType == "" {
		return base
	}
	return base + "." + notificationType
}
