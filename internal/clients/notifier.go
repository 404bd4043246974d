package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/paperkart/paperkart-sales-service/internal/config"
)

// NotificationType classifies dispatch-desk notifications.
type NotificationType string

const (
	NotificationTypeOrderConfirmed  NotificationType = "order_confirmed"
	NotificationTypeOrderDispatched NotificationType = "order_dispatched"
	NotificationTypeOrderCancelled  NotificationType = "order_cancelled"
)

// Notification is the payload sent to the notification service.
type Notification struct {
	Type      NotificationType  `json:"type"`
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Notifier sends operational notifications. Failures are logged, never
// propagated to the order flow.
type Notifier interface {
	Send(ctx context.Context, n *Notification) error
}

// HTTPNotifier implements Notifier against the notification service.
type HTTPNotifier struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

// NewHTTPNotifier creates a new HTTP-based notifier.
func NewHTTPNotifier(cfg config.ServiceConfig, logger *zap.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger.Named("notifier"),
	}
}

// Send posts a notification.
func (c *HTTPNotifier) Send(ctx context.Context, n *Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/notifications", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to send notification",
			zap.String("type", string(n.Type)),
			zap.String("recipient", n.Recipient),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}

	c.logger.Debug("Notification sent",
		zap.String("type", string(n.Type)),
		zap.String("recipient", n.Recipient),
	)

	return nil
}

// MockNotifier records notifications for testing.
type MockNotifier struct {
	Sent []*Notification
}

// NewMockNotifier creates a mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{Sent: make([]*Notification, 0)}
}

func (m *MockNotifier) Send(ctx context.Context, n *Notification) error {
	m.Sent = append(m.Sent, n)
	return nil
}
