package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Notifier delivers a text payload to an actor id, best effort. Delivery
// failures are logged and swallowed; they never roll back or fail the
// mutation that triggered them.
type Notifier interface {
	Notify(actorID, text string)
}

// WebhookNotifier pushes notifications to the chat bridge over HTTP.
type WebhookNotifier struct {
	webhookURL string
	token      string
	client     *http.Client
	enabled    bool
}

// NewWebhookNotifier creates a webhook notifier; with an empty URL it is a
// disabled no-op.
func NewWebhookNotifier(webhookURL, token string) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		token:      token,
		client:     &http.Client{Timeout: 10 * time.Second},
		enabled:    webhookURL != "",
	}
}

// IsEnabled checks if notification delivery is enabled
func (s *WebhookNotifier) IsEnabled() bool {
	return s.enabled
}

type notifyPayload struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}

// Notify sends asynchronously so callers holding the ledger lock are never
// blocked on transport I/O.
func (s *WebhookNotifier) Notify(actorID, text string) {
	if !s.enabled {
		return
	}
	go func() {
		if err := s.push(actorID, text); err != nil {
			log.Printf("⚠️ Notification to %s failed: %v", actorID, err)
		}
	}()
}

func (s *WebhookNotifier) push(actorID, text string) error {
	body, err := json.Marshal(notifyPayload{Recipient: actorID, Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}
