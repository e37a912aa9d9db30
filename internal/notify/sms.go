package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SMSSender posts {"to": ..., "body": ...} to an SMS gateway webhook.
type SMSSender struct {
	url    string
	client *http.Client
}

func NewSMSSender(webhookURL string, timeout time.Duration) *SMSSender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SMSSender{url: webhookURL, client: &http.Client{Timeout: timeout}}
}

type smsPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

func (s *SMSSender) Send(ctx context.Context, to string, msg Message) error {
	body, err := json.Marshal(smsPayload{To: to, Body: msg.Body})
	if err != nil {
		return fmt.Errorf("encode sms: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sms gateway responded %d", resp.StatusCode)
	}
	return nil
}
