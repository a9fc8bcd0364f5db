// Package notify delivers verification codes to users. Delivery is
// best-effort: callers log failures and never fail the enclosing
// operation on them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/pkg/logger"
)

// Notifier dispatches a verification code.
type Notifier interface {
	Send(ctx context.Context, code string) error
}

// LogSender writes the code to the log instead of sending it. Used in
// development and tests.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a log-only notifier.
func NewLogSender(log *logger.Logger) *LogSender {
	if log == nil {
		log = logger.NewDefault("notify")
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, code string) error {
	s.log.WithField("code", code).Info("verification code issued")
	return nil
}

// HTTPSender posts the code to an email delivery API.
type HTTPSender struct {
	client   *http.Client
	endpoint string
	apiKey   string
	from     string
	to       string
	log      *logger.Logger
}

// NewHTTPSender creates a notifier posting to endpoint with a bearer
// API key.
func NewHTTPSender(client *http.Client, endpoint, apiKey, from, to string, log *logger.Logger) (*HTTPSender, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("notify endpoint is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logger.NewDefault("notify")
	}
	return &HTTPSender{client: client, endpoint: endpoint, apiKey: apiKey, from: from, to: to, log: log}, nil
}

func (s *HTTPSender) Send(ctx context.Context, code string) error {
	payload := map[string]string{
		"from":    s.from,
		"to":      s.to,
		"subject": "Verify your account",
		"html":    fmt.Sprintf("<p>Your verification code is <b>%s</b></p>", code),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify API error %d", resp.StatusCode)
	}
	return nil
}
