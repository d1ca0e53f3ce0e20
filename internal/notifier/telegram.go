package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const defaultAPIBase = "https://api.telegram.org"

// Urgency decides how loudly a message lands on the user's phone.
type Urgency int

const (
	// Quiet messages are delivered without a sound (summaries, yearly reset).
	Quiet Urgency = iota
	// Loud messages ring (new alerts, escalations, failures).
	Loud
)

// Message is one chat message.
type Message struct {
	Text    string
	Urgency Urgency
}

// Notifier delivers messages to the user.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// APIError is a non-OK answer from the Bot API.
type APIError struct {
	Status      int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: status %d: %s", e.Status, e.Description)
}

// Temporary reports whether resending the same message can succeed.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken   string
	ChatID     string
	APIBase    string
	MaxRetries int
	Backoff    time.Duration
	Client     *http.Client
	Log        *logrus.Logger
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, log *logrus.Logger) *TelegramNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken:   botToken,
		ChatID:     chatID,
		APIBase:    defaultAPIBase,
		MaxRetries: 3,
		Backoff:    time.Second,
		Client: &http.Client{
			Timeout:   35 * time.Second,
			Transport: transport,
		},
		Log: log,
	}
}

func (t *TelegramNotifier) endpoint(method string) string {
	base := t.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	return fmt.Sprintf("%s/bot%s/%s", base, t.BotToken, method)
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableNotification   bool   `json:"disable_notification,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// Send posts one message. Command replies go out through here with sound.
func (t *TelegramNotifier) Send(msg Message) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                t.ChatID,
		Text:                  msg.Text,
		ParseMode:             "HTML",
		DisableNotification:   msg.Urgency == Quiet,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}
	resp, err := t.Client.Post(t.endpoint("sendMessage"), "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post sendMessage: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	raw, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode, Description: string(raw)}
	var r apiResponse
	if json.Unmarshal(raw, &r) == nil && r.Description != "" {
		apiErr.Description = r.Description
		apiErr.RetryAfter = time.Duration(r.Parameters.RetryAfter) * time.Second
	}
	return apiErr
}

// Notify sends msg, retrying transport failures, 429 and 5xx with exponential
// backoff. Telegram's retry_after wins over the computed delay. Other 4xx
// answers (bad token, chat not found) fail immediately.
func (t *TelegramNotifier) Notify(ctx context.Context, msg Message) error {
	var lastErr error
	for attempt := 0; attempt <= t.MaxRetries; attempt++ {
		lastErr = t.Send(msg)
		if lastErr == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && !apiErr.Temporary() {
			return lastErr
		}
		if attempt == t.MaxRetries {
			break
		}

		wait := t.Backoff << uint(attempt)
		if apiErr != nil && apiErr.RetryAfter > wait {
			wait = apiErr.RetryAfter
		}
		t.Log.WithError(lastErr).WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"wait":    wait,
		}).Warn("telegram send failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("telegram send gave up after %d attempts: %w", t.MaxRetries+1, lastErr)
}
