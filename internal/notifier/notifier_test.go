package notifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuyouSentinel/internal/model"
)

func TestYen(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "¥0"},
		{1030000, "¥1,030,000"},
		{927000.4, "¥927,000"},
		{-23000, "-¥23,000"},
		{-0.2, "¥0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Yen(tt.in))
	}
}

func TestFormatStatus(t *testing.T) {
	out := FormatStatus(950000, model.Status{
		DependentRemaining: 80000,
		DependentProgress:  0.922,
		RiskLevel:          model.RiskWarning,
		SafetyMargin:       -23000,
	})
	assert.Contains(t, out, "¥950,000")
	assert.Contains(t, out, "92.2%")
	assert.Contains(t, out, "-¥23,000")
	assert.NotContains(t, out, "超えています")
}

func TestFormatAlerts_EscapesAndSkipsEmpty(t *testing.T) {
	assert.Empty(t, FormatAlerts(nil))
	out := FormatAlerts([]model.Alert{{Type: model.AlertCritical, Title: "A<B", Message: "m", Actions: []string{"x"}}})
	assert.Contains(t, out, "A&lt;B")
	assert.Contains(t, out, "🚨")
}

func TestFormatActionPlan_SkipsEmptySections(t *testing.T) {
	out := FormatActionPlan(model.ActionPlan{LongTerm: []string{"来年の計画"}})
	assert.NotContains(t, out, "今すぐ")
	assert.Contains(t, out, "来年の計画")
}

func newTestNotifier(url string) *TelegramNotifier {
	tn := NewTelegramNotifier("token", "42", "", nil)
	tn.APIBase = url
	tn.Backoff = 10 * time.Millisecond
	return tn
}

func TestTelegramNotifier_NotifyRetriesServerErrors(t *testing.T) {
	var calls int32
	var quiet atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/bottoken/sendMessage"))
		body, _ := io.ReadAll(r.Body)
		var payload sendMessageRequest
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "42", payload.ChatID)
		assert.Equal(t, "HTML", payload.ParseMode)
		quiet.Store(payload.DisableNotification)
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := newTestNotifier(srv.URL)
	require.NoError(t, tn.Notify(context.Background(), Message{Text: "月次サマリー", Urgency: Quiet}))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.True(t, quiet.Load())
}

func TestTelegramNotifier_NotifyRateLimited(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 0","parameters":{"retry_after":0}}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Notify(context.Background(), Message{Text: "x", Urgency: Loud}))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTelegramNotifier_NotifyPermanentFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).Notify(context.Background(), Message{Text: "x", Urgency: Loud})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Request: chat not found", apiErr.Description)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx is not retried")
}

func TestTelegramNotifier_NotifyGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tn := newTestNotifier(srv.URL)
	tn.MaxRetries = 1
	err := tn.Notify(context.Background(), Message{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestTelegramNotifier_Polling(t *testing.T) {
	var replies int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if r.URL.Query().Get("offset") == "0" {
				w.Write([]byte(`{"ok":true,"result":[` +
					`{"update_id":6,"message":{"text":"/status","chat":{"id":999}}},` +
					`{"update_id":7,"message":{"text":" /status ","chat":{"id":42}}}]}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			atomic.AddInt32(&replies, 1)
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	tn := newTestNotifier(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 1)
	go tn.StartPolling(ctx, func(cmd string) string {
		got <- cmd
		return "ok"
	})

	select {
	case cmd := <-got:
		assert.Equal(t, "/status", cmd)
	case <-time.After(3 * time.Second):
		t.Fatal("command not delivered")
	}
	cancel()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&replies) == 1 }, 3*time.Second, 20*time.Millisecond)
}
