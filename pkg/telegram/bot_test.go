package telegram_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"ai-task-orchestrator/pkg/telegram"
)

func TestBot(t *testing.T) {
	var calls atomic.Int64

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		calls.Add(1)

		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		text := req["text"].(string)
		_, hasMode := req["parse_mode"]

		switch {
		case text == "cause_error":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok": false, "description": "invalid text"}`))
		case text == "cause_500":
			w.WriteHeader(http.StatusInternalServerError)
		case text == "bad *markdown" && hasMode:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok": false, "description": "Bad Request: can't parse entities: can't find end of the entity"}`))
		default:
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"ok": true}`))
		}
	}))
	defer ts.Close()

	bot := telegram.NewBot("test-token")
	bot.SetAPIURL(ts.URL) // Route calls to test server instead of api.telegram.org

	t.Run("SendMessage Success", func(t *testing.T) {
		err := bot.SendMessage(12345, "Hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SendMessageWithMode Success", func(t *testing.T) {
		err := bot.SendMessageWithMode(12345, "Hello", "Markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SendMessage API Failed", func(t *testing.T) {
		err := bot.SendMessage(12345, "cause_error")
		if err == nil || !strings.Contains(err.Error(), "invalid text") {
			t.Fatalf("expected api failure error, got: %v", err)
		}
	})

	t.Run("SendMessage HTTP Failed", func(t *testing.T) {
		err := bot.SendMessage(12345, "cause_500")
		if err == nil {
			t.Fatalf("expected http error")
		}
	})

	t.Run("Markdown Parse Failure Retries Plain", func(t *testing.T) {
		before := calls.Load()
		err := bot.SendMessageWithMode(12345, "bad *markdown", "Markdown")
		if err != nil {
			t.Fatalf("expected plain-text retry to succeed, got: %v", err)
		}
		if got := calls.Load() - before; got != 2 {
			t.Fatalf("expected 2 API calls (markdown then plain), got %d", got)
		}
	})

	t.Run("Plain Parse Failure Does Not Retry", func(t *testing.T) {
		before := calls.Load()
		err := bot.SendMessage(12345, "cause_error")
		if err == nil {
			t.Fatalf("expected error")
		}
		if got := calls.Load() - before; got != 1 {
			t.Fatalf("expected 1 API call, got %d", got)
		}
	})

	t.Run("Invalid API URL logic", func(t *testing.T) {
		badBot := telegram.NewBot("test")
		badBot.SetAPIURL("http://invalid-url.local:1234")
		err := badBot.SendMessage(12345, "fail")
		if err == nil {
			t.Errorf("expected network failure on invalid domain")
		}
	})
}
