package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"stocknews-notifier/internal/domain/entity"
)

func TestLogNotifier_Notify(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	if err := n.Notify(context.Background(), testWatch(), testNews()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log: %v", err)
	}
	if rec["msg"] != "NASDAQ:AAPL - Apple unveils new chip" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["level"] != "INFO" {
		t.Errorf("level = %v", rec["level"])
	}
	if rec["url"] != "https://finance.yahoo.com/news/apple-chip-1.html" {
		t.Errorf("url = %v", rec["url"])
	}
}

func TestLogNotifier_NilInput(t *testing.T) {
	n := NewLogNotifier(nil)
	if err := n.Notify(context.Background(), nil, testNews()); !errors.Is(err, entity.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}
