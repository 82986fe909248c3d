package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestAuditSinkWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAuditSink(&buf)

	events := []AuditEvent{
		{EventType: "user_login", Details: map[string]any{"user_id": "u1"}},
		{EventType: "user_logout", Details: map[string]any{"user_id": "u1"}},
	}
	for _, e := range events {
		if err := sink.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var got AuditEvent
		if err := json.Unmarshal([]byte(line), &got); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if got.ID == "" {
			t.Error("event id should be generated")
		}
		if got.Timestamp.IsZero() {
			t.Error("timestamp should be stamped")
		}
		if got.EventType != events[i].EventType {
			t.Errorf("expected event type %q, got %q", events[i].EventType, got.EventType)
		}
	}
}

func TestAuditSinkKeepsExplicitMetadata(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAuditSink(&buf)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := sink.Write(AuditEvent{ID: "fixed", Timestamp: ts, EventType: "x"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var got AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.ID != "fixed" || !got.Timestamp.Equal(ts) {
		t.Errorf("explicit id/timestamp should be kept: %+v", got)
	}
}

func TestOpenAuditFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.log")
	sink, err := OpenAuditFile(path)
	if err != nil {
		t.Fatalf("OpenAuditFile failed: %v", err)
	}
	defer sink.Close()

	if err := sink.Write(AuditEvent{EventType: "probe"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	if !strings.Contains(string(data), `"event_type":"probe"`) {
		t.Errorf("audit file missing event: %s", data)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestLogSecurityEventWritesBothSinks(t *testing.T) {
	var normal, audit bytes.Buffer
	l := &Logger{
		logger:   zerolog.New(&normal),
		service:  "test",
		redactor: NewRedactor(),
		audit:    NewAuditSink(&audit),
	}

	l.LogSecurityEvent("user_login", map[string]any{
		"user_id":  "user123",
		"password": "x",
	})

	normalOut := normal.String()
	if !strings.Contains(normalOut, "user_login") || !strings.Contains(normalOut, "user123") {
		t.Errorf("normal sink missing event data: %s", normalOut)
	}
	if strings.Contains(normalOut, `"password":"x"`) {
		t.Errorf("normal sink leaked password: %s", normalOut)
	}

	var event AuditEvent
	if err := json.Unmarshal(audit.Bytes(), &event); err != nil {
		t.Fatalf("audit line is not valid JSON: %v", err)
	}
	if event.EventType != "user_login" {
		t.Errorf("expected event type user_login, got %q", event.EventType)
	}
	if event.Details["password"] != Marker {
		t.Errorf("password should be redacted in audit record, got %v", event.Details["password"])
	}
	if event.Details["user_id"] != "user123" {
		t.Errorf("user_id should be intact, got %v", event.Details["user_id"])
	}
}

func TestLogSecurityEventAuditFailureDegradesToWarning(t *testing.T) {
	var normal bytes.Buffer
	l := &Logger{
		logger:   zerolog.New(&normal),
		service:  "test",
		redactor: NewRedactor(),
		audit:    NewAuditSink(failingWriter{}),
	}

	// Must not panic or surface an error to the caller.
	l.LogSecurityEvent("user_login", map[string]any{"user_id": "u1"})

	scanner := bufio.NewScanner(&normal)
	var warned bool
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), "audit sink write failed") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a warning about the failed audit write, got: %s", normal.String())
	}
}

func TestLogSecurityEventWithoutSink(t *testing.T) {
	var normal bytes.Buffer
	l := &Logger{
		logger:   zerolog.New(&normal),
		service:  "test",
		redactor: NewRedactor(),
	}

	l.LogSecurityEvent("config_change", map[string]any{"path": "logging.level"})
	if !strings.Contains(normal.String(), "config_change") {
		t.Errorf("event should still reach the normal sink: %s", normal.String())
	}
}
