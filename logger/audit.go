package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEvent is one security-relevant record written to the audit sink.
type AuditEvent struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	EventType string         `json:"event_type"`
	Service   string         `json:"service,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// AuditSink appends security events to a line-oriented destination, one
// JSON object per line. Writes are serialized; the underlying writer does
// not need to be safe for concurrent use.
type AuditSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewAuditSink wraps an io.Writer as an audit sink.
func NewAuditSink(w io.Writer) *AuditSink {
	return &AuditSink{w: w}
}

// OpenAuditFile opens (or creates) an append-only audit log file, creating
// parent directories as needed.
func OpenAuditFile(path string) (*AuditSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &AuditSink{w: f, closer: f}, nil
}

// Write appends one event. The caller is expected to have redacted the
// details already.
func (s *AuditSink) Write(event AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// Close closes the underlying file, when the sink owns one.
func (s *AuditSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
