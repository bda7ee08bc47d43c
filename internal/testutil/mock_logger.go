// Package testutil holds shared test helpers.  It must only be imported from
// _test.go files.
package testutil

import (
	"sync"

	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
)

// LogEntry is a single captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// CapturingLogger implements logging.Logger and records every entry so tests
// can assert on emitted logs.  Safe for concurrent use.
type CapturingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewCapturingLogger returns an empty CapturingLogger.
func NewCapturingLogger() *CapturingLogger {
	return &CapturingLogger{}
}

func (c *CapturingLogger) record(level, msg string, fields []logging.Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

func (c *CapturingLogger) Debug(msg string, fields ...logging.Field) { c.record("debug", msg, fields) }
func (c *CapturingLogger) Info(msg string, fields ...logging.Field)  { c.record("info", msg, fields) }
func (c *CapturingLogger) Warn(msg string, fields ...logging.Field)  { c.record("warn", msg, fields) }
func (c *CapturingLogger) Error(msg string, fields ...logging.Field) { c.record("error", msg, fields) }
func (c *CapturingLogger) Fatal(msg string, fields ...logging.Field) { c.record("fatal", msg, fields) }

func (c *CapturingLogger) With(_ ...logging.Field) logging.Logger { return c }
func (c *CapturingLogger) Named(_ string) logging.Logger          { return c }

// Entries returns a copy of all captured entries.
func (c *CapturingLogger) Entries() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// MessagesAt returns the messages logged at the given level, in order.
func (c *CapturingLogger) MessagesAt(level string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
