// Package logger is a standardized event logging framework for the shell.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures shell interaction events.
type Logger struct {
	Record LogRecorder
}

// LogEntry is a single recorded event.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`
	Event           Event  `json:"event"`
}

// Event holds exactly one of the concrete event types.
type Event struct {
	SessionStart     *SessionStart     `json:"session_start,omitempty"`
	SessionEnd       *SessionEnd       `json:"session_end,omitempty"`
	PipelineRun      *PipelineRun      `json:"pipeline_run,omitempty"`
	BackgroundLaunch *BackgroundLaunch `json:"background_launch,omitempty"`
	ParseError       *ParseError       `json:"parse_error,omitempty"`
	Interrupt        *Interrupt        `json:"interrupt,omitempty"`
}

// SessionStart marks the beginning of an interactive session.
type SessionStart struct {
	PID int `json:"pid"`
}

// SessionEnd marks the end of a session and its final status.
type SessionEnd struct {
	Status int `json:"status"`
}

// PipelineRun records a completed pipeline. Background is set when the
// pipeline was launched in the background and has since been reaped.
type PipelineRun struct {
	// Programs lists argv[0] of each command in order.
	Programs   []string `json:"programs"`
	Background bool     `json:"background,omitempty"`
	Status     int      `json:"status"`
}

// BackgroundLaunch records a detached pipeline and its reported pid.
type BackgroundLaunch struct {
	PID int `json:"pid"`
}

// ParseError records a line the parser rejected.
type ParseError struct {
	Message string `json:"message"`
}

// Interrupt records delivery of an interrupt to the foreground group.
type Interrupt struct {
	PGID int `json:"pgid,omitempty"`
}

// NewJsonLinesLogRecorder creates a Logger that exports events in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

func (l *Logger) recordEvent(sessionID string, event Event) error {
	if l == nil || l.Record == nil {
		return nil
	}
	return l.Record(&LogEntry{
		TimestampMicros: time.Now().UnixNano() / int64(time.Microsecond),
		SessionID:       sessionID,
		Event:           event,
	})
}

// NewSession creates a logger with an attached session ID. A nil Logger
// yields a nil SessionLogger, which discards events.
func (l *Logger) NewSession() *SessionLogger {
	if l == nil {
		return nil
	}
	return &SessionLogger{logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// SessionLogger logs events with a shared session ID. A nil SessionLogger
// discards everything, so call sites don't need to guard.
type SessionLogger struct {
	logger    *Logger
	sessionID string
}

// SessionID returns the identifier attached to this session's events.
func (l *SessionLogger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.sessionID
}

// RecordEvent stores one event, tagging it with the session ID.
func (l *SessionLogger) RecordEvent(event Event) error {
	if l == nil {
		return nil
	}
	return l.logger.recordEvent(l.sessionID, event)
}
