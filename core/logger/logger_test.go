package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonLinesRecorder(t *testing.T) {
	var buf bytes.Buffer
	session := NewJsonLinesLogRecorder(&buf).NewSession()

	require.NoError(t, session.RecordEvent(Event{SessionStart: &SessionStart{PID: 1234}}))
	require.NoError(t, session.RecordEvent(Event{PipelineRun: &PipelineRun{
		Programs: []string{"ls", "grep"},
		Status:   1,
	}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	require.NotNil(t, first.Event.SessionStart)
	assert.Equal(t, 1234, first.Event.SessionStart.PID)
	assert.NotZero(t, first.TimestampMicros)

	require.NotNil(t, second.Event.PipelineRun)
	assert.Equal(t, []string{"ls", "grep"}, second.Event.PipelineRun.Programs)
	assert.Equal(t, 1, second.Event.PipelineRun.Status)

	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestSessionIDsDiffer(t *testing.T) {
	lg := NewJsonLinesLogRecorder(&bytes.Buffer{})
	assert.NotEqual(t, lg.NewSession().SessionID(), lg.NewSession().SessionID())
}

func TestNilLoggerDiscards(t *testing.T) {
	var lg *Logger
	session := lg.NewSession()
	assert.Nil(t, session)

	assert.NoError(t, session.RecordEvent(Event{SessionStart: &SessionStart{}}))
	assert.Empty(t, session.SessionID())
}
