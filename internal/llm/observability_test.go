package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapObserver_LogsSuccessAndFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	obs := NewZapObserver(zap.New(core))

	obs.OnCallComplete(LLMCallEvent{Task: TaskIntake, Model: "gpt-4o-mini", LatencyMs: 120, Success: true})
	obs.OnCallComplete(LLMCallEvent{Task: TaskDraft, Model: "gpt-4o", Streamed: true, ErrorCode: "TIMEOUT"})

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "llm", entries[0].LoggerName)
	assert.Equal(t, "ok", entries[0].ContextMap()["status"])
	assert.Equal(t, "intake", entries[0].ContextMap()["task"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "err:TIMEOUT", entries[1].ContextMap()["status"])
	assert.Equal(t, true, entries[1].ContextMap()["streamed"])
}
