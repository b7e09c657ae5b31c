package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WritesKeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).With("component", "profile")

	l.Info("profile saved", "session_id", "s1")
	l.Warn("remote sync failed", "err", "timeout")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "profile saved", entries[0].Message)
		assert.Equal(t, "s1", entries[0].ContextMap()["session_id"])
		assert.Equal(t, "profile", entries[0].ContextMap()["component"])
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
	}
}

func TestLogger_NilIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("ignored")
		l.With("k", "v").Error("ignored")
		l.Sync()
	})
}
