package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("not-a-level")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestWithComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	WithComponent(zap.New(core), "allocator").Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "allocator", logs.All()[0].ContextMap()["component"])

	assert.NotPanics(t, func() { WithComponent(nil, "x").Info("dropped") })
}
