package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Level(t *testing.T) {
	l, err := New("prod", "warn")
	require.NoError(t, err)
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zap.InfoLevel))
	assert.True(t, l.SugaredLogger.Desugar().Core().Enabled(zap.WarnLevel))

	// 不正なレベルはinfo
	l, err = New("dev", "loud")
	require.NoError(t, err)
	assert.True(t, l.SugaredLogger.Desugar().Core().Enabled(zap.InfoLevel))
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zap.DebugLevel))
}

func TestWith_CarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("user_id", "u1").Info("item added", "product_id", int64(3))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "item added", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "u1", fields["user_id"])
	assert.Equal(t, int64(3), fields["product_id"])
}
