package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newBufferedLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(LogConfig{Level: LevelDebug, Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_EmptyOutputPaths(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapLogger_FieldsAreEncoded(t *testing.T) {
	l, buf := newBufferedLogger(t)

	l.Info("stage complete",
		String("stage", "charge_neutral"),
		Int("count", 12),
		Float64("tau", 0.836),
		Bool("species_unique", true),
		Duration("elapsed", 2*time.Second),
		Candidate([]string{"Y", "Te", "Li", "O"}),
		Strings("symbols", []string{"Y", "Te"}),
		Err(errors.New("boom")),
	)

	out := buf.String()
	assert.Contains(t, out, `"stage":"charge_neutral"`)
	assert.Contains(t, out, `"count":12`)
	assert.Contains(t, out, `"candidate":"Y-Te-Li-O"`)
	assert.Contains(t, out, `"symbols":["Y","Te"]`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core).Named("gscreen").With(String("run_id", "r1"))

	l.Warn("radius missing")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gscreen", entries[0].LoggerName)
	assert.Equal(t, "r1", entries[0].ContextMap()["run_id"])
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestDefault_SetAndGet(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(NewLoggerFromCore(core))
	SetDefault(nil)

	Default().Info("hello")
	assert.Equal(t, 1, logs.Len())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("d")
		l.Info("i")
		l.With(Int("k", 1)).Named("x").Error("e")
	})
}

func TestSetLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo})
	require.NoError(t, err)
	child := l.Named("screening")

	zl := l.(*zapLogger)
	assert.False(t, zl.z.Core().Enabled(zapcore.DebugLevel))

	assert.True(t, SetLevel(l, LevelDebug))
	assert.True(t, child.(*zapLogger).z.Core().Enabled(zapcore.DebugLevel))

	assert.False(t, SetLevel(NewNopLogger(), LevelDebug))
	assert.False(t, SetLevel(NewLoggerFromCore(zapcore.NewNopCore()), LevelDebug))
}
