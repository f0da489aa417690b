package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitLevels(t *testing.T) {
	require.NoError(t, Init(false))
	assert.False(t, GetSugaredLogger().Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, GetSugaredLogger().Desugar().Core().Enabled(zapcore.InfoLevel))

	require.NoError(t, Init(true))
	assert.True(t, GetSugaredLogger().Desugar().Core().Enabled(zapcore.DebugLevel))
	Sync()
}

func TestGetSugaredLoggerFallback(t *testing.T) {
	log, baseLogger = nil, nil
	assert.NotNil(t, GetSugaredLogger())
	Infof("fallback logger works for %s", t.Name())
}
