package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProductionDefaultsToInfo(t *testing.T) {
	l, err := New("production", "")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
}

func TestNewDevelopmentDefaultsToDebug(t *testing.T) {
	l, err := New("development", "")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}

func TestNewLevelOverride(t *testing.T) {
	l, err := New("development", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("development", "loud")
	assert.Error(t, err)
}
