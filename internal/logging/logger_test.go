package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit_Level(t *testing.T) {
	lg, err := Init("DEBUG", "dev")
	require.NoError(t, err)
	require.Equal(t, zapcore.DebugLevel, lg.Level.Level())

	lg, err = Init("громко", "prod")
	require.NoError(t, err)
	require.Equal(t, zapcore.InfoLevel, lg.Level.Level())
	require.False(t, lg.Base.Core().Enabled(zapcore.DebugLevel))

	lg.Level.SetLevel(zapcore.WarnLevel)
	require.False(t, lg.Component("rating").Core().Enabled(zapcore.InfoLevel))
}
