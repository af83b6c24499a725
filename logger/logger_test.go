package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	t.Run("console output", func(t *testing.T) {
		require.NoError(t, Initialize(false))
		require.NotNil(t, Logger)
		assert.False(t, JSONOutput)
	})

	t.Run("json output", func(t *testing.T) {
		require.NoError(t, Initialize(true))
		require.NotNil(t, Logger)
		assert.True(t, JSONOutput)
	})
}

func TestSafeBeforeInitialize(t *testing.T) {
	// The package-level helpers must not panic even if Initialize was
	// never called; init() installs a no-op logger.
	assert.NotPanics(t, func() {
		Infow("message", "key", "value")
		Warnw("message", "key", "value")
		Debugw("message", "key", "value")
	})
}
