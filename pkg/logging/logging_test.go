package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetup(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := Setup(debug, "docweave", "test")
		require.NoError(t, err)
		require.NotNil(t, logger)
		assert.Same(t, logger, Logger)
		assert.Same(t, logger, zap.L())
		assert.Equal(t, debug, logger.Core().Enabled(zap.DebugLevel))
	}
}
