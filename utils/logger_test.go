package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/nsneverhax/nhxinfobot/utils"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   string
		enabled zapcore.Level
		wantErr bool
	}{
		{level: "", enabled: zapcore.InfoLevel},
		{level: "debug", enabled: zapcore.DebugLevel},
		{level: "WARN", enabled: zapcore.WarnLevel},
		{level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			logger, err := utils.NewLogger(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			if tt.enabled > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.enabled-1))
			}
		})
	}
}

func TestLogWithoutChannel(t *testing.T) {
	utils.InitLogger(nil, "", zaptest.NewLogger(t))
	t.Cleanup(func() { utils.InitLogger(nil, "", zap.NewNop()) })

	assert.NotPanics(t, func() {
		utils.Info("test", "op", "details")
		utils.Warn("test", "op", "details")
		utils.Error("test", "op", "details")
	})
}
