package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/ticketctx/internal/common"
)

func TestConfigureLogging(t *testing.T) {
	tests := []struct {
		name       string
		httpAddr   string
		level      string
		wantLevel  string
		wantOutput []string
	}{
		{"stdio quietens info", "", "info", "warn", []string{"file"}},
		{"stdio keeps explicit debug", "", "debug", "debug", []string{"file"}},
		{"http keeps info", ":8080", "info", "info", []string{"stderr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := common.NewDefaultConfig()
			config.MCP.HTTPAddr = tt.httpAddr
			config.Logging.Level = tt.level

			configureLogging(config)

			assert.Equal(t, tt.wantLevel, config.Logging.Level)
			assert.Equal(t, tt.wantOutput, config.Logging.Output)
		})
	}
}
