package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driving"
)

func TestMCPServeCmd_Registered(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "mcp" {
			found = true
			break
		}
	}
	assert.True(t, found, "mcp command should be registered")
	assert.Contains(t, mcpServeCmd.Long, "analyze_content_gaps")
}

func TestMCPServeCmd_BuildFailure(t *testing.T) {
	useTestServices(t)
	newAnalysis = func(context.Context, *domain.AppSettings) (driving.GapAnalysisService, func(), error) {
		return nil, nil, domain.ErrLLMUnavailable
	}

	_, err := executeCommand(t, "mcp", "serve")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestMCPServeCmd_ServicesNotConfigured(t *testing.T) {
	resetServices()
	resetFlags(rootCmd)

	err := runMCPServe(mcpServeCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service not configured")
}
