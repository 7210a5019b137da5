package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_EmailTimeoutMatchesGlobalDefault(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, cfg.TimeoutMs, cfg.Tasks[TaskExtractEmail].TimeoutMs)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadConfig_TaskTimeoutOverrides(t *testing.T) {
	t.Setenv("DOCKET_LLM_TIMEOUT_MS", "9000")
	t.Setenv("DOCKET_LLM_EMAIL_TIMEOUT_MS", "15000")

	cfg := LoadConfig()

	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskExtractEmail))
	assert.Equal(t, 90000, cfg.TaskTimeout(TaskExtractDocument))
	assert.Equal(t, 9000, cfg.TaskTimeout(TaskType("unknown")))
}

func TestLoadConfig_InvalidTaskTimeoutOverrideIgnored(t *testing.T) {
	t.Setenv("DOCKET_LLM_EMAIL_TIMEOUT_MS", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, 60000, cfg.TaskTimeout(TaskExtractEmail))
}

func TestLoadConfig_APIKeyPrecedence(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "from-anthropic")
	assert.Equal(t, "from-anthropic", LoadConfig().APIKey)

	t.Setenv("DOCKET_LLM_API_KEY", "from-docket")
	assert.Equal(t, "from-docket", LoadConfig().APIKey)
}
