package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"csvquery/internal/errors"
	"csvquery/internal/profiling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresGroqKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("CONFIG_FILE", "")
	for _, key := range []string{"LLM_MODEL", "LLM_BASE_URL", "AGENT_TIMEOUT", "AGENT_MAX_ROWS", "PORT",
		"MAX_UPLOAD_BYTES", "OVERVIEW_SECTIONS", "OVERVIEW_PREVIEW_ROWS", "DATABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gsk_test", cfg.AI.GroqKey)
	assert.Equal(t, "llama3-70b-8192", cfg.AI.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.AI.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 500, cfg.Agent.MaxRows)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, profiling.AllSections(), cfg.Overview.Sections)
	assert.Equal(t, 5, cfg.Overview.PreviewRows)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadOverlayFileIsOverriddenByEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csvquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
groq_api_key: from-file
LLM_MODEL: mixtral-8x7b-32768
AGENT_TIMEOUT: 15s
AGENT_MAX_ROWS: 100
OVERVIEW_SECTIONS: [shape, missing]
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("AGENT_TIMEOUT", "")
	t.Setenv("OVERVIEW_SECTIONS", "")
	t.Setenv("AGENT_MAX_ROWS", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.AI.GroqKey)
	assert.Equal(t, "mixtral-8x7b-32768", cfg.AI.Model)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 42, cfg.Agent.MaxRows)
	assert.Equal(t, []profiling.Section{profiling.SectionShape, profiling.SectionMissing}, cfg.Overview.Sections)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("CONFIG_FILE", "")

	t.Setenv("OVERVIEW_SECTIONS", "shape,histogram")
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	t.Setenv("OVERVIEW_SECTIONS", "")
	t.Setenv("AGENT_MAX_ROWS", "-1")
	_, err = Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestDurationAcceptsSeconds(t *testing.T) {
	t.Setenv("AGENT_TIMEOUT", "30")
	assert.Equal(t, 30*time.Second, source{}.getEnvDurationOrDefault("AGENT_TIMEOUT", time.Second))
}

func TestBoolHelper(t *testing.T) {
	t.Setenv("COOKIE_SECURE", "true")
	assert.True(t, source{}.getEnvBoolOrDefault("COOKIE_SECURE", false))

	t.Setenv("COOKIE_SECURE", "maybe")
	assert.False(t, source{}.getEnvBoolOrDefault("COOKIE_SECURE", false))
}
