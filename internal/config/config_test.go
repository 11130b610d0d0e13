package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvPrefix+"_CONFIG", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.Server.Timeout)
	assert.Equal(t, 96, cfg.UI.CollapseBelow)
	assert.True(t, cfg.UI.AltScreen)
	assert.True(t, cfg.UI.RestrictInputs)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.NotEmpty(t, cfg.Log.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYDESK_SERVER_BASE_URL", "https://study.example.com")
	t.Setenv("STUDYDESK_SERVER_TIMEOUT", "45s")
	t.Setenv("STUDYDESK_UI_COLLAPSE_BELOW", "120")
	t.Setenv("STUDYDESK_UI_RESTRICT_INPUTS", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://study.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 120, cfg.UI.CollapseBelow)
	assert.False(t, cfg.UI.RestrictInputs)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "studydesk.yaml")
	body := []byte("server:\n  base_url: http://10.0.0.5:9000\nhistory:\n  path: /tmp/history.json\nllm:\n  provider: openai\n  model: gpt-4o-mini\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:9000", cfg.Server.BaseURL)
	assert.Equal(t, "/tmp/history.json", cfg.History.Path)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		set  func(v *viper.Viper)
	}{
		{"relative url", func(v *viper.Viper) { v.Set("server.base_url", "localhost:8000/api") }},
		{"negative timeout", func(v *viper.Viper) { v.Set("server.timeout", -time.Second) }},
		{"negative breakpoint", func(v *viper.Viper) { v.Set("ui.collapse_below", -1) }},
		{"unknown provider", func(v *viper.Viper) { v.Set("llm.provider", "llamafile") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			tc.set(v)
			_, err := FromViper(v)
			assert.Error(t, err)
		})
	}
}
