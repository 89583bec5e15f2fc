package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
llm:
  base_url: "https://api.example.com/v1"
  api_key: "sk-test"
  model: "gpt-4o-mini"
search:
  provider: "searxng"
  searxng:
    base_url: "http://localhost:8888"
    timeout: 10
analysis:
  domains: ["market", "legal"]
concurrency:
  qps: 2
  rpm: 30
log:
  level: "debug"
output:
  dir: "out/reports"
server:
  addr: ":9090"
  timeout: "5s"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "searxng", cfg.Search.Provider)
	assert.Equal(t, []string{"market", "legal"}, cfg.Analysis.Domains)
	assert.Equal(t, 30, cfg.Concurrency.RPM)
	assert.Equal(t, "out/reports", cfg.Output.Dir)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "llm:\n  api_key: k\n  model: m\n"))
	require.NoError(t, err)

	assert.Equal(t, "reports", cfg.Output.Dir)
	assert.Equal(t, 60, cfg.Concurrency.RPM)
	assert.Equal(t, 1, cfg.Concurrency.QPS)
	assert.Equal(t, 6, cfg.Analysis.EvidenceResults)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestValidateRejectsMissingLLM(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "log:\n  level: info\n"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigBadYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "llm: [unclosed"))
	require.Error(t, err)
}
