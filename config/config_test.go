package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/tool/courier"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "supportmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Engine.MaxIterations)
	assert.Equal(t, courier.Names(), cfg.Tools.Enabled)
	assert.Equal(t, "memory", cfg.Session.Backend)
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
model:
  provider: anthropic
  name: claude-3-5-sonnet-20241022
engine:
  max_iterations: 4
tools:
  enabled: [track_package, search_knowledge_base]
  timeout: 3s
  tracking_method: post
session:
  backend: sqlite
  sqlite_path: /tmp/sessions.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, int64(1024), cfg.Model.MaxTokens, "untouched keys keep defaults")
	assert.Equal(t, 4, cfg.Engine.MaxIterations)
	assert.Equal(t, DefaultInstructions, cfg.Engine.Instructions)
	assert.Equal(t, []string{courier.TrackPackage, courier.SearchKnowledgeBase}, cfg.Tools.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, "sqlite", cfg.Session.Backend)

	ts := cfg.Tools.Toolset()
	assert.Equal(t, "POST", ts.TrackingMethod)
	assert.Equal(t, "http://localhost:8081/track", ts.TrackingURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "model: [unterminated"))
	assert.Error(t, err)
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("SUPPORTMESH_MODEL_PROVIDER", "anthropic")
	t.Setenv("SUPPORTMESH_MAX_ITERATIONS", "6")
	t.Setenv("SUPPORTMESH_TOOLS_ENABLED", "create_support_ticket, track_package")
	t.Setenv("SUPPORTMESH_TOOL_TIMEOUT", "250ms")
	t.Setenv("SUPPORTMESH_S3_BUCKET", "transcripts")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, 6, cfg.Engine.MaxIterations)
	assert.Equal(t, []string{"create_support_ticket", "track_package"}, cfg.Tools.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Tools.Timeout)
	assert.Equal(t, "transcripts", cfg.Session.S3.StoreConfig().Bucket)
}

func TestApplyEnv_CollectsParseErrors(t *testing.T) {
	t.Setenv("SUPPORTMESH_MAX_ITERATIONS", "many")
	t.Setenv("SUPPORTMESH_TOOL_TIMEOUT", "soon")

	err := ApplyEnv(Default())
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Model.Provider = "llama"
	cfg.Engine.MaxIterations = 0
	cfg.Tools.Enabled = []string{"refund"}
	cfg.Session.Backend = "s3"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 5)
	assert.Contains(t, err.Error(), "model.provider")
	assert.Contains(t, err.Error(), "session.s3.bucket")
}

func TestValidate_OnlyEnabledToolsNeedURLs(t *testing.T) {
	cfg := Default()
	cfg.Tools.Enabled = []string{courier.SearchKnowledgeBase}
	cfg.Tools.TrackingURL = ""
	cfg.Tools.TicketURL = ""
	assert.NoError(t, cfg.Validate())

	cfg.Tools.KnowledgeURL = "ftp://kb"
	assert.Error(t, cfg.Validate())
}
