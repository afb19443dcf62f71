package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, 30, cfg.Batch.TaskTimeoutSecs)
	assert.Equal(t, 30*time.Second, cfg.Batch.TaskTimeout())
	assert.Equal(t, "pdftotext", cfg.Text.PdfToTextPath)
	assert.False(t, cfg.Text.Layout)
	assert.True(t, cfg.Photos.Enabled)
	assert.Equal(t, "pdfimages", cfg.Photos.PdfImagesPath)
	assert.Equal(t, 100, cfg.Photos.MinWidth)
	assert.Equal(t, 100, cfg.Photos.MinHeight)
	assert.Equal(t, int64(1000), cfg.Photos.MinBytes)
	assert.Equal(t, "SBXD", cfg.Report.Supervision)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NotEmpty(t, cfg.Scratch.Dir)

	assert.InDelta(t, 1.0, cfg.Scoring.WithPhotos.RFBase, 0.001)
	assert.InDelta(t, 5.0, cfg.Scoring.WithPhotos.Regularization, 0.001)
	assert.InDelta(t, 2.0, cfg.Scoring.WithPhotos.NoticeReply, 0.001)
	assert.InDelta(t, 1.0, cfg.Scoring.WithPhotos.PhotoBonus, 0.001)
	assert.InDelta(t, 0.5, cfg.Scoring.WithoutPhotos.RFBase, 0.001)
	assert.InDelta(t, 2.5, cfg.Scoring.WithoutPhotos.Regularization, 0.001)
	assert.InDelta(t, 0.0, cfg.Scoring.WithoutPhotos.PhotoBonus, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
batch:
  workers: 8
log:
  level: debug
  format: console
scoring:
  with_photos:
    action: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 3.0, cfg.Scoring.WithPhotos.Action, 0.001)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Batch.TaskTimeoutSecs)
	assert.InDelta(t, 1.0, cfg.Scoring.WithPhotos.RFBase, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
batch:
  workers: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("RFSCORE_BATCH_WORKERS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Batch.Workers)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RFSCORE_REPORT_SUPERVISION=SBXN\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("RFSCORE_REPORT_SUPERVISION") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "SBXN", cfg.Report.Supervision)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("batch: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func validDefaults() *Config {
	cfg := &Config{}
	cfg.Batch.Workers = 4
	cfg.Batch.TaskTimeoutSecs = 30
	cfg.Text.PdfToTextPath = "pdftotext"
	cfg.Scratch.Dir = "/tmp/rfscore"
	cfg.Photos.Enabled = true
	cfg.Photos.PdfImagesPath = "pdfimages"
	return cfg
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validDefaults().Validate())
}

func TestValidate_Errors(t *testing.T) {
	cfg := validDefaults()
	cfg.Batch.Workers = 0
	cfg.Batch.TaskTimeoutSecs = -1
	cfg.Photos.PdfImagesPath = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch.workers must be > 0")
	assert.Contains(t, err.Error(), "batch.task_timeout_secs must be > 0")
	assert.Contains(t, err.Error(), "photos.pdfimages_path is required")
}

func TestValidate_PhotosDisabledSkipsPhotoChecks(t *testing.T) {
	cfg := validDefaults()
	cfg.Photos.Enabled = false
	cfg.Photos.PdfImagesPath = ""
	assert.NoError(t, cfg.Validate())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
