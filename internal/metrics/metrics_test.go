package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rfscore-cli/internal/model"
)

func TestObserveDocument(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveDocument(model.StatusOK, 120*time.Millisecond)
	m.ObserveDocument(model.StatusOK, 80*time.Millisecond)
	m.ObserveDocument(model.StatusError, 30*time.Second)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("OK")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("ERROR")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.DocumentDuration))
}

func TestAddScore(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.AddScore(model.Yes, 14)
	m.AddScore(model.Yes, 2.5)
	m.AddScore(model.No, 0.5)
	m.AddScore(model.No, 0)

	assert.InDelta(t, 16.5, testutil.ToFloat64(m.ScoreTotal.WithLabelValues("with_photos")), 1e-9)
	assert.InDelta(t, 0.5, testutil.ToFloat64(m.ScoreTotal.WithLabelValues("without_photos")), 1e-9)
}

func TestNewWithRegistry_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewWithRegistry(reg)
	require.NoError(t, err)

	_, err = NewWithRegistry(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics: register collector")
}

func TestWriteTextfile(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.ObserveDocument(model.StatusOK, time.Second)
	m.AddScore(model.No, 3)

	path := filepath.Join(t.TempDir(), "rfscore.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `rfscore_documents_total{status="OK"} 1`)
	assert.Contains(t, string(data), `rfscore_batch_score_total{tier="without_photos"} 3`)
	assert.Contains(t, string(data), "rfscore_document_duration_seconds_count 1")
}

func TestWriteTextfile_BadDir(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	err = m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
