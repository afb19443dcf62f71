package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/rfscore-cli/internal/config"
	"github.com/sells-group/rfscore-cli/internal/scorer"
)

func TestWriteTable_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, scorer.DefaultTable()))

	var got map[string]config.ScoringTable
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, scorer.DefaultTable(), got["scoring"])
	assert.Contains(t, buf.String(), "photo_bonus: 0")
}
