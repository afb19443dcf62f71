package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rfscore-cli/internal/model"
)

func TestDefaultTable(t *testing.T) {
	tbl := DefaultTable()
	require.NoError(t, ValidateTable(tbl))

	assert.InDelta(t, 1.0, tbl.WithPhotos.RFBase, 1e-9)
	assert.InDelta(t, 5.0, tbl.WithPhotos.Regularization, 1e-9)
	assert.InDelta(t, 2.0, tbl.WithPhotos.NoticeReply, 1e-9)
	assert.InDelta(t, 1.0, tbl.WithPhotos.PhotoBonus, 1e-9)
	assert.InDelta(t, 0.5, tbl.WithoutPhotos.RFBase, 1e-9)
	assert.InDelta(t, 2.5, tbl.WithoutPhotos.Regularization, 1e-9)
	assert.InDelta(t, 0.0, tbl.WithoutPhotos.PhotoBonus, 1e-9)
}

func TestTierFor(t *testing.T) {
	tbl := DefaultTable()
	assert.Equal(t, tbl.WithPhotos, TierFor(tbl, model.Yes))
	assert.Equal(t, tbl.WithoutPhotos, TierFor(tbl, model.No))
	assert.Equal(t, tbl.WithoutPhotos, TierFor(tbl, ""))
}

func TestValidateTable(t *testing.T) {
	tbl := DefaultTable()
	tbl.WithPhotos.Action = -1
	tbl.WithoutPhotos.PhotoBonus = -0.5

	err := ValidateTable(tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "with_photos.action must be >= 0")
	assert.Contains(t, err.Error(), "without_photos.photo_bonus must be >= 0")
	assert.NotContains(t, err.Error(), "rf_base")
}
