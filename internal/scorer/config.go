// Package scorer turns an inspection record into points under a two-tier
// coefficient table.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/rfscore-cli/internal/config"
	"github.com/sells-group/rfscore-cli/internal/model"
)

// DefaultTable returns the reference coefficient table. Reports with photos
// score on the SIM tier, reports without on the NÃO tier.
func DefaultTable() config.ScoringTable {
	return config.ScoringTable{
		WithPhotos: config.ScoringTier{
			RFBase:         1,
			Regularization: 5,
			Action:         1,
			OfficialNotice: 1,
			NoticeReply:    2,
			Protocol:       1,
			PhotoBonus:     1,
		},
		WithoutPhotos: config.ScoringTier{
			RFBase:         0.5,
			Regularization: 2.5,
			Action:         0.5,
			OfficialNotice: 0.5,
			NoticeReply:    1,
			Protocol:       0.5,
			PhotoBonus:     0,
		},
	}
}

// TierFor selects the tier by photo status.
func TierFor(t config.ScoringTable, photoStatus model.YesNo) config.ScoringTier {
	if photoStatus == model.Yes {
		return t.WithPhotos
	}
	return t.WithoutPhotos
}

// ValidateTable checks that no coefficient is negative, which keeps every
// score non-negative.
func ValidateTable(t config.ScoringTable) error {
	var errs []string

	tiers := []struct {
		name string
		tier config.ScoringTier
	}{
		{"with_photos", t.WithPhotos},
		{"without_photos", t.WithoutPhotos},
	}
	for _, tt := range tiers {
		for _, c := range coefficients(tt.tier) {
			if c.value < 0 {
				errs = append(errs, fmt.Sprintf("%s.%s must be >= 0", tt.name, c.name))
			}
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: table validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

type coefficient struct {
	name  string
	value float64
}

// coefficients lists a tier in report order.
func coefficients(t config.ScoringTier) []coefficient {
	return []coefficient{
		{"rf_base", t.RFBase},
		{"regularization", t.Regularization},
		{"action", t.Action},
		{"official_notice", t.OfficialNotice},
		{"notice_reply", t.NoticeReply},
		{"protocol", t.Protocol},
		{"photo_bonus", t.PhotoBonus},
	}
}
