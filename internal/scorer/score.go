package scorer

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/rfscore-cli/internal/config"
	"github.com/sells-group/rfscore-cli/internal/model"
)

// ErrNotScorable is returned when an ERROR record is passed to Score.
var ErrNotScorable = eris.New("scorer: record is not scorable")

// Breakdown is a score with each component's contribution.
type Breakdown struct {
	Tier           model.YesNo `json:"tier" yaml:"tier"`
	RFBase         float64     `json:"rf_base" yaml:"rf_base"`
	Actions        float64     `json:"actions" yaml:"actions"`
	OfficialNotice float64     `json:"official_notice" yaml:"official_notice"`
	NoticeReply    float64     `json:"notice_reply" yaml:"notice_reply"`
	Protocol       float64     `json:"protocol" yaml:"protocol"`
	PhotoBonus     float64     `json:"photo_bonus" yaml:"photo_bonus"`
	Regularization float64     `json:"regularization" yaml:"regularization"`
	Total          float64     `json:"total" yaml:"total"`
}

// Score computes the points of rec under table. The tier is picked by photo
// status only. The total is rounded half away from zero to 2 decimals.
func Score(rec model.Record, table config.ScoringTable) (Breakdown, error) {
	if !rec.OK() {
		return Breakdown{}, eris.Wrapf(ErrNotScorable, "file %s has status %s", rec.FileID, rec.Status)
	}

	photo := model.YesNoOf(rec.PhotoStatus == model.Yes)
	tier := TierFor(table, photo)

	b := Breakdown{
		Tier:           photo,
		RFBase:         tier.RFBase,
		Actions:        tier.Action * float64(rec.ActionCount),
		OfficialNotice: tier.OfficialNotice * float64(flag(rec.HasOfficialNotice)),
		NoticeReply:    tier.NoticeReply * float64(flag(rec.HasNoticeReply)),
		PhotoBonus:     tier.PhotoBonus,
	}
	if HasProtocol(rec.ProtocolNumber) {
		b.Protocol = tier.Protocol
	}
	if rec.Regularized == model.Yes {
		b.Regularization = tier.Regularization
	}

	b.Total = Round2(b.RFBase + b.Actions + b.OfficialNotice + b.NoticeReply +
		b.Protocol + b.PhotoBonus + b.Regularization)
	return b, nil
}

// Total is Score without the breakdown. ERROR records score 0.
func Total(rec model.Record, table config.ScoringTable) float64 {
	b, err := Score(rec, table)
	if err != nil {
		return 0
	}
	return b.Total
}

// HasProtocol reports whether a protocol number is present.
func HasProtocol(protocol string) bool {
	return strings.TrimSpace(protocol) != ""
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// flag clamps a 0/1 indicator.
func flag(v int) int {
	if v > 0 {
		return 1
	}
	return 0
}
