// Package report aggregates scored records and renders them as spreadsheet,
// CSV, PDF and console output.
package report

import (
	"time"

	"github.com/sells-group/rfscore-cli/internal/config"
	"github.com/sells-group/rfscore-cli/internal/extract"
	"github.com/sells-group/rfscore-cli/internal/model"
	"github.com/sells-group/rfscore-cli/internal/scorer"
)

// Note is the complementary information of one report.
type Note struct {
	FileID       string
	ReportNumber string
	Text         string
}

// Summary holds the batch-level aggregates. Counts other than TotalFiles and
// Errors cover valid records only.
type Summary struct {
	TotalFiles int
	Valid      int
	Errors     int

	Actions         int
	OfficialNotices int
	NoticeReplies   int
	Protocols       int

	PhotosYes      int
	PhotosNo       int
	RegularizedYes int
	RegularizedNo  int

	TotalScore         float64
	ScoreWithPhotos    float64
	ScoreWithoutPhotos float64

	// PeriodStart and PeriodEnd are the earliest and latest report dates
	// (DD/MM/YYYY); both are empty when no valid record has a date.
	PeriodStart string
	PeriodEnd   string

	// Inspector is the full name from the first valid record that has one.
	Inspector string

	Notes []Note
}

// Summarize aggregates records under table. ERROR records only count toward
// TotalFiles and Errors.
func Summarize(records []model.Record, table config.ScoringTable) Summary {
	s := Summary{TotalFiles: len(records)}
	var first, last time.Time

	for _, rec := range records {
		if !rec.OK() {
			s.Errors++
			continue
		}
		s.Valid++

		s.Actions += rec.ActionCount
		s.OfficialNotices += rec.HasOfficialNotice
		s.NoticeReplies += rec.HasNoticeReply
		if scorer.HasProtocol(rec.ProtocolNumber) {
			s.Protocols++
		}

		score := scorer.Total(rec, table)
		s.TotalScore += score
		if rec.PhotoStatus == model.Yes {
			s.PhotosYes++
			s.ScoreWithPhotos += score
		} else {
			s.PhotosNo++
			s.ScoreWithoutPhotos += score
		}

		if rec.Regularized == model.Yes {
			s.RegularizedYes++
		} else {
			s.RegularizedNo++
		}

		if s.Inspector == "" {
			s.Inspector = rec.InspectorFullName
		}

		if d, err := time.Parse(extract.DateLayout, rec.ReportDate); err == nil {
			if first.IsZero() || d.Before(first) {
				first = d
			}
			if last.IsZero() || d.After(last) {
				last = d
			}
		}

		if rec.ExtraNotes != "" {
			s.Notes = append(s.Notes, Note{FileID: rec.FileID, ReportNumber: rec.ReportNumber, Text: rec.ExtraNotes})
		}
	}

	s.TotalScore = scorer.Round2(s.TotalScore)
	s.ScoreWithPhotos = scorer.Round2(s.ScoreWithPhotos)
	s.ScoreWithoutPhotos = scorer.Round2(s.ScoreWithoutPhotos)
	if !first.IsZero() {
		s.PeriodStart = first.Format(extract.DateLayout)
		s.PeriodEnd = last.Format(extract.DateLayout)
	}
	return s
}

// Period renders the report period, or "Não disponível".
func (s Summary) Period() string {
	if s.PeriodStart == "" {
		return "Não disponível"
	}
	return s.PeriodStart + " a " + s.PeriodEnd
}
