package report

import (
	"fmt"
	"strings"
	"time"
)

// FormatSummary renders the batch summary printed after a run.
func FormatSummary(runID string, s Summary, elapsed time.Duration) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Batch Report: %s\n", runID)
	fmt.Fprintf(&b, "Inspector: %s\n", orDash(s.Inspector))
	fmt.Fprintf(&b, "Period: %s\n\n", s.Period())

	b.WriteString("## Documents\n")
	fmt.Fprintf(&b, "- Total: %d\n", s.TotalFiles)
	fmt.Fprintf(&b, "- Valid: %d\n", s.Valid)
	fmt.Fprintf(&b, "- Errors: %d\n", s.Errors)
	fmt.Fprintf(&b, "- Elapsed: %s\n\n", elapsed.Round(time.Millisecond))

	b.WriteString("## Indicators\n")
	fmt.Fprintf(&b, "- Actions: %d\n", s.Actions)
	fmt.Fprintf(&b, "- Official notices: %d\n", s.OfficialNotices)
	fmt.Fprintf(&b, "- Notice replies: %d\n", s.NoticeReplies)
	fmt.Fprintf(&b, "- Protocols: %d\n", s.Protocols)
	fmt.Fprintf(&b, "- Regularized: %d yes, %d no\n\n", s.RegularizedYes, s.RegularizedNo)

	b.WriteString("## Score\n")
	fmt.Fprintf(&b, "- With photos: %d records, %.2f points\n", s.PhotosYes, s.ScoreWithPhotos)
	fmt.Fprintf(&b, "- Without photos: %d records, %.2f points\n", s.PhotosNo, s.ScoreWithoutPhotos)
	fmt.Fprintf(&b, "- Total: %.2f\n", s.TotalScore)

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
