// Package record builds one inspection record per document.
package record

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rfscore-cli/internal/extract"
	"github.com/sells-group/rfscore-cli/internal/model"
	"github.com/sells-group/rfscore-cli/internal/pdftext"
	"github.com/sells-group/rfscore-cli/internal/photo"
	"github.com/sells-group/rfscore-cli/internal/section"
)

// ErrTimeout marks a document that exceeded its time budget.
var ErrTimeout = eris.New("record: document timed out")

// Outcome is the result of the per-document pipeline: a record, or the
// failure that prevented one.
type Outcome struct {
	FileID string
	Record model.Record
	Err    error
}

// Failed builds a failure outcome.
func Failed(fileID string, err error) Outcome {
	return Outcome{FileID: fileID, Err: err}
}

// Final returns the record, or the safe-default ERROR record on failure.
func (o Outcome) Final() model.Record {
	if o.Err == nil {
		return o.Record
	}
	reason := "Erro no processamento"
	if eris.Is(o.Err, ErrTimeout) {
		reason = "Timeout ou erro"
	}
	return model.ErrorRecord(o.FileID, reason)
}

// TextSource yields the per-page text of a PDF.
type TextSource interface {
	Pages(ctx context.Context, pdfPath string) ([]string, error)
}

// PhotoLocator counts the photos of a PDF, writing them under dir.
type PhotoLocator interface {
	Locate(ctx context.Context, pdfPath string, pages []string, dir string) (photo.Result, error)
}

// PhotoDirFunc names the scratch directory of a document's photos.
type PhotoDirFunc func(doc model.Document) string

// Builder runs the full per-document pipeline.
type Builder struct {
	text     TextSource
	photos   PhotoLocator
	photoDir PhotoDirFunc
}

// NewBuilder creates a Builder. photos may be nil, in which case every
// record has zero photos.
func NewBuilder(text TextSource, photos PhotoLocator, photoDir PhotoDirFunc) *Builder {
	return &Builder{text: text, photos: photos, photoDir: photoDir}
}

// Build reads doc and returns its outcome. It never panics: a panic anywhere
// in the pipeline becomes a failure outcome for doc.
func (b *Builder) Build(ctx context.Context, doc model.Document) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failed(doc.FileID, eris.Errorf("record: panic processing %s: %v", doc.FileID, r))
		}
	}()

	pages, err := b.text.Pages(ctx, doc.Path)
	if ctx.Err() != nil {
		return Failed(doc.FileID, eris.Wrap(ErrTimeout, ctx.Err().Error()))
	}
	if err != nil {
		return Failed(doc.FileID, eris.Wrapf(err, "record: read %s", doc.FileID))
	}

	rec := BuildFromText(doc.FileID, pdftext.FullText(pages))

	if b.photos != nil {
		dir := ""
		if b.photoDir != nil {
			dir = b.photoDir(doc)
		}
		res, err := b.photos.Locate(ctx, doc.Path, pages, dir)
		switch {
		case ctx.Err() != nil:
			return Failed(doc.FileID, eris.Wrap(ErrTimeout, ctx.Err().Error()))
		case err != nil:
			// Photo problems never fail the document; it just scores without photos.
			zap.L().Warn("record: photo extraction failed",
				zap.String("file", doc.FileID),
				zap.Error(err),
			)
		default:
			rec.SetPhotos(res.Count, res.Files)
		}
	}

	return Outcome{FileID: doc.FileID, Record: rec}
}

// BuildFromText extracts every field from the full text of a report. It is a
// pure function of its inputs: the same text always yields the same record.
func BuildFromText(fileID, text string) model.Record {
	rec := model.NewRecord(fileID)

	basic := extract.BasicFields(text)
	rec.ReportNumber = basic.ReportNumber
	rec.StatusLabel = basic.StatusLabel
	rec.InspectorRaw = basic.InspectorRaw
	rec.ReportDate = basic.ReportDate
	rec.TriggeringFactText = basic.TriggeringFact
	rec.ProtocolNumber = basic.Protocol
	if p := extract.ProtocolFromFact(basic.TriggeringFact); p != "" {
		rec.ProtocolNumber = p
	}
	rec.InspectorFullName = extract.InspectorName(basic.InspectorRaw)
	rec.PrimaryReportNumber = extract.PrimaryReportNumber(text)

	for _, step := range sectionSteps {
		content, ok := section.Locate(text, step.title)
		if !ok {
			continue
		}
		step.apply(&rec, text, content)
	}

	// Always last: derived only from the two dates.
	rec.Regularized = extract.Regularization(rec.ARTDate, rec.PreviousReportDate)

	zap.L().Debug("record: built",
		zap.String("file", fileID),
		zap.Int("actions", rec.ActionCount),
		zap.String("art_date", rec.ARTDate),
		zap.String("previous_report_date", rec.PreviousReportDate),
		zap.String("regularized", string(rec.Regularized)),
		zap.Bool("extra_notes", rec.ExtraNotes != ""),
	)
	return rec
}

// sectionStep fills the fields read from one section. full is the whole
// document text, content the located section.
type sectionStep struct {
	title string
	apply func(rec *model.Record, full, content string)
}

var sectionSteps = []sectionStep{
	{section.Contracted, func(rec *model.Record, full, _ string) {
		rec.ActionCount = extract.ActionCount(full)
	}},
	{section.Requested, func(rec *model.Record, _, content string) {
		rec.HasOfficialNotice = extract.OfficialNotice(content)
	}},
	{section.Received, func(rec *model.Record, _, content string) {
		rec.HasNoticeReply = extract.NoticeReply(content)
		rec.ARTDate = extract.ARTDate(content)
	}},
	{section.OtherInfo, func(rec *model.Record, _, content string) {
		rec.PreviousReportDate = extract.PreviousReportDate(content)
		rec.ExtraNotes = extract.ExtraNotes(content)
	}},
}
