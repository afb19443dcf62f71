package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rfscore-cli/internal/config"
	"github.com/sells-group/rfscore-cli/internal/model"
	"github.com/sells-group/rfscore-cli/internal/scorer"
)

const (
	fontFamily  = "Helvetica"
	pageMargin  = 6.0
	breakMargin = 15.0
)

// PDFOptions carries the report header.
type PDFOptions struct {
	Title       string
	Supervision string
	LogoPath    string
	GeneratedAt time.Time
}

// PDFOptionsFrom builds header options from the report config.
func PDFOptionsFrom(cfg config.ReportConfig, now time.Time) PDFOptions {
	return PDFOptions{
		Title:       cfg.Title,
		Supervision: cfg.Supervision,
		LogoPath:    cfg.LogoPath,
		GeneratedAt: now,
	}
}

type tableCol struct {
	header string
	width  float64
}

var recordTable = []tableCol{
	{"RF", 20},
	{"RF Principal", 20},
	{"Data ART", 16},
	{"Data Rel Ant", 20},
	{"Regularização", 22},
	{"Data", 18},
	{"Ações", 10},
	{"Ofícios", 13},
	{"Resposta", 15},
	{"Protocolos", 17},
	{"Fotos", 11},
	{"Pontuação", 16},
}

// pdfWriter wraps fpdf with the UTF-8 to cp1252 translation the core fonts need.
type pdfWriter struct {
	*fpdf.Fpdf
	tr func(string) string
}

func (p *pdfWriter) cell(w, h float64, s, border string, ln int, align string) {
	p.CellFormat(w, h, p.tr(s), border, ln, align, false, 0, "")
}

// RenderPDF writes the consolidated report. The record table lists OK
// records only; ERROR records count toward "Total de arquivos".
func RenderPDF(w io.Writer, records []model.Record, table config.ScoringTable, opts PDFOptions) error {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	sum := Summarize(records, table)

	doc := fpdf.New("P", "mm", "A4", "")
	p := &pdfWriter{Fpdf: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
	p.SetMargins(pageMargin, 10, pageMargin)
	p.SetAutoPageBreak(true, breakMargin)
	p.AddPage()

	p.header(sum, opts)
	p.records(Rows(records, table), sum)
	p.notes(sum)
	p.photoSummary(sum)
	p.regularizationSummary(sum)
	p.referenceTable(table)

	if err := p.Error(); err != nil {
		return eris.Wrap(err, "report: render pdf")
	}
	if err := p.Output(w); err != nil {
		return eris.Wrap(err, "report: write pdf")
	}
	return nil
}

func (p *pdfWriter) header(sum Summary, opts PDFOptions) {
	if opts.LogoPath != "" {
		if _, err := os.Stat(opts.LogoPath); err == nil {
			p.ImageOptions(opts.LogoPath, 50, 10, 110, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
			p.SetY(50)
		} else {
			zap.L().Warn("report: logo not found, skipping", zap.String("path", opts.LogoPath))
		}
	}

	p.SetFont(fontFamily, "B", 16)
	p.cell(0, 10, opts.Title, "", 1, "C")
	p.Ln(5)

	p.SetFont(fontFamily, "", 12)
	p.cell(0, 10, "Agente de Fiscalização: "+sum.Inspector, "", 1, "")
	p.cell(0, 10, "Supervisão: "+opts.Supervision, "", 1, "")
	p.cell(0, 10, "Período: "+sum.Period(), "", 1, "")
	p.cell(0, 10, "Gerado em: "+opts.GeneratedAt.Format("02/01/2006 15:04:05"), "", 1, "")
	p.cell(0, 10, fmt.Sprintf("Total de arquivos: %d", sum.TotalFiles), "", 1, "")
	p.Ln(5)
}

func (p *pdfWriter) records(rows []Row, sum Summary) {
	p.SetFont(fontFamily, "B", 8)
	for _, c := range recordTable {
		p.cell(c.width, 8, c.header, "1", 0, "C")
	}
	p.Ln(-1)

	p.SetFont(fontFamily, "", 7)
	for _, r := range rows {
		if !r.Scored {
			continue
		}
		rec := r.Record
		values := []string{
			rec.ReportNumber,
			rec.PrimaryReportNumber,
			truncate(rec.ARTDate, 10),
			truncate(rec.PreviousReportDate, 10),
			string(rec.Regularized),
			truncate(rec.ReportDate, 10),
			fmt.Sprint(rec.ActionCount),
			fmt.Sprint(rec.HasOfficialNotice),
			fmt.Sprint(rec.HasNoticeReply),
			fmt.Sprint(boolInt(scorer.HasProtocol(rec.ProtocolNumber))),
			string(rec.PhotoStatus),
			fmt.Sprintf("%.2f", r.Score),
		}
		for i, v := range values {
			p.cell(recordTable[i].width, 6, v, "1", 0, "C")
		}
		p.Ln(-1)
	}

	var body float64
	for _, c := range recordTable[:len(recordTable)-1] {
		body += c.width
	}
	p.SetFont(fontFamily, "B", 8)
	p.cell(body, 6, "TOTAIS", "1", 0, "R")
	p.cell(recordTable[len(recordTable)-1].width, 6, fmt.Sprintf("%.2f", sum.TotalScore), "1", 1, "C")
	p.Ln(10)
}

func (p *pdfWriter) notes(sum Summary) {
	p.SetFont(fontFamily, "B", 14)
	p.cell(0, 10, "INFORMAÇÕES COMPLEMENTARES", "", 1, "C")
	p.Ln(5)

	if len(sum.Notes) == 0 {
		p.SetFont(fontFamily, "", 12)
		p.cell(0, 10, "Nenhuma informação complementar disponível.", "", 1, "C")
		p.Ln(5)
		return
	}
	for _, n := range sum.Notes {
		p.SetFont(fontFamily, "B", 12)
		p.cell(30, 10, "RF:", "", 0, "")
		p.SetFont(fontFamily, "", 12)
		p.cell(0, 10, n.ReportNumber, "", 1, "")
		p.MultiCell(0, 8, p.tr(n.Text), "", "", false)
		p.Ln(5)
	}
}

func (p *pdfWriter) photoSummary(sum Summary) {
	p.SetFont(fontFamily, "B", 12)
	p.cell(0, 10, "RESUMO DE PONTUAÇÃO POR STATUS DE FOTOS", "", 1, "C")

	p.SetFont(fontFamily, "B", 10)
	p.cell(60, 8, "Status Fotos", "1", 0, "C")
	p.cell(60, 8, "Quantidade", "1", 0, "C")
	p.cell(60, 8, "Pontuação Total", "1", 1, "C")

	p.SetFont(fontFamily, "", 10)
	p.cell(60, 8, string(model.Yes), "1", 0, "C")
	p.cell(60, 8, fmt.Sprint(sum.PhotosYes), "1", 0, "C")
	p.cell(60, 8, fmt.Sprintf("%.2f", sum.ScoreWithPhotos), "1", 1, "C")
	p.cell(60, 8, string(model.No), "1", 0, "C")
	p.cell(60, 8, fmt.Sprint(sum.PhotosNo), "1", 0, "C")
	p.cell(60, 8, fmt.Sprintf("%.2f", sum.ScoreWithoutPhotos), "1", 1, "C")

	p.SetFont(fontFamily, "B", 10)
	p.cell(60, 8, "TOTAL", "1", 0, "C")
	p.cell(60, 8, fmt.Sprint(sum.Valid), "1", 0, "C")
	p.cell(60, 8, fmt.Sprintf("%.2f", sum.TotalScore), "1", 1, "C")
	p.Ln(10)
}

func (p *pdfWriter) regularizationSummary(sum Summary) {
	p.SetFont(fontFamily, "B", 12)
	p.cell(0, 10, "RESUMO DE REGULARIZAÇÕES", "", 1, "C")

	p.SetFont(fontFamily, "B", 10)
	p.cell(90, 8, "Status Regularização", "1", 0, "C")
	p.cell(90, 8, "Quantidade", "1", 1, "C")

	p.SetFont(fontFamily, "", 10)
	p.cell(90, 8, string(model.Yes), "1", 0, "C")
	p.cell(90, 8, fmt.Sprint(sum.RegularizedYes), "1", 1, "C")
	p.cell(90, 8, string(model.No), "1", 0, "C")
	p.cell(90, 8, fmt.Sprint(sum.RegularizedNo), "1", 1, "C")
	p.Ln(10)
}

func (p *pdfWriter) referenceTable(table config.ScoringTable) {
	p.SetFont(fontFamily, "B", 12)
	p.cell(0, 10, "TABELA DE PONTUAÇÃO - REFERÊNCIA", "", 1, "C")

	p.SetFont(fontFamily, "B", 9)
	p.cell(40, 8, "Item", "1", 0, "C")
	p.cell(25, 8, string(model.Yes), "1", 0, "C")
	p.cell(25, 8, string(model.No), "1", 1, "C")

	p.SetFont(fontFamily, "", 8)
	for _, item := range ReferenceItems(table) {
		p.cell(40, 6, item.Name, "1", 0, "L")
		p.cell(25, 6, formatCoefficient(item.WithPhotos), "1", 0, "C")
		p.cell(25, 6, formatCoefficient(item.WithoutPhotos), "1", 1, "C")
	}
}

// ReferenceItem is one row of the coefficient reference table.
type ReferenceItem struct {
	Name          string
	WithPhotos    float64
	WithoutPhotos float64
}

// ReferenceItems lists the coefficients of table in report order.
func ReferenceItems(table config.ScoringTable) []ReferenceItem {
	y, n := table.WithPhotos, table.WithoutPhotos
	return []ReferenceItem{
		{"RF", y.RFBase, n.RFBase},
		{"Regularização", y.Regularization, n.Regularization},
		{"Ações", y.Action, n.Action},
		{"Ofícios", y.OfficialNotice, n.OfficialNotice},
		{"Resposta Ofício", y.NoticeReply, n.NoticeReply},
		{"Protocolos", y.Protocol, n.Protocol},
		{"Fotos", y.PhotoBonus, n.PhotoBonus},
	}
}

// formatCoefficient drops the decimals of whole coefficients.
func formatCoefficient(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
