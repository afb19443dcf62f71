// Package extract holds the single-purpose field extractors of an inspection
// report. Every extractor is total: input it cannot make sense of yields the
// zero value of its result type, never an error.
package extract

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/rfscore-cli/internal/model"
	"github.com/sells-group/rfscore-cli/internal/section"
)

// DateLayout is the canonical DD/MM/YYYY form of every date field.
const DateLayout = "02/01/2006"

// Basic holds the label-value fields read from the report header.
type Basic struct {
	ReportNumber   string
	StatusLabel    string
	InspectorRaw   string
	ReportDate     string
	TriggeringFact string
	Protocol       string
}

var (
	reportNumberRe   = regexp.MustCompile(`Número\s*:\s*([^\n]+)`)
	statusLabelRe    = regexp.MustCompile(`Situação\s*:\s*([^\n]+)`)
	inspectorRe      = regexp.MustCompile(`Agente\s+de\s+Fiscalização\s*:\s*([^\n]+)`)
	reportDateRe     = regexp.MustCompile(`Data\s+Relatório\s*:\s*([^\n]+)`)
	triggeringFactRe = regexp.MustCompile(`Fato\s+Gerador\s*:\s*([^\n]+)`)
	protocolRe       = regexp.MustCompile(`Protocolo\s*:\s*([^\n]+)`)

	dateRe          = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})`)
	inspectorNameRe = regexp.MustCompile(`^\d+\s*-\s*([A-Za-zÀ-ÿ\s]+)`)
	primaryReportRe = regexp.MustCompile(`(?i)RF Principal\s*:\s*(\d+)`)
	factProtocolRe  = regexp.MustCompile(`(?i)(?:PROCESSO|PROTOCOLO)[/\s]*(\d+)`)

	contractedStartRe = regexp.MustCompile(`(?i)04\s*-\s*` + section.Loose(strings.TrimPrefix(section.Contracted, "04 - ")))
	contractedEndRe   = regexp.MustCompile(`(?i)05\s*-\s*Documentos\s+Solicitados`)
	activityRe        = regexp.MustCompile(`(?i)Ramo\s+Atividade\s*:`)

	previousReportRe = regexp.MustCompile(`(?i)Data\s+do\s+Relat[óo]rio\s+Anterior\s*:\s*(\d{2}/\d{2}/\d{4})`)
	extraNotesRe     = regexp.MustCompile(`(?is)Informações\s+Complementares\s*:\s*[^(]*\(([^)]+)\)`)
)

// Official-notice markers, tried in order.
var officialNoticeRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)of[ií]cio`),
	regexp.MustCompile(`(?i)of\.`),
	regexp.MustCompile(`(?i)ofc`),
	regexp.MustCompile(`(?i)oficio`),
	regexp.MustCompile(`(?i)of[\s\-]?[0-9]`),
}

var noticeReplyRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)c[óo]pia\s+art`),
}

// ART date candidates: "OUTROS - DD/MM/YYYY" first, then any non-digit gap.
var artDateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)OUTROS\s*[-\s]*(\d{2}/\d{2}/\d{4})`),
	regexp.MustCompile(`(?i)OUTROS[^\d]*(\d{2}/\d{2}/\d{4})`),
}

// Clean NFC-normalizes s, turns newlines into spaces and collapses whitespace runs.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// BasicFields reads the header label-value pairs from the full text.
func BasicFields(text string) Basic {
	b := Basic{
		ReportNumber:   labelValue(reportNumberRe, text),
		StatusLabel:    labelValue(statusLabelRe, text),
		InspectorRaw:   labelValue(inspectorRe, text),
		ReportDate:     labelValue(reportDateRe, text),
		TriggeringFact: labelValue(triggeringFactRe, text),
		Protocol:       labelValue(protocolRe, text),
	}
	b.ReportDate = NormalizeDateField(b.ReportDate)
	return b
}

// NormalizeDateField replaces a field holding a DD/MM/YYYY substring with that
// date in canonical form, or with "" when the date is not a real calendar day.
// Fields without a date substring are returned unchanged.
func NormalizeDateField(raw string) string {
	m := dateRe.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	d, ok := ValidDate(m[1])
	if !ok {
		return ""
	}
	return d
}

// ValidDate parses a DD/MM/YYYY string and re-emits it canonically.
func ValidDate(s string) (string, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil || t.Year() < 1 {
		return "", false
	}
	return t.Format(DateLayout), true
}

// InspectorName extracts the name from an "<id> - <name>" inspector field.
// Any other shape is returned as is.
func InspectorName(raw string) string {
	if raw == "" {
		return ""
	}
	m := inspectorNameRe.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	return strings.TrimSpace(m[1])
}

// PrimaryReportNumber returns the digits after "RF Principal :".
func PrimaryReportNumber(text string) string {
	return firstGroup(primaryReportRe, text)
}

// ActionCount counts "Ramo Atividade :" between the contracted-parties heading
// and the "05 - Documentos Solicitados" heading (or the end of text).
func ActionCount(text string) int {
	if section.IsPlaceholder(text) {
		return 0
	}
	body, ok := section.Bounded(text, contractedStartRe, contractedEndRe)
	if !ok {
		return 0
	}
	return len(activityRe.FindAllStringIndex(body, -1))
}

// OfficialNotice is 1 when the requested-documents section mentions an official notice.
func OfficialNotice(sectionText string) int {
	return anyMatch(officialNoticeRes, sectionText)
}

// NoticeReply is 1 when the received-documents section holds a "Cópia ART".
func NoticeReply(sectionText string) int {
	return anyMatch(noticeReplyRes, sectionText)
}

// ProtocolFromFact pulls the process or protocol number out of the
// triggering-fact text.
func ProtocolFromFact(fact string) string {
	return firstGroup(factProtocolRe, fact)
}

// ARTDate returns the validated date following "OUTROS" in the received-documents section.
func ARTDate(sectionText string) string {
	if section.IsPlaceholder(sectionText) {
		return ""
	}
	for _, re := range artDateRes {
		if m := re.FindStringSubmatch(sectionText); m != nil {
			d, _ := ValidDate(m[1])
			return d
		}
	}
	return ""
}

// PreviousReportDate returns the validated "Data do Relatório Anterior" date.
func PreviousReportDate(sectionText string) string {
	if section.IsPlaceholder(sectionText) {
		return ""
	}
	d, _ := ValidDate(firstGroup(previousReportRe, sectionText))
	return d
}

// ExtraNotes returns the parenthesized text following "Informações Complementares :".
func ExtraNotes(sectionText string) string {
	if section.IsPlaceholder(sectionText) {
		return ""
	}
	return Clean(firstGroup(extraNotesRe, sectionText))
}

// Regularization is YES when both dates are valid and the ART date is on or
// after the previous report date.
func Regularization(artDate, previousReportDate string) model.YesNo {
	art, err := time.Parse(DateLayout, artDate)
	if err != nil {
		return model.No
	}
	prev, err := time.Parse(DateLayout, previousReportDate)
	if err != nil {
		return model.No
	}
	return model.YesNoOf(!art.Before(prev))
}

func labelValue(re *regexp.Regexp, text string) string {
	return Clean(firstGroup(re, text))
}

func firstGroup(re *regexp.Regexp, text string) string {
	if text == "" {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func anyMatch(res []*regexp.Regexp, text string) int {
	if section.IsPlaceholder(text) {
		return 0
	}
	for _, re := range res {
		if re.MatchString(text) {
			return 1
		}
	}
	return 0
}
