// Package section splits inspection-report text into its numbered sections.
package section

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Section titles as they appear in the report template.
const (
	Contracted = "04 - Identificação dos Contratados, Responsáveis Técnicos e/ou Fiscalizados"
	Requested  = "05 - Documentos Solicitados / Expedidos"
	Received   = "06 - Documentos Recebidos"
	OtherInfo  = "07 - Outras Informações"
)

// PhotosHeading matches the heading of the photo section on a single page.
var PhotosHeading = regexp.MustCompile(`(?i)08\s*-?\s*Fotos`)

// boundaryPattern matches the start of the next numbered heading: two digits,
// a dash and a capital letter. The digits must not be the tail of a longer
// number or of a date, so "OUTROS - 15/02/2024" and "123-A" never end a section.
var boundaryPattern = regexp.MustCompile(`(?:^|[^\d/.])(\d{2}\s*-\s*[A-Z])`)

// placeholderPattern only folds accents inside the markers themselves; a trailing
// word must be plain ASCII, so "SEM OFÍCIO" is content, not a marker.
var placeholderPattern = regexp.MustCompile(`(?i)^(SEM|NAO|NÃO|NAO INFORMADO|NÃO INFORMADO|SEM INFORMACAO|SEM INFORMAÇÃO)\s*[A-Z]*\s*$`)

// Locate returns the content of the first section titled title, up to the next
// numbered heading or the end of text. The second return value is false when
// the title is missing or the section only holds a "no information" marker.
func Locate(text, title string) (string, bool) {
	if text == "" || strings.TrimSpace(title) == "" {
		return "", false
	}
	for _, re := range titlePatterns(title) {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		content := strings.TrimSpace(untilBoundary(text[loc[1]:]))
		if IsPlaceholder(content) {
			continue
		}
		return content, true
	}
	return "", false
}

// Bounded returns the text between the first match of start and the first
// following match of end (or the end of text). It is used for sub-ranges whose
// closing heading is known, unlike Locate which stops at any heading.
func Bounded(text string, start, end *regexp.Regexp) (string, bool) {
	loc := start.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	if stop := end.FindStringIndex(rest); stop != nil {
		rest = rest[:stop[0]]
	}
	return rest, true
}

// IsPlaceholder reports whether s is empty or consists solely of a marker such
// as "SEM", "NÃO INFORMADO" or "SEM INFORMAÇÃO".
func IsPlaceholder(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	return placeholderPattern.MatchString(norm.NFC.String(s))
}

// Fold strips diacritics, so "NÃO" becomes "NAO".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// titlePatterns lists the ways a heading is searched for, strictest first:
// the literal title, then the title with any whitespace run between words
// (pdftotext sometimes wraps long headings).
func titlePatterns(title string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + regexp.QuoteMeta(title)),
		regexp.MustCompile(`(?i)` + Loose(title)),
	}
}

// Loose quotes the words of s and joins them with `\s+`, so the pattern still
// matches when a line break or extra spaces fall between two words.
func Loose(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s+`)
}

func untilBoundary(s string) string {
	m := boundaryPattern.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	return s[:m[2]]
}
