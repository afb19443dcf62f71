// Package pdftext reads the text layer and embedded images of a PDF through
// the poppler command-line tools.
package pdftext

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/rfscore-cli/internal/config"
)

// Runner executes an external tool and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools with os/exec.
type ExecRunner struct{}

// Run executes name with args. A non-zero exit is returned with stderr attached.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "pdftext: %s failed: %s", name, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Source reads PDFs with pdftotext and pdfimages.
type Source struct {
	pdfToText string
	pdfImages string
	layout    bool
	runner    Runner
}

// New creates a Source from config. A nil runner uses ExecRunner.
func New(text config.TextConfig, photos config.PhotoConfig, runner Runner) *Source {
	s := &Source{
		pdfToText: text.PdfToTextPath,
		pdfImages: photos.PdfImagesPath,
		layout:    text.Layout,
		runner:    runner,
	}
	if s.pdfToText == "" {
		s.pdfToText = "pdftotext"
	}
	if s.pdfImages == "" {
		s.pdfImages = "pdfimages"
	}
	if s.runner == nil {
		s.runner = ExecRunner{}
	}
	return s
}

// Pages returns the NFC-normalized text of every page. A page without a text
// layer yields an empty string.
func (s *Source) Pages(ctx context.Context, pdfPath string) ([]string, error) {
	args := []string{"-enc", "UTF-8"}
	if s.layout {
		args = append(args, "-layout")
	}
	args = append(args, pdfPath, "-")

	out, err := s.runner.Run(ctx, s.pdfToText, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "pdftext: extract text from %s", pdfPath)
	}
	return SplitPages(string(out)), nil
}

// SplitPages splits pdftotext output on form feeds. pdftotext terminates every
// page, including the last, with a form feed.
func SplitPages(out string) []string {
	if out == "" {
		return nil
	}
	pages := strings.Split(out, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	for i, p := range pages {
		pages[i] = norm.NFC.String(p)
	}
	return pages
}

// FullText joins pages with a newline.
func FullText(pages []string) string {
	return strings.Join(pages, "\n")
}
