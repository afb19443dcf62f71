// Package photo counts the inspection photos of a report: sizeable images
// from the "08 - Fotos" section onward that decode as real images.
package photo

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rfscore-cli/internal/config"
	"github.com/sells-group/rfscore-cli/internal/pdftext"
	"github.com/sells-group/rfscore-cli/internal/section"
)

// ImageSource extracts the images of a PDF from a page onward.
type ImageSource interface {
	Extract(ctx context.Context, pdfPath string, firstPage int, dir string) ([]pdftext.Image, error)
}

// Result is the outcome of photo detection for one document.
type Result struct {
	Count int
	Files []string
}

// Locator finds photos in a document.
type Locator struct {
	src ImageSource
	cfg config.PhotoConfig
}

// New creates a Locator.
func New(cfg config.PhotoConfig, src ImageSource) *Locator {
	return &Locator{src: src, cfg: cfg}
}

// StartPage returns the 1-based page holding the photo heading, or 1 when no
// page has it.
func StartPage(pages []string) int {
	for i, p := range pages {
		if section.PhotosHeading.MatchString(p) {
			return i + 1
		}
	}
	return 1
}

// Locate extracts candidate images into dir and keeps the valid ones, renamed
// foto_<n>_pag<page>.png. Everything else written to dir is removed.
func (l *Locator) Locate(ctx context.Context, pdfPath string, pages []string, dir string) (Result, error) {
	if !l.cfg.Enabled {
		return Result{}, nil
	}

	start := StartPage(pages)
	images, err := l.src.Extract(ctx, pdfPath, start, dir)
	if err != nil {
		return Result{}, eris.Wrapf(err, "photo: extract from page %d", start)
	}

	var res Result
	for _, img := range images {
		if !l.candidate(img.ImageInfo) || !Decodes(img.Path) {
			removeQuietly(img.Path)
			continue
		}
		name := fmt.Sprintf("foto_%d_pag%d.png", res.Count+1, img.Page)
		dst := filepath.Join(dir, name)
		if err := os.Rename(img.Path, dst); err != nil {
			return Result{}, eris.Wrapf(err, "photo: rename %s", img.Path)
		}
		res.Count++
		res.Files = append(res.Files, dst)
	}

	zap.L().Debug("photo: located",
		zap.String("pdf", pdfPath),
		zap.Int("start_page", start),
		zap.Int("listed", len(images)),
		zap.Int("kept", res.Count),
	)
	return res, nil
}

// candidate filters out masks, logos and tiny streams.
func (l *Locator) candidate(info pdftext.ImageInfo) bool {
	return info.Type == "image" &&
		info.Width >= l.cfg.MinWidth &&
		info.Height >= l.cfg.MinHeight &&
		info.Size > l.cfg.MinBytes
}

// Decodes reports whether the file at path is a complete, decodable image.
func Decodes(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = image.Decode(f)
	return err == nil
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		zap.L().Debug("photo: remove rejected image", zap.String("path", path), zap.Error(err))
	}
}
