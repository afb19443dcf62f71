package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ImageInfo is one row of `pdfimages -list`.
type ImageInfo struct {
	Page   int
	Num    int
	Type   string // image, mask, smask, stencil
	Width  int
	Height int
	Size   int64 // encoded stream size in bytes
}

// Image is an extracted image file and the listing row it came from.
type Image struct {
	ImageInfo
	Path string
}

// imageFileRe matches pdfimages -p output names: <root>-<page>-<num>.<ext>.
var imageFileRe = regexp.MustCompile(`-(\d+)-(\d+)\.[a-z0-9]+$`)

// Images lists the images of pdfPath from firstPage (1-based) to the end.
func (s *Source) Images(ctx context.Context, pdfPath string, firstPage int) ([]ImageInfo, error) {
	out, err := s.runner.Run(ctx, s.pdfImages, "-list", "-f", pageArg(firstPage), pdfPath)
	if err != nil {
		return nil, eris.Wrapf(err, "pdftext: list images in %s", pdfPath)
	}
	return ParseImageList(string(out)), nil
}

// Extract writes the images of pdfPath from firstPage onward into dir as PNG
// and pairs each file with its listing row.
func (s *Source) Extract(ctx context.Context, pdfPath string, firstPage int, dir string) ([]Image, error) {
	infos, err := s.Images(ctx, pdfPath, firstPage)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "pdftext: create image dir %s", dir)
	}
	root := filepath.Join(dir, "img")
	if _, err := s.runner.Run(ctx, s.pdfImages, "-png", "-p", "-f", pageArg(firstPage), pdfPath, root); err != nil {
		return nil, eris.Wrapf(err, "pdftext: extract images from %s", pdfPath)
	}

	byNum := make(map[int]ImageInfo, len(infos))
	for _, info := range infos {
		byNum[info.Num] = info
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "pdftext: read image dir %s", dir)
	}

	var images []Image
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "img-") {
			continue
		}
		m := imageFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[2])
		info, ok := byNum[num]
		if !ok {
			continue
		}
		images = append(images, Image{ImageInfo: info, Path: filepath.Join(dir, e.Name())})
	}
	return images, nil
}

// ParseImageList parses `pdfimages -list` output. Header, separator and
// malformed rows are skipped.
//
//	page   num  type   width height color comp bpc  enc interp  object ID x-ppi y-ppi size ratio
//	--------------------------------------------------------------------------------------------
//	   3     0 image    1024   768  rgb     3   8  jpeg   no        12  0    96    96  120K 5.1%
func ParseImageList(out string) []ImageInfo {
	var infos []ImageInfo
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) < 15 {
			continue
		}
		page, err := strconv.Atoi(f[0])
		if err != nil {
			continue
		}
		num, err := strconv.Atoi(f[1])
		if err != nil {
			continue
		}
		width, _ := strconv.Atoi(f[3])
		height, _ := strconv.Atoi(f[4])
		infos = append(infos, ImageInfo{
			Page:   page,
			Num:    num,
			Type:   f[2],
			Width:  width,
			Height: height,
			Size:   parseSize(f[14]),
		})
	}
	return infos
}

// parseSize converts pdfimages sizes ("845B", "120K", "1.2M") to bytes.
func parseSize(s string) int64 {
	if s == "" {
		return 0
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'B':
		s = s[:len(s)-1]
	case 'K':
		mult = 1024
		s = s[:len(s)-1]
	case 'M':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'G':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(v * mult)
}

func pageArg(firstPage int) string {
	if firstPage < 1 {
		firstPage = 1
	}
	return strconv.Itoa(firstPage)
}
