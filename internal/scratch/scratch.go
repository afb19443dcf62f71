// Package scratch names and manages the per-run scratch area shared by batch
// workers. Each document gets its own subdirectory, so workers never write
// to the same path.
package scratch

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rfscore-cli/internal/config"
	"github.com/sells-group/rfscore-cli/internal/model"
	"github.com/sells-group/rfscore-cli/internal/section"
)

// Workspace is the scratch directory of one batch run.
type Workspace struct {
	dir  string
	keep bool
}

// New creates <cfg.Dir>/<runID>. An empty runID gets a fresh UUID.
func New(cfg config.ScratchConfig, runID string) (*Workspace, error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	dir := filepath.Join(cfg.Dir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "scratch: create run dir %s", dir)
	}
	return &Workspace{dir: dir, keep: cfg.Keep}, nil
}

// Dir returns the run directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// PhotoDir returns the photo directory of doc. The name combines the
// sanitized file id with a hash of the source path, so two documents with the
// same file name in different folders do not collide.
func (w *Workspace) PhotoDir(doc model.Document) string {
	return filepath.Join(w.dir, "fotos", DocKey(doc))
}

// Cleanup removes the run directory unless the workspace was configured to keep it.
func (w *Workspace) Cleanup() error {
	if w.keep {
		zap.L().Info("scratch: keeping run dir", zap.String("dir", w.dir))
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return eris.Wrapf(err, "scratch: remove run dir %s", w.dir)
	}
	return nil
}

// DocKey is the collision-free directory name of a document.
func DocKey(doc model.Document) string {
	base := strings.TrimSuffix(filepath.Base(doc.FileID), filepath.Ext(doc.FileID))
	sum := xxhash.Sum64String(filepath.Clean(doc.Path))
	return Sanitize(base) + "-" + strconv.FormatUint(sum, 16)
}

// Sanitize reduces a file name to ASCII letters, digits, '-' and '_'.
func Sanitize(name string) string {
	name = section.Fold(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '.':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "doc"
	}
	return b.String()
}

// Fingerprint hashes the content of r.
func Fingerprint(r io.Reader) (uint64, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return 0, eris.Wrap(err, "scratch: hash content")
	}
	return h.Sum64(), nil
}

// FileFingerprint hashes the file at path.
func FileFingerprint(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrapf(err, "scratch: open %s", path)
	}
	defer f.Close()
	return Fingerprint(f)
}
