package mesh

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/logger"
)

// LoadOptions tweaks Load.
type LoadOptions struct {
	// Progress shows a byte progress bar on stderr while the OBJ is read.
	Progress bool
}

// Load parses the OBJ file at path, resolving mtllib statements relative to
// the file's directory, and returns the draw-ready mesh. A missing material
// library that is missing or unreadable is logged and skipped; a missing or malformed OBJ is an error.
func Load(path string, opts LoadOptions) (*Mesh, error) {
	log := logger.Named("mesh")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if opts.Progress {
		size := int64(-1)
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}
		bar := progressbar.DefaultBytes(size, "reading "+filepath.Base(path))
		defer bar.Close()
		r = io.TeeReader(f, bar)
	}

	dir := filepath.Dir(path)
	openLib := func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, filepath.FromSlash(name)))
	}

	scene, missing, err := ParseOBJ(r, path, openLib)
	if err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	for _, lib := range missing {
		log.Warn("material library unavailable", zap.String("library", lib), zap.String("dir", dir))
	}

	m := Build(scene)
	m.MaterialDir = dir

	log.Info("model loaded",
		zap.String("path", path),
		zap.Int("shapes", len(scene.Shapes)),
		zap.Int("faces", len(m.Indices)/3),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("groups", len(m.Groups)),
		zap.Int("materials", len(m.Materials)),
	)
	return m, nil
}
