package texture

import (
	"image"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/logger"
	"github.com/Faultbox/objviewer/internal/mesh"
)

// Uploader turns a decoded image into a texture handle.
type Uploader interface {
	Upload(img *image.NRGBA) (uint32, error)
}

// Table maps material names to texture handles. Materials without a usable
// diffuse texture have no entry.
type Table map[string]uint32

// Handles returns the distinct handles in the table.
func (t Table) Handles() []uint32 {
	seen := make(map[uint32]bool, len(t))
	handles := make([]uint32, 0, len(t))
	for _, h := range t {
		if !seen[h] {
			seen[h] = true
			handles = append(handles, h)
		}
	}
	return handles
}

// BindTextures loads the diffuse texture of every material, resolved
// relative to searchDir. Failures are logged and the material is skipped.
// Materials sharing a texture file share one handle.
func BindTextures(materials []mesh.Material, searchDir string, up Uploader) Table {
	log := logger.Named("texture")
	table := make(Table)
	byPath := make(map[string]uint32)

	for _, m := range materials {
		if m.DiffuseTexture == "" {
			continue
		}
		path := ResolvePath(searchDir, m.DiffuseTexture)

		if h, ok := byPath[path]; ok {
			table[m.Name] = h
			continue
		}

		img, err := Load(path)
		if err != nil {
			log.Warn("failed to load texture",
				zap.String("material", m.Name),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		h, err := up.Upload(img)
		if err != nil {
			log.Warn("failed to upload texture",
				zap.String("material", m.Name),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}

		byPath[path] = h
		table[m.Name] = h
		log.Debug("texture bound",
			zap.String("material", m.Name),
			zap.String("path", path),
			zap.Int("width", img.Rect.Dx()),
			zap.Int("height", img.Rect.Dy()),
			zap.Uint32("handle", h),
		)
	}

	log.Info("textures bound", zap.Int("materials", len(materials)), zap.Int("textures", len(byPath)))
	return table
}

// ResolvePath joins a texture name from a material file onto dir. Windows
// separators written by exporters are accepted.
func ResolvePath(dir, name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if filepath.IsAbs(filepath.FromSlash(name)) {
		return filepath.FromSlash(name)
	}
	return filepath.Join(dir, filepath.FromSlash(name))
}
