// Package screenshot saves rendered frames as PNG files.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// maxAttempts bounds the numbered suffixes tried within one second.
const maxAttempts = 100

// Capture writes screenshots into a directory.
type Capture struct {
	outputDir string
	prefix    string

	// now is replaced in tests.
	now func() time.Time
}

// New creates a capture handler. An empty outputDir writes to the working
// directory.
func New(outputDir, prefix string) *Capture {
	return &Capture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// SaveFramebuffer saves bottom-up RGBA rows, as returned by glReadPixels,
// and returns the written file name.
func (c *Capture) SaveFramebuffer(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	return c.Save(FlipRows(pixels, width, height))
}

// Save writes img as PNG and returns the file name.
func (c *Capture) Save(img image.Image) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, filename, err := c.create()
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// create opens a new timestamped file, adding a numbered suffix when the name
// is taken. Existing files are never truncated.
func (c *Capture) create() (*os.File, string, error) {
	base := fmt.Sprintf("%s_%s", c.prefix, c.now().Format("2006-01-02_15-04-05"))
	name := filepath.Join(c.outputDir, base+".png")
	for i := 2; i <= maxAttempts+1; i++ {
		file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return file, name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("creating file: %w", err)
		}
		name = filepath.Join(c.outputDir, fmt.Sprintf("%s_%d.png", base, i))
	}
	return nil, "", fmt.Errorf("creating file: no free name for %s after %d attempts", base, maxAttempts)
}

// FlipRows copies bottom-up RGBA rows into a top-down image.
func FlipRows(pixels []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img
}
