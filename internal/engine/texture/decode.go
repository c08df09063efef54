// Package texture decodes texture images and uploads them for material
// rendering.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// ErrUnknownFormat is returned when neither the file extension nor the data
// signature identifies a supported image format.
var ErrUnknownFormat = errors.New("unknown image format")

// Load reads and decodes an image file into a straight-alpha RGBA buffer.
func Load(path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return ToNRGBA(img), nil
}

// Decode decodes image data. The extension picks the decoder; when it is
// missing or wrong, the data signature is tried instead.
func Decode(data []byte, ext string) (image.Image, error) {
	ext = strings.ToLower(ext)
	img, err := decodeByExtension(data, ext)
	if err == nil {
		return img, nil
	}

	detected := detectExtension(data)
	if detected == "" || detected == ext {
		return nil, err
	}
	return decodeByExtension(data, detected)
}

func decodeByExtension(data []byte, ext string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch ext {
	case ".png":
		return png.Decode(r)
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".gif":
		return gif.Decode(r)
	case ".bmp":
		return bmp.Decode(r)
	case ".webp":
		return webp.Decode(r)
	case ".tga":
		return tga.Decode(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}

// detectExtension guesses the format from the data signature. TGA has no
// signature and is only decoded by extension.
func detectExtension(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return ".png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return ".jpg"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return ".gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return ".bmp"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return ".webp"
	}
	return ""
}

// ToNRGBA converts an image to 8-bit non-premultiplied RGBA with its origin at
// (0,0). Opaque sources get a full alpha channel. Color is not scaled by
// alpha, so the result blends correctly with SRC_ALPHA, ONE_MINUS_SRC_ALPHA.
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(nrgba, image.Point{}, img, b, draw.Src, nil)
	return nrgba
}
