package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/Faultbox/objviewer/internal/mesh"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 100), B: 200, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodeFormats(t *testing.T) {
	var jpg, bm bytes.Buffer
	if err := jpeg.Encode(&jpg, testImage(), nil); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bm, testImage()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		ext  string
	}{
		{"png", encodePNG(t), ".png"},
		{"jpeg", jpg.Bytes(), ".jpg"},
		{"upper case extension", jpg.Bytes(), ".JPEG"},
		{"bmp", bm.Bytes(), ".bmp"},
		{"png named jpg", encodePNG(t), ".jpg"},
		{"no extension", bm.Bytes(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.data, tt.ext)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
				t.Errorf("unexpected bounds %v", img.Bounds())
			}
		})
	}
}

func TestDecodeUnknown(t *testing.T) {
	_, err := Decode([]byte("not an image"), ".xyz")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestToNRGBAForcesAlpha(t *testing.T) {
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, testImage(), nil); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(jpg.Bytes(), ".jpg")
	if err != nil {
		t.Fatal(err)
	}

	rgba := ToNRGBA(img)
	if rgba.Rect.Min != (image.Point{}) {
		t.Errorf("expected origin at zero, got %v", rgba.Rect.Min)
	}
	for i := 3; i < len(rgba.Pix); i += 4 {
		if rgba.Pix[i] != 255 {
			t.Fatalf("pixel %d: alpha %d, want 255", i/4, rgba.Pix[i])
		}
	}
}

func TestToNRGBAKeepsStraightAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 128})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		img  func(t *testing.T) image.Image
	}{
		{"decoded png", func(t *testing.T) image.Image {
			img, err := Decode(buf.Bytes(), ".png")
			if err != nil {
				t.Fatal(err)
			}
			return img
		}},
		{"premultiplied source", func(t *testing.T) image.Image {
			rgba := image.NewRGBA(image.Rect(0, 0, 1, 1))
			rgba.Set(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 128})
			return rgba
		}},
	}

	want := []uint8{255, 0, 0, 128}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToNRGBA(tt.img(t)).Pix[:4]
			if !bytes.Equal(got, want) {
				t.Errorf("texel = %v, want %v", got, want)
			}
		})
	}
}

func TestToNRGBAOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 13, 12))
	src.Set(10, 10, color.RGBA{R: 255, A: 255})

	rgba := ToNRGBA(src)
	if rgba.Rect != image.Rect(0, 0, 3, 2) {
		t.Fatalf("unexpected rect %v", rgba.Rect)
	}
	if got := rgba.NRGBAAt(0, 0); got.R != 255 {
		t.Errorf("expected red at origin, got %v", got)
	}
}

type fakeUploader struct {
	next    uint32
	uploads int
	fail    bool
}

func (u *fakeUploader) Upload(img *image.NRGBA) (uint32, error) {
	if u.fail {
		return 0, errors.New("no context")
	}
	u.uploads++
	u.next++
	return u.next, nil
}

func TestBindTextures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fur.png", encodePNG(t))
	writeFile(t, dir, "textures/eyes.png", encodePNG(t))
	writeFile(t, dir, "broken.png", []byte("garbage"))

	materials := []mesh.Material{
		{Name: "Fur", DiffuseTexture: "fur.png"},
		{Name: "Eyes", DiffuseTexture: `textures\eyes.png`},
		{Name: "Plain"},
		{Name: "Missing", DiffuseTexture: "nope.png"},
		{Name: "Broken", DiffuseTexture: "broken.png"},
		{Name: "FurCopy", DiffuseTexture: "fur.png"},
	}

	up := &fakeUploader{}
	table := BindTextures(materials, dir, up)

	if len(table) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(table), table)
	}
	for _, name := range []string{"Plain", "Missing", "Broken"} {
		if _, ok := table[name]; ok {
			t.Errorf("%s should have no entry", name)
		}
	}
	if table["Fur"] == table["Eyes"] {
		t.Error("distinct files should get distinct handles")
	}
	if table["Fur"] != table["FurCopy"] {
		t.Error("shared file should share a handle")
	}
	if up.uploads != 2 {
		t.Errorf("expected 2 uploads, got %d", up.uploads)
	}
	if len(table.Handles()) != 2 {
		t.Errorf("expected 2 distinct handles, got %v", table.Handles())
	}
}

func TestBindTexturesUploadFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fur.png", encodePNG(t))

	table := BindTextures([]mesh.Material{{Name: "Fur", DiffuseTexture: "fur.png"}}, dir, &fakeUploader{fail: true})
	if len(table) != 0 {
		t.Errorf("expected empty table, got %v", table)
	}
}

func TestResolvePath(t *testing.T) {
	dir := filepath.Join("models", "fox")

	if got, want := ResolvePath(dir, "fur.png"), filepath.Join(dir, "fur.png"); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if got, want := ResolvePath(dir, `tex\fur.png`), filepath.Join(dir, "tex", "fur.png"); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
