package texture

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/giuliom95/baker2/asset"
	"github.com/giuliom95/baker2/types"
)

// A 2x2 map with a distinct normal in each texel.
func mockNormalMap() *NormalMap {
	nm := NewNormalMap(2, 2)
	nm.Set(0, 0, types.Vec3{1, 0, 0})
	nm.Set(1, 0, types.Vec3{-1, -1, -1})
	nm.Set(0, 1, types.Vec3{0, 1, 0})
	return nm
}

func TestNewNormalMapIsFlat(t *testing.T) {
	nm := NewNormalMap(3, 2)
	if len(nm.Pixels) != 6 {
		t.Fatalf("expected 6 pixels; got %d", len(nm.Pixels))
	}
	for index, n := range nm.Pixels {
		if n != FlatNormal {
			t.Fatalf("expected pixel %d to be flat; got %v", index, n)
		}
	}
}

func TestImage8Bit(t *testing.T) {
	img, err := mockNormalMap().Image(8, false)
	if err != nil {
		t.Fatal(err)
	}

	type spec struct {
		x, y int
		exp  color.RGBA
	}
	specs := []spec{
		{0, 0, color.RGBA{255, 127, 127, 255}},
		{1, 0, color.RGBA{0, 0, 0, 255}},
		{0, 1, color.RGBA{127, 255, 127, 255}},
		{1, 1, color.RGBA{127, 127, 255, 255}},
	}
	for idx, s := range specs {
		got := color.RGBAModel.Convert(img.At(s.x, s.y)).(color.RGBA)
		if got != s.exp {
			t.Fatalf("[spec %d] expected pixel (%d, %d) to be %v; got %v", idx, s.x, s.y, s.exp, got)
		}
	}
}

func TestImageFlipY(t *testing.T) {
	img, err := mockNormalMap().Image(8, true)
	if err != nil {
		t.Fatal(err)
	}

	// Row 0 of the map (V=0) is written to the bottom image row
	got := color.RGBAModel.Convert(img.At(0, 1)).(color.RGBA)
	exp := color.RGBA{255, 127, 127, 255}
	if got != exp {
		t.Fatalf("expected bottom-left pixel to be %v; got %v", exp, got)
	}
}

func TestImage16Bit(t *testing.T) {
	img, err := NewNormalMap(1, 1).Image(16, false)
	if err != nil {
		t.Fatal(err)
	}

	got := color.RGBA64Model.Convert(img.At(0, 0)).(color.RGBA64)
	exp := color.RGBA64{32767, 32767, 65535, 65535}
	if got != exp {
		t.Fatalf("expected flat normal to encode as %v; got %v", exp, got)
	}
}

func TestEncodeErrors(t *testing.T) {
	type spec struct {
		format   Format
		bitDepth int
		expErr   error
	}
	specs := []spec{
		{Png, 12, ErrUnsupportedBitDepth},
		{Bmp, 16, ErrUnsupportedBitDepth},
		{Format(42), 8, ErrUnsupportedFormat},
	}

	for idx, s := range specs {
		err := Encode(&bytes.Buffer{}, mockNormalMap(), s.format, s.bitDepth, true)
		if !errors.Is(err, s.expErr) {
			t.Fatalf("[spec %d] expected error %v; got %v", idx, s.expErr, err)
		}
	}
}

func TestEncodeAndLoad(t *testing.T) {
	type spec struct {
		format   Format
		bitDepth int
	}
	specs := []spec{
		{Tiff, 8},
		{Tiff, 16},
		{Png, 8},
		{Png, 16},
		{Bmp, 8},
	}

	src := mockNormalMap()
	for idx, s := range specs {
		var buf bytes.Buffer
		if err := Encode(&buf, src, s.format, s.bitDepth, true); err != nil {
			t.Fatalf("[spec %d] %v", idx, err)
		}

		nm, err := New(asset.NewResourceFromStream("map"+s.format.Ext(), &buf), true)
		if err != nil {
			t.Fatalf("[spec %d] %v", idx, err)
		}
		if nm.Width != 2 || nm.Height != 2 {
			t.Fatalf("[spec %d] expected a 2x2 map; got %dx%d", idx, nm.Width, nm.Height)
		}
		for index, exp := range src.Pixels {
			if nm.Pixels[index].Sub(exp).Len() > 0.02 {
				t.Fatalf("[spec %d] expected pixel %d to be close to %v; got %v", idx, index, exp, nm.Pixels[index])
			}
		}
	}
}

func TestSave(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "normals.tiff")
	if err := Save(outFile, mockNormalMap(), Tiff, 8, true); err != nil {
		t.Fatal(err)
	}

	res, err := asset.NewResource(outFile, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	nm, err := New(res, true)
	if err != nil {
		t.Fatal(err)
	}
	if nm.At(1, 1).Sub(FlatNormal).Len() > 0.02 {
		t.Fatalf("expected texel (1, 1) to be flat; got %v", nm.At(1, 1))
	}

	if err = Save(filepath.Join(t.TempDir(), "missing", "normals.tiff"), mockNormalMap(), Tiff, 8, true); err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error when the output directory is missing; got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	type spec struct {
		in     string
		exp    Format
		expErr bool
	}
	specs := []spec{
		{"tiff", Tiff, false},
		{".TIF", Tiff, false},
		{"png", Png, false},
		{".bmp", Bmp, false},
		{"exr", Tiff, true},
	}

	for idx, s := range specs {
		got, err := ParseFormat(s.in)
		if s.expErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("[spec %d] expected ErrUnsupportedFormat; got %v", idx, err)
			}
			continue
		}
		if err != nil || got != s.exp {
			t.Fatalf("[spec %d] expected format %s; got %s (%v)", idx, s.exp, got, err)
		}
	}
}
