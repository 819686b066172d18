package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/giuliom95/baker2/asset"
	"github.com/giuliom95/baker2/types"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	ErrUnsupportedFormat   = errors.New("texture: unsupported image format")
	ErrUnsupportedBitDepth = errors.New("texture: unsupported bit depth")
)

// The normal stored in texels that received no samples.
var FlatNormal = types.Vec3{0, 0, 1}

// A tangent-space normal map. Pixels are stored row-major with row 0 at V=0.
type NormalMap struct {
	Width  int
	Height int

	Pixels []types.Vec3
}

// Create a normal map where every texel holds the flat normal.
func NewNormalMap(width, height int) *NormalMap {
	nm := &NormalMap{
		Width:  width,
		Height: height,
		Pixels: make([]types.Vec3, width*height),
	}
	for index := range nm.Pixels {
		nm.Pixels[index] = FlatNormal
	}
	return nm
}

// Get the normal stored at texel (x, y).
func (nm *NormalMap) At(x, y int) types.Vec3 {
	return nm.Pixels[y*nm.Width+x]
}

// Set the normal stored at texel (x, y).
func (nm *NormalMap) Set(x, y int, n types.Vec3) {
	nm.Pixels[y*nm.Width+x] = n
}

// Map a normal component from [-1, 1] to [0, 1].
func encodeComponent(c float32) float32 {
	v := 0.5*c + 0.5
	if !(v > 0) {
		return 0
	}
	return math32.Min(v, 1)
}

// Convert the normal map to an opaque image with bitDepth (8 or 16) bits per
// channel. Components are encoded as 0.5*n+0.5 and truncated to the channel
// range. If flipY is set the top image row holds V=1.
func (nm *NormalMap) Image(bitDepth int, flipY bool) (image.Image, error) {
	rect := image.Rect(0, 0, nm.Width, nm.Height)
	srcRow := func(y int) int {
		if flipY {
			return nm.Height - y - 1
		}
		return y
	}

	switch bitDepth {
	case 8:
		img := image.NewRGBA(rect)
		for y := 0; y < nm.Height; y++ {
			row := srcRow(y)
			for x := 0; x < nm.Width; x++ {
				n := nm.At(x, row)
				img.SetRGBA(x, y, color.RGBA{
					R: uint8(255 * encodeComponent(n[0])),
					G: uint8(255 * encodeComponent(n[1])),
					B: uint8(255 * encodeComponent(n[2])),
					A: 255,
				})
			}
		}
		return img, nil
	case 16:
		img := image.NewRGBA64(rect)
		for y := 0; y < nm.Height; y++ {
			row := srcRow(y)
			for x := 0; x < nm.Width; x++ {
				n := nm.At(x, row)
				img.SetRGBA64(x, y, color.RGBA64{
					R: uint16(65535 * encodeComponent(n[0])),
					G: uint16(65535 * encodeComponent(n[1])),
					B: uint16(65535 * encodeComponent(n[2])),
					A: 65535,
				})
			}
		}
		return img, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
}

// Encode the normal map to w using the requested image format.
func Encode(w io.Writer, nm *NormalMap, format Format, bitDepth int, flipY bool) error {
	if format == Bmp && bitDepth != 8 {
		return fmt.Errorf("%w: bmp images only support 8 bits per channel", ErrUnsupportedBitDepth)
	}

	img, err := nm.Image(bitDepth, flipY)
	if err != nil {
		return err
	}

	switch format {
	case Tiff:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case Png:
		return png.Encode(w, img)
	case Bmp:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w %s", ErrUnsupportedFormat, format)
}

// Encode the normal map and write it to a file.
func Save(pathToFile string, nm *NormalMap, format Format, bitDepth int, flipY bool) error {
	f, err := os.Create(pathToFile)
	if err != nil {
		return fmt.Errorf("texture: %w", err)
	}

	err = Encode(f, nm, format, bitDepth, flipY)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("texture: could not write %s: %w", pathToFile, err)
	}
	return nil
}

// Load a normal map from an image Resource. Pixel values are mapped back from
// [0, 1] to [-1, 1]. If flipY is set the top image row is treated as V=1.
func New(res *asset.Resource, flipY bool) (*NormalMap, error) {
	var (
		img image.Image
		err error
	)
	switch res.Ext() {
	case ".tif", ".tiff":
		img, err = tiff.Decode(res)
	case ".png":
		img, err = png.Decode(res)
	case ".bmp":
		img, err = bmp.Decode(res)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, res.Ext())
	}
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %w", res.Path(), err)
	}

	bounds := img.Bounds()
	nm := &NormalMap{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: make([]types.Vec3, bounds.Dx()*bounds.Dy()),
	}
	for y := 0; y < nm.Height; y++ {
		row := y
		if flipY {
			row = nm.Height - y - 1
		}
		for x := 0; x < nm.Width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			nm.Set(x, row, types.Vec3{
				float32(r)/32767.5 - 1,
				float32(g)/32767.5 - 1,
				float32(b)/32767.5 - 1,
			})
		}
	}

	return nm, nil
}
