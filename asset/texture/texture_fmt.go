package texture

import (
	"fmt"
	"strings"
)

// Image file format used when encoding a normal map.
type Format uint32

const (
	Tiff Format = iota
	Png
	Bmp
)

// Get the format name.
func (f Format) String() string {
	switch f {
	case Tiff:
		return "tiff"
	case Png:
		return "png"
	case Bmp:
		return "bmp"
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

// Get the canonical file extension for this format.
func (f Format) Ext() string {
	switch f {
	case Png:
		return ".png"
	case Bmp:
		return ".bmp"
	}
	return ".tiff"
}

// Parse a format name or file extension (with or without the leading dot).
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "tif", "tiff":
		return Tiff, nil
	case "png":
		return Png, nil
	case "bmp":
		return Bmp, nil
	}
	return Tiff, fmt.Errorf("%w %q", ErrUnsupportedFormat, name)
}
