package baker

import (
	"fmt"
	"image"

	"github.com/giuliom95/baker2/asset/texture"
	"github.com/giuliom95/baker2/types"
)

// A grid of per-texel normal sums and accepted sample counts. A buffer may
// back only a window of the grid; texels outside the window have no samples
// and cannot be written.
type AccumBuffer struct {
	Width  int
	Height int

	window image.Rectangle
	sums   []types.Vec3
	counts []int32
}

// Allocate a zeroed buffer covering the full grid.
func NewAccumBuffer(width, height int) *AccumBuffer {
	return newWindowedBuffer(width, height, image.Rect(0, 0, width, height))
}

// Allocate a zeroed buffer that only stores texels inside window.
func newWindowedBuffer(width, height int, window image.Rectangle) *AccumBuffer {
	window = window.Intersect(image.Rect(0, 0, width, height))
	return &AccumBuffer{
		Width:  width,
		Height: height,
		window: window,
		sums:   make([]types.Vec3, window.Dx()*window.Dy()),
		counts: make([]int32, window.Dx()*window.Dy()),
	}
}

func (b *AccumBuffer) index(x, y int) (int, bool) {
	if !(image.Point{x, y}).In(b.window) {
		return 0, false
	}
	return (y-b.window.Min.Y)*b.window.Dx() + (x - b.window.Min.X), true
}

// Accumulate an accepted tangent-space normal into texel (x, y).
func (b *AccumBuffer) Add(x, y int, n types.Vec3) {
	index, ok := b.index(x, y)
	if !ok {
		panic(fmt.Sprintf("baker: texel (%d, %d) outside of buffer window %v", x, y, b.window))
	}
	b.sums[index] = b.sums[index].Add(n)
	b.counts[index]++
}

// Get the number of samples accumulated into texel (x, y).
func (b *AccumBuffer) Count(x, y int) int {
	if index, ok := b.index(x, y); ok {
		return int(b.counts[index])
	}
	return 0
}

// Get the normal sum of texel (x, y). The value is only meaningful when
// Count(x, y) > 0.
func (b *AccumBuffer) Sum(x, y int) types.Vec3 {
	if index, ok := b.index(x, y); ok {
		return b.sums[index]
	}
	return types.Vec3{}
}

// Get the number of texels with at least one sample.
func (b *AccumBuffer) CoveredTexels() int {
	covered := 0
	for _, count := range b.counts {
		if count > 0 {
			covered++
		}
	}
	return covered
}

// Add the sums and counts of other into this buffer. Both buffers must
// describe the same grid and other's window must be covered by this buffer.
func (b *AccumBuffer) Merge(other *AccumBuffer) error {
	if other.Width != b.Width || other.Height != b.Height {
		return fmt.Errorf("baker: cannot merge %dx%d buffer into %dx%d buffer", other.Width, other.Height, b.Width, b.Height)
	}
	if !other.window.In(b.window) {
		return fmt.Errorf("baker: cannot merge buffer window %v into %v", other.window, b.window)
	}

	for y := other.window.Min.Y; y < other.window.Max.Y; y++ {
		for x := other.window.Min.X; x < other.window.Max.X; x++ {
			src, _ := other.index(x, y)
			if other.counts[src] == 0 {
				continue
			}
			dst, _ := b.index(x, y)
			b.sums[dst] = b.sums[dst].Add(other.sums[src])
			b.counts[dst] += other.counts[src]
		}
	}
	return nil
}

// Resolve the buffer into a normal map. Texels with samples hold the mean of
// their accumulated normals; all others hold the flat normal (0, 0, 1).
func (b *AccumBuffer) Finalize() *texture.NormalMap {
	nm := texture.NewNormalMap(b.Width, b.Height)
	for y := b.window.Min.Y; y < b.window.Max.Y; y++ {
		for x := b.window.Min.X; x < b.window.Max.X; x++ {
			index, _ := b.index(x, y)
			if count := b.counts[index]; count > 0 {
				sum, c := b.sums[index], float32(count)
				nm.Set(x, y, types.Vec3{sum[0] / c, sum[1] / c, sum[2] / c})
			}
		}
	}
	return nm
}
