package baker

import (
	"fmt"

	"github.com/chewxy/math32"
)

const (
	DefaultResolution       = 2048
	DefaultSamplesPerSide   = 2
	DefaultSearchDepth      = 1.0
	DefaultProgressInterval = 100
)

type Options struct {
	// Normal map dims.
	Width  int
	Height int

	// Each texel is sampled on a SamplesPerSide x SamplesPerSide grid.
	SamplesPerSide int

	// Max cast distance in units of the interpolated low-poly normal.
	SearchDepth float32

	// Number of concurrent rasterization workers; 0 selects the number of CPUs.
	Workers int

	// Progress is invoked with a monotonically increasing count of finished
	// low-poly triangles at least every ProgressInterval triangles and once
	// when rasterization completes. Calls are serialized.
	ProgressInterval int
	Progress         func(done, total int)
}

// Get the default bake options.
func DefaultOptions() Options {
	return Options{
		Width:            DefaultResolution,
		Height:           DefaultResolution,
		SamplesPerSide:   DefaultSamplesPerSide,
		SearchDepth:      DefaultSearchDepth,
		ProgressInterval: DefaultProgressInterval,
	}
}

// Replace unset fields with their defaults and validate the result.
func (o Options) normalize() (Options, error) {
	def := DefaultOptions()
	if o.Width == 0 {
		o.Width = def.Width
	}
	if o.Height == 0 {
		o.Height = def.Height
	}
	if o.SamplesPerSide == 0 {
		o.SamplesPerSide = def.SamplesPerSide
	}
	if o.SearchDepth == 0 {
		o.SearchDepth = def.SearchDepth
	}
	if o.ProgressInterval == 0 {
		o.ProgressInterval = def.ProgressInterval
	}

	switch {
	case o.Width < 0 || o.Height < 0:
		return o, fmt.Errorf("%w: map size %dx%d", ErrInvalidOptions, o.Width, o.Height)
	case o.SamplesPerSide < 0:
		return o, fmt.Errorf("%w: samples per side %d", ErrInvalidOptions, o.SamplesPerSide)
	case !(o.SearchDepth > 0) || math32.IsInf(o.SearchDepth, 0):
		return o, fmt.Errorf("%w: search depth %v", ErrInvalidOptions, o.SearchDepth)
	case o.Workers < 0:
		return o, fmt.Errorf("%w: workers %d", ErrInvalidOptions, o.Workers)
	case o.ProgressInterval < 0:
		return o, fmt.Errorf("%w: progress interval %d", ErrInvalidOptions, o.ProgressInterval)
	}
	return o, nil
}
