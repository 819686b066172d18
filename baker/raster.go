package baker

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/giuliom95/baker2/asset/mesh"
	"github.com/giuliom95/baker2/types"
)

// Get the texel bounding box covered by the uv footprint of tri, clamped to
// a width x height grid. Corners map to texels via floor(u*W), floor(v*H) and
// the returned rectangle includes its max texel. Footprints that lie entirely
// outside the grid are empty. The second return value is false if the uv
// triangle is degenerate.
func triangleFootprint(tri *mesh.Triangle, width, height int) (image.Rectangle, bool) {
	for _, uv := range tri.UV {
		if math32.IsNaN(uv[0]) || math32.IsNaN(uv[1]) || math32.IsInf(uv[0], 0) || math32.IsInf(uv[1], 0) {
			return image.Rectangle{}, false
		}
	}
	if math32.Abs(types.SignedArea(tri.UV[0], tri.UV[1], tri.UV[2])) < minUVArea {
		return image.Rectangle{}, false
	}

	var minX, minY float32 = math32.MaxFloat32, math32.MaxFloat32
	var maxX, maxY float32 = -math32.MaxFloat32, -math32.MaxFloat32
	for _, uv := range tri.UV {
		x := math32.Floor(uv[0] * float32(width))
		y := math32.Floor(uv[1] * float32(height))
		minX, maxX = math32.Min(minX, x), math32.Max(maxX, x)
		minY, maxY = math32.Min(minY, y), math32.Max(maxY, y)
	}

	if maxX < 0 || maxY < 0 || minX >= float32(width) || minY >= float32(height) {
		return image.Rectangle{}, true
	}

	return image.Rect(
		clampTexel(minX, width), clampTexel(minY, height),
		clampTexel(maxX, width)+1, clampTexel(maxY, height)+1,
	), true
}

// Clamp a texel coordinate to [0, size).
func clampTexel(c float32, size int) int {
	if c < 0 {
		return 0
	}
	if c > float32(size-1) {
		return size - 1
	}
	return int(c)
}

// Rasterizes low-poly triangles into a private accumulation buffer.
type rasterizer struct {
	caster *rayCaster

	width, height  int
	samplesPerSide int

	buf   *AccumBuffer
	stats sampleStats
}

func newRasterizer(caster *rayCaster, opts *Options, window image.Rectangle) *rasterizer {
	return &rasterizer{
		caster:         caster,
		width:          opts.Width,
		height:         opts.Height,
		samplesPerSide: opts.SamplesPerSide,
		buf:            newWindowedBuffer(opts.Width, opts.Height, window),
	}
}

// Sample every texel in the footprint of tri on an SxS grid and accumulate
// the tangent-space high-poly normals of accepted samples.
func (r *rasterizer) rasterize(tri *mesh.Triangle) {
	r.stats.Triangles++

	footprint, ok := triangleFootprint(tri, r.width, r.height)
	if !ok {
		r.stats.DegenerateTriangles++
		return
	}

	// Maps uv offsets from corner 0 to the barycentric weights of corners 1 and 2
	uvToBary, ok := types.Mat2{
		tri.UV[1][0] - tri.UV[0][0], tri.UV[2][0] - tri.UV[0][0],
		tri.UV[1][1] - tri.UV[0][1], tri.UV[2][1] - tri.UV[0][1],
	}.Inv()
	if !ok {
		r.stats.DegenerateTriangles++
		return
	}

	spp := float32(r.samplesPerSide)
	w, h := float32(r.width), float32(r.height)
	for j := footprint.Min.Y; j < footprint.Max.Y; j++ {
		for i := footprint.Min.X; i < footprint.Max.X; i++ {
			for us := 0; us < r.samplesPerSide; us++ {
				for vs := 0; vs < r.samplesPerSide; vs++ {
					uv := types.Vec2{
						(float32(i) + float32(us)/spp) / w,
						(float32(j) + float32(vs)/spp) / h,
					}
					r.sample(tri, uvToBary, uv, i, j)
				}
			}
		}
	}
}

func (r *rasterizer) sample(tri *mesh.Triangle, uvToBary types.Mat2, uv types.Vec2, x, y int) {
	r.stats.SamplesTested++

	bary := uvToBary.Mul2x1(uv.Sub(tri.UV[0]))
	u, v := bary[0], bary[1]
	w := 1 - u - v

	// All weights must lie in [0, 1)
	if !(u >= 0 && u < 1 && v >= 0 && v < 1 && w >= 0 && w < 1) {
		return
	}
	r.stats.SamplesInside++

	pos := types.Barycentric3(tri.P[0], tri.P[1], tri.P[2], w, u, v)
	dir := tri.InterpolateNormal(u, v)

	frame, ok := NewTangentFrame(*tri, uv, pos, dir)
	if !ok {
		r.stats.InvalidFrames++
		return
	}

	n, outcome := r.caster.castAndResolve(pos, dir, &frame)
	switch outcome {
	case rayAccepted:
		r.stats.Accepted++
		r.buf.Add(x, y, n)
	case rayBackFacing:
		r.stats.BackFacing++
	default:
		r.stats.Missed++
	}
}
