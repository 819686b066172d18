package baker

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/giuliom95/baker2/accel"
	"github.com/giuliom95/baker2/asset/mesh"
	"github.com/giuliom95/baker2/asset/texture"
	"github.com/giuliom95/baker2/log"
	"golang.org/x/sync/errgroup"
)

// Bakes the normals of a high-poly mesh into the uv space of a low-poly mesh.
type Baker struct {
	logger log.Logger

	low  *mesh.Mesh
	high *mesh.Mesh
	opts Options

	accel     *accel.Accel
	caster    *rayCaster
	scheduler BlockScheduler

	stats BakeStats
}

// Create a new baker for the low and high poly mesh pair. Both meshes are
// validated and the high-poly acceleration structure is built once here.
func New(low, high *mesh.Mesh, opts Options) (*Baker, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	if err = low.Validate(); err != nil {
		return nil, fmt.Errorf("baker: low-poly mesh: %w", err)
	}
	if !low.HasUVs() {
		return nil, ErrMissingUVs
	}
	if err = high.Validate(); err != nil {
		return nil, fmt.Errorf("baker: high-poly mesh: %w", err)
	}

	a, err := accel.Build(high)
	if err != nil {
		return nil, fmt.Errorf("baker: high-poly mesh: %w", err)
	}

	caster, err := newRayCaster(a, high, opts.SearchDepth)
	if err != nil {
		return nil, fmt.Errorf("baker: high-poly mesh: %w", err)
	}

	return &Baker{
		logger:    log.New("baker"),
		low:       low,
		high:      high,
		opts:      opts,
		accel:     a,
		caster:    caster,
		scheduler: CostScheduler(),
	}, nil
}

// Get the effective bake options.
func (b *Baker) Options() Options {
	return b.opts
}

// Get the statistics of the last Rasterize or Bake call.
func (b *Baker) Stats() BakeStats {
	return b.stats
}

// Rasterize every low-poly triangle and return the merged accumulation
// buffer. Triangles are split into contiguous blocks that are processed in
// parallel; each worker writes to a private buffer and the buffers are merged
// in worker order once all workers finish. If ctx is cancelled the bake stops
// between triangles and ctx.Err() is returned.
func (b *Baker) Rasterize(ctx context.Context) (*AccumBuffer, error) {
	start := time.Now()
	numTris := b.low.NumTriangles()

	tris := make([]mesh.Triangle, numTris)
	footprints := make([]image.Rectangle, numTris)
	costs := make([]float64, numTris)
	samplesPerTexel := float64(b.opts.SamplesPerSide * b.opts.SamplesPerSide)
	for ti := range tris {
		tri, err := b.low.Triangle(ti)
		if err != nil {
			return nil, fmt.Errorf("baker: low-poly mesh: %w", err)
		}
		tris[ti] = tri

		// Each triangle carries a base cost so empty footprints still count
		costs[ti] = 1
		if footprint, ok := triangleFootprint(&tri, b.opts.Width, b.opts.Height); ok {
			footprints[ti] = footprint
			costs[ti] += float64(footprint.Dx()*footprint.Dy()) * samplesPerTexel
		}
	}

	workers := b.opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	blocks := b.scheduler.Schedule(costs, workers)

	progress := newProgressReporter(numTris, b.opts.ProgressInterval, b.opts.Progress)
	rasterizers := make([]*rasterizer, len(blocks))
	workerStats := make([]WorkerStat, len(blocks))

	group, groupCtx := errgroup.WithContext(ctx)
	for wi, block := range blocks {
		wi, block := wi, block
		var window image.Rectangle
		for ti := block.Start; ti < block.End; ti++ {
			window = window.Union(footprints[ti])
		}
		r := newRasterizer(b.caster, &b.opts, window)
		rasterizers[wi] = r

		group.Go(func() error {
			blockStart := time.Now()
			for ti := block.Start; ti < block.End; ti++ {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				r.rasterize(&tris[ti])
				progress.advance()
			}

			workerStats[wi] = WorkerStat{
				Id:            wi,
				FirstTriangle: block.Start,
				Triangles:     block.Len(),
				Percent:       100.0 * float32(block.Len()) / float32(numTris),
				Accepted:      r.stats.Accepted,
				BakeTime:      time.Since(blockStart),
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			b.logger.Warningf("bake interrupted after %d of %d triangles", progress.completed(), numTris)
			return nil, ctxErr
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress.finish()

	buf := NewAccumBuffer(b.opts.Width, b.opts.Height)
	stats := BakeStats{
		HighTriangles: b.accel.NumTriangles(),
		AccelNodes:    b.accel.Stats().Nodes,
		AccelDepth:    b.accel.Stats().MaxDepth,
		AccelTime:     b.accel.BuildTime(),
		Workers:       workerStats,
	}
	for _, r := range rasterizers {
		if err := buf.Merge(r.buf); err != nil {
			return nil, err
		}
		stats.add(r.stats)
	}
	stats.CoveredTexels = buf.CoveredTexels()
	stats.BakeTime = time.Since(start)
	b.stats = stats

	b.logger.Noticef(
		"rasterized %d triangles with %d worker(s) in %d ms (%d accepted, %d missed, %d back-facing samples)",
		numTris, len(blocks), stats.BakeTime.Nanoseconds()/1e6, stats.Accepted, stats.Missed, stats.BackFacing,
	)
	if stats.DegenerateTriangles > 0 {
		b.logger.Warningf("skipped %d triangles with degenerate uv coordinates", stats.DegenerateTriangles)
	}

	return buf, nil
}

// Rasterize the low-poly mesh and resolve the accumulated samples into a
// normal map.
func (b *Baker) Bake(ctx context.Context) (*texture.NormalMap, error) {
	buf, err := b.Rasterize(ctx)
	if err != nil {
		return nil, err
	}
	return buf.Finalize(), nil
}

// Serializes progress callbacks from concurrent workers.
type progressReporter struct {
	sync.Mutex

	total    int
	interval int
	callback func(done, total int)

	done         int
	lastReported int
	reported     bool
}

func newProgressReporter(total, interval int, callback func(done, total int)) *progressReporter {
	return &progressReporter{
		total:    total,
		interval: interval,
		callback: callback,
	}
}

// Record a finished triangle.
func (p *progressReporter) advance() {
	p.Lock()
	defer p.Unlock()

	p.done++
	if p.callback != nil && p.done-p.lastReported >= p.interval {
		p.report()
	}
}

// Emit the completion report unless it was already emitted.
func (p *progressReporter) finish() {
	p.Lock()
	defer p.Unlock()

	if p.callback != nil && (!p.reported || p.lastReported != p.done) {
		p.report()
	}
}

func (p *progressReporter) completed() int {
	p.Lock()
	defer p.Unlock()
	return p.done
}

func (p *progressReporter) report() {
	p.callback(p.done, p.total)
	p.lastReported = p.done
	p.reported = true
}
