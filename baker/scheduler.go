package baker

// A contiguous range [Start, End) of low-poly triangle indices.
type Block struct {
	Start int
	End   int
}

// Len returns the number of triangles in the block.
func (b Block) Len() int {
	return b.End - b.Start
}

// The BlockScheduler interface is implemented by all triangle scheduling
// algorithms.
type BlockScheduler interface {
	// Split the triangle list into at most workers contiguous blocks given
	// an estimated cost for each triangle. Blocks are returned in triangle
	// order and never overlap.
	Schedule(costs []float64, workers int) []Block
}

// The naive scheduler assigns the same number of triangles to each worker.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return naiveScheduler{}
}

func (naiveScheduler) Schedule(costs []float64, workers int) []Block {
	numTris := len(costs)
	if workers > numTris {
		workers = numTris
	}

	blocks := make([]Block, 0, workers)
	start := 0
	for index := 0; index < workers; index++ {
		// Spread the remainder over the first blocks
		size := numTris / workers
		if index < numTris%workers {
			size++
		}
		blocks = append(blocks, Block{start, start + size})
		start += size
	}
	return blocks
}

// The cost scheduler splits triangles so that each worker receives
// approximately the same total cost. Triangle costs are estimated from the
// number of samples their uv footprint covers.
type costScheduler struct{}

// Create a new cost scheduler instance.
func CostScheduler() BlockScheduler {
	return costScheduler{}
}

// Block k ends at the first triangle whose prefix cost reaches
// (k+1)/workers of the total cost.
func (costScheduler) Schedule(costs []float64, workers int) []Block {
	numTris := len(costs)
	if workers > numTris {
		workers = numTris
	}
	if workers <= 1 {
		if numTris == 0 {
			return nil
		}
		return []Block{{0, numTris}}
	}

	var total float64
	for _, cost := range costs {
		total += cost
	}
	if total <= 0 {
		return naiveScheduler{}.Schedule(costs, workers)
	}

	blocks := make([]Block, 0, workers)
	start := 0
	var prefix float64
	for ti, cost := range costs {
		prefix += cost
		remainingBlocks := workers - len(blocks) - 1
		remainingTris := numTris - ti - 1
		if remainingBlocks == 0 {
			break
		}

		// Cut when the target is reached or when the remaining triangles
		// are only just enough to give each remaining block one
		target := total * float64(len(blocks)+1) / float64(workers)
		if prefix >= target || remainingTris == remainingBlocks {
			blocks = append(blocks, Block{start, ti + 1})
			start = ti + 1
		}
	}
	blocks = append(blocks, Block{start, numTris})
	return blocks
}
