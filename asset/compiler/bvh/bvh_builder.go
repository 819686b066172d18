package bvh

import (
	"math"
	"time"

	"github.com/giuliom95/baker2/log"
	"github.com/giuliom95/baker2/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// The BVH builder will not attempt to calculate split candidates
	// if the node bbox along an axis is less than this threshold.
	minSideLength float32 = 1e-6

	// Number of evenly spaced split planes evaluated per axis.
	splitCandidates = 32

	// Work lists with fewer items than this are scored on the calling
	// goroutine; larger ones score each split candidate concurrently.
	parallelScoreThreshold = 2048
)

var (
	// A split scoring strategy that uses the surface area heuristic (SAH).
	SurfaceAreaHeuristic = surfaceAreaHeuristic{}
)

// The BoundedVolume interface is implemented by all primitives that can
// be partitioned by the bvh builder.
type BoundedVolume interface {
	BBox() [2]types.Vec3
	Center() types.Vec3
}

// A callback that is called whenever the BVH builder creates a new leaf.
type LeafCallback func(leaf *Node, itemList []BoundedVolume)

// A split scoring strategy.
type ScoreStrategy interface {
	// Calculate a score for splitting workList at splitPoint along a particular Axis.
	ScoreSplit(workList []BoundedVolume, splitAxis Axis, splitPoint float32) (leftCount, rightCount int, score float32)

	// Calculate a score for all items in workList.
	ScorePartition(workList []BoundedVolume) (score float32)
}

type splitScore struct {
	axis       Axis
	splitPoint float32

	leftCount, rightCount int
	score                 float32
}

// Stats collected while building a BVH.
type Stats struct {
	PartitionedItems int
	TotalItems       int
	Nodes            int
	Leafs            int
	MaxDepth         int
}

type builder struct {
	logger log.Logger

	// Bvh nodes stored as a contiguous list
	nodes []Node

	// A callback invoked to set up BVH leafs depending on the type of
	// partitioned bounding volume
	leafCb LeafCallback

	// The minimum number of items that are required for creating a leaf.
	minLeafItems int

	// The split scoring strategy to use.
	scoreStrategy ScoreStrategy

	stats Stats
}

// Construct a BVH from a set of bounded volumes.
//
// The builder uses SAH for scoring splits:
// score = num_polygons * node bbox face area.
//
// The minLeafItems param should be used to specified the minimum number of
// items that can form a leaf. The BVH builder will automatically generate leafs
// if the incoming work length is <= minLeafItems.
func Build(workList []BoundedVolume, minLeafItems int, leafCb LeafCallback, scoreStrategy ScoreStrategy) ([]Node, Stats) {
	b := &builder{
		logger:        log.New("bvh builder"),
		nodes:         make([]Node, 0, 2*len(workList)/max(minLeafItems, 1)+1),
		leafCb:        leafCb,
		minLeafItems:  minLeafItems,
		scoreStrategy: scoreStrategy,
		stats: Stats{
			TotalItems: len(workList),
		},
	}

	start := time.Now()
	if len(workList) > 0 {
		b.partition(workList, 0)
	}
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs,
	)
	return b.nodes, b.stats
}

// Partition worklist and return node index.
func (b *builder) partition(workList []BoundedVolume, depth int) uint32 {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	node := Node{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}

	// Calculate bounding box for node
	for _, item := range workList {
		itemBBox := item.BBox()
		node.Min = types.MinVec3(node.Min, itemBBox[0])
		node.Max = types.MaxVec3(node.Max, itemBBox[1])
	}

	// Do we have enough items for partitioning? If not create a leaf
	if len(workList) <= b.minLeafItems {
		return b.createLeaf(&node, workList)
	}

	// Try partioning along each axis and select the split with best score
	bestSplit := b.findSplit(workList, node.Max.Sub(node.Min), node.Min)

	// If we can't find a split that improves the current node score create a leaf
	if bestSplit == nil {
		return b.createLeaf(&node, workList)
	}

	// split work list into two sets
	leftWorkList := make([]BoundedVolume, bestSplit.leftCount)
	rightWorkList := make([]BoundedVolume, bestSplit.rightCount)
	leftIndex := 0
	rightIndex := 0
	for _, item := range workList {
		center := item.Center()
		if center[bestSplit.axis] < bestSplit.splitPoint {
			leftWorkList[leftIndex] = item
			leftIndex++
		} else {
			rightWorkList[rightIndex] = item
			rightIndex++
		}
	}

	// Add node to list
	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, node)
	b.stats.Nodes++

	// Partition children and update node indices
	leftNodeIndex := b.partition(leftWorkList, depth+1)
	rightNodeIndex := b.partition(rightWorkList, depth+1)
	b.nodes[nodeIndex].SetChildNodes(leftNodeIndex, rightNodeIndex)

	return uint32(nodeIndex)
}

// Evaluate split candidates along each axis and return the one that improves
// the most over the unsplit node score or nil if no split improves it.
func (b *builder) findSplit(workList []BoundedVolume, side, origin types.Vec3) *splitScore {
	candidates := make([]splitScore, 0, 3*(splitCandidates-1))
	for axis := XAxis; axis <= ZAxis; axis++ {
		// Skip axis if bbox dimension is too small
		if side[axis] < minSideLength {
			continue
		}

		splitStep := side[axis] / splitCandidates
		for step := 1; step < splitCandidates; step++ {
			candidates = append(candidates, splitScore{
				axis:       axis,
				splitPoint: origin[axis] + float32(step)*splitStep,
			})
		}
	}

	score := func(candidate *splitScore) {
		candidate.leftCount, candidate.rightCount, candidate.score = b.scoreStrategy.ScoreSplit(workList, candidate.axis, candidate.splitPoint)
	}

	if len(workList) < parallelScoreThreshold {
		for index := range candidates {
			score(&candidates[index])
		}
	} else {
		// Run split tests in parallel; each goroutine owns one slot
		doneChan := make(chan struct{}, len(candidates))
		for index := range candidates {
			go func(candidate *splitScore) {
				score(candidate)
				doneChan <- struct{}{}
			}(&candidates[index])
		}
		for pending := len(candidates); pending > 0; pending-- {
			<-doneChan
		}
	}

	// Process all scores and pick the best split. Candidates are stored in
	// axis and split point order and ties keep the earliest one so the tree
	// does not depend on goroutine scheduling.
	var bestScore float32 = b.scoreStrategy.ScorePartition(workList)
	var bestSplit *splitScore = nil
	for index := range candidates {
		if candidates[index].score < bestScore {
			bestScore = candidates[index].score
			bestSplit = &candidates[index]
		}
	}

	return bestSplit
}

// Setup the given node item as a leaf node containing all items in the work list.
// Returns the index to the node in the bvh node array.
func (b *builder) createLeaf(node *Node, workList []BoundedVolume) uint32 {
	b.leafCb(node, workList)

	// append node to list
	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, *node)

	// update stats
	b.stats.Nodes++
	b.stats.Leafs++
	b.stats.PartitionedItems += len(workList)

	return uint32(nodeIndex)
}

// A score implementation that uses surface area heuristic for calculating split scores.
type surfaceAreaHeuristic struct{}

// Score a BVH split based on the surface area heuristic. The SAH calculates
// the split score using the formula (lower score is better):
//
// left count * left BBOX area + rightCount * right BBOX area.
//
// SAH avoids splits that generate empty partitions by assigning the worst
// possible score (MaxFloat32) when it enounters such cases.
func (h surfaceAreaHeuristic) ScoreSplit(workList []BoundedVolume, axis Axis, splitPoint float32) (leftCount, rightCount int, score float32) {
	lmin := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	rmin := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	lmax := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	rmax := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}

	leftCount = 0
	rightCount = 0
	for _, item := range workList {
		center := item.Center()
		itemBBox := item.BBox()
		if center[axis] < splitPoint {
			leftCount++
			lmin = types.MinVec3(lmin, itemBBox[0])
			lmax = types.MaxVec3(lmax, itemBBox[1])
		} else {
			rightCount++
			rmin = types.MinVec3(rmin, itemBBox[0])
			rmax = types.MaxVec3(rmax, itemBBox[1])
		}
	}

	// Make sure that we don't generate empty partitions
	if leftCount == 0 || rightCount == 0 {
		return leftCount, rightCount, math.MaxFloat32
	}

	lside := lmax.Sub(lmin)
	rside := rmax.Sub(rmin)
	score = (float32(leftCount) * (lside[0]*lside[1] + lside[1]*lside[2] + lside[0]*lside[2])) +
		(float32(rightCount) * (rside[0]*rside[1] + rside[1]*rside[2] + rside[0]*rside[2]))

	return leftCount, rightCount, score
}

// Calculate score for a partitioned workList using formula:
// count * BBOX area
//
// If the workList is empty, then this method returns the worst possible
// score (MaxFloat32).
func (h surfaceAreaHeuristic) ScorePartition(workList []BoundedVolume) (score float32) {
	if len(workList) == 0 {
		return math.MaxFloat32
	}

	min := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}

	for _, item := range workList {
		itemBBox := item.BBox()
		min = types.MinVec3(min, itemBBox[0])
		max = types.MaxVec3(max, itemBBox[1])
	}

	side := max.Sub(min)
	return float32(len(workList)) * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}
