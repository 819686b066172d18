package bvh

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/giuliom95/baker2/types"
)

type testVolume struct {
	bbox [2]types.Vec3
}

func (v testVolume) BBox() [2]types.Vec3 {
	return v.bbox
}

func (v testVolume) Center() types.Vec3 {
	return v.bbox[0].Add(v.bbox[1]).Mul(0.5)
}

func TestLeafCallback(t *testing.T) {
	type primSpec struct {
		min types.Vec3
		max types.Vec3
	}

	primSpecs := []primSpec{
		{types.Vec3{-2, 0, -2}, types.Vec3{-1, 1, -1}},
		{types.Vec3{1, 0, -2}, types.Vec3{2, 1, -1}},
		{types.Vec3{-2, 0, 1}, types.Vec3{-1, 1, 2}},
		{types.Vec3{1, 0, 1}, types.Vec3{2, 1, 2}},
	}

	itemList := make([]BoundedVolume, len(primSpecs))
	for idx, ps := range primSpecs {
		itemList[idx] = testVolume{[2]types.Vec3{ps.min, ps.max}}
	}

	var cbCount = 0
	var expItemListCount = 0
	cb := func(leaf *Node, itemList []BoundedVolume) {
		cbCount++
		if len(itemList) != expItemListCount {
			t.Fatalf("expected leaf callback to be called with %d items; got %d", expItemListCount, len(itemList))
		}
		leaf.SetPrimitives(0, uint32(len(itemList)))
	}

	var expCount = 0

	// Partition each item in a single leaf
	cbCount = 0
	expItemListCount = 1
	treeNodes, stats := Build(itemList, 1, cb, SurfaceAreaHeuristic)

	expCount = 4
	if cbCount != expCount {
		t.Fatalf("expected leaf callback to be called %d times; called %d", expCount, cbCount)
	}
	expCount = 7
	if len(treeNodes) != expCount {
		t.Fatalf("expected bvh tree to have %d nodes; got %d", expCount, len(treeNodes))
	}
	if stats.Leafs != 4 || stats.PartitionedItems != 4 || stats.MaxDepth != 2 {
		t.Fatalf("unexpected build stats %+v", stats)
	}

	// Partition two items in a single leaf
	cbCount = 0
	expItemListCount = 2
	treeNodes, _ = Build(itemList, 2, cb, SurfaceAreaHeuristic)

	expCount = 2
	if cbCount != expCount {
		t.Fatalf("expected leaf callback to be called %d times; called %d", expCount, cbCount)
	}
	expCount = 3
	if len(treeNodes) != expCount {
		t.Fatalf("expected bvh tree to have %d nodes; got %d", expCount, len(treeNodes))
	}

	// Root node encloses all items
	expMin := types.Vec3{-2, 0, -2}
	expMax := types.Vec3{2, 1, 2}
	if treeNodes[0].Min != expMin || treeNodes[0].Max != expMax {
		t.Fatalf("expected root bbox to be [%v, %v]; got [%v, %v]", expMin, expMax, treeNodes[0].Min, treeNodes[0].Max)
	}
	if treeNodes[0].IsLeaf() {
		t.Fatal("expected root to be an inner node")
	}
	left, right := treeNodes[0].Children()
	if !treeNodes[left].IsLeaf() || !treeNodes[right].IsLeaf() {
		t.Fatal("expected root children to be leaves")
	}
}

func TestEmptyWorkList(t *testing.T) {
	treeNodes, stats := Build(nil, 1, func(*Node, []BoundedVolume) {}, SurfaceAreaHeuristic)
	if len(treeNodes) != 0 || stats.Nodes != 0 {
		t.Fatalf("expected empty tree; got %d nodes", len(treeNodes))
	}
}

func TestUnsplittableItemsFormLeaf(t *testing.T) {
	// Identical volumes cannot be separated by any split plane
	itemList := make([]BoundedVolume, 8)
	for idx := range itemList {
		itemList[idx] = testVolume{[2]types.Vec3{{0, 0, 0}, {1, 1, 1}}}
	}

	var leafItems int
	treeNodes, _ := Build(itemList, 1, func(leaf *Node, items []BoundedVolume) {
		leafItems = len(items)
	}, SurfaceAreaHeuristic)

	if len(treeNodes) != 1 || leafItems != 8 {
		t.Fatalf("expected a single leaf with 8 items; got %d nodes and %d leaf items", len(treeNodes), leafItems)
	}
}

func TestDeterministicBuild(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	// Enough items to trigger concurrent split scoring
	itemList := make([]BoundedVolume, parallelScoreThreshold+500)
	for idx := range itemList {
		min := types.Vec3{rng.Float32() * 10, rng.Float32() * 10, rng.Float32() * 10}
		itemList[idx] = testVolume{[2]types.Vec3{min, min.Add(types.Vec3{0.1, 0.1, 0.1})}}
	}

	build := func() ([]Node, []int) {
		var order []int
		lookup := make(map[BoundedVolume]int, len(itemList))
		for idx, item := range itemList {
			lookup[item] = idx
		}
		nodes, _ := Build(itemList, 4, func(leaf *Node, items []BoundedVolume) {
			leaf.SetPrimitives(uint32(len(order)), uint32(len(items)))
			for _, item := range items {
				order = append(order, lookup[item])
			}
		}, SurfaceAreaHeuristic)
		return nodes, order
	}

	nodes1, order1 := build()
	nodes2, order2 := build()
	if !reflect.DeepEqual(nodes1, nodes2) || !reflect.DeepEqual(order1, order2) {
		t.Fatal("expected repeated builds to produce identical trees")
	}
	if len(order1) != len(itemList) {
		t.Fatalf("expected all %d items to be assigned to leaves; got %d", len(itemList), len(order1))
	}
}
