package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SpatialHashGrid is a broadphase over world-space AABBs. It only answers
// "which nodes may touch this region"; exact tests are up to the caller.
type SpatialHashGrid struct {
	cellSize float32
	cells    map[uint64][]Node
	bounds   map[Node][2]mgl32.Vec3
	nodes    []Node // insertion order
	// unbounded nodes (infinite shapes) are returned by every query
	unbounded []Node
}

func NewSpatialHashGrid(cellSize float32) *SpatialHashGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]Node),
		bounds:   make(map[Node][2]mgl32.Vec3),
	}
}

func (grid *SpatialHashGrid) Clear() {
	clear(grid.cells)
	clear(grid.bounds)
	grid.nodes = grid.nodes[:0]
	grid.unbounded = grid.unbounded[:0]
}

func (grid *SpatialHashGrid) Insert(node Node, min, max mgl32.Vec3) {
	if _, ok := grid.bounds[node]; !ok {
		grid.nodes = append(grid.nodes, node)
	}
	grid.bounds[node] = [2]mgl32.Vec3{min, max}
	grid.forCells(min, max, func(key uint64) {
		grid.cells[key] = append(grid.cells[key], node)
	})
}

// InsertNode inserts node using its world bounds. Nodes without a shape are
// inserted as points, nodes with an infinite shape are always returned.
func (grid *SpatialHashGrid) InsertNode(node Node) {
	nb := node.AsNodeBase()
	if nb.Shape != nil && nb.Shape.IsInfinite() {
		grid.unbounded = append(grid.unbounded, node)
		return
	}
	min, max := WorldAABB(nb)
	grid.Insert(node, min, max)
}

// Build clears the grid and inserts every enabled node below root.
func (grid *SpatialHashGrid) Build(root Node) {
	grid.Clear()
	Walk(root, func(n Node) bool {
		grid.InsertNode(n)
		return true
	})
}

func (grid *SpatialHashGrid) QueryAABB(min, max mgl32.Vec3) []Node {
	results := append([]Node(nil), grid.unbounded...)

	// Huge query regions (far planes of thousands of units) would visit more
	// cells than there are entries; scan the entries instead.
	if grid.cellCount(min, max) > len(grid.cells) {
		for _, n := range grid.nodes {
			b := grid.bounds[n]
			if overlaps(b[0], b[1], min, max) {
				results = append(results, n)
			}
		}
		return results
	}

	unique := make(map[Node]struct{})
	grid.forCells(min, max, func(key uint64) {
		for _, n := range grid.cells[key] {
			if _, ok := unique[n]; !ok {
				unique[n] = struct{}{}
				results = append(results, n)
			}
		}
	})
	return results
}

// QueryFrustum returns the nodes whose bounds intersect f, in insertion
// order of their first cell hit.
func (grid *SpatialHashGrid) QueryFrustum(f *Frustum) []Node {
	min, max := cornersAABB(f.Corners[:])
	candidates := grid.QueryAABB(min, max)
	results := candidates[:0]
	for _, n := range candidates {
		b, ok := grid.bounds[n]
		if !ok || f.IntersectsAABB(b[0], b[1]) {
			results = append(results, n)
		}
	}
	return results
}

func (grid *SpatialHashGrid) forCells(min, max mgl32.Vec3, fn func(uint64)) {
	minX, maxX := grid.getCellIndex(min.X()), grid.getCellIndex(max.X())
	minY, maxY := grid.getCellIndex(min.Y()), grid.getCellIndex(max.Y())
	minZ, maxZ := grid.getCellIndex(min.Z()), grid.getCellIndex(max.Z())

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				fn(grid.hashKey(x, y, z))
			}
		}
	}
}

func (grid *SpatialHashGrid) cellCount(min, max mgl32.Vec3) int {
	count := 1
	for i := 0; i < 3; i++ {
		span := grid.getCellIndex(max[i]) - grid.getCellIndex(min[i]) + 1
		if span <= 0 {
			return 0
		}
		if count > math.MaxInt32/span {
			return math.MaxInt32
		}
		count *= span
	}
	return count
}

func overlaps(aMin, aMax, bMin, bMax mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if aMax[i] < bMin[i] || aMin[i] > bMax[i] {
			return false
		}
	}
	return true
}

func (grid *SpatialHashGrid) getCellIndex(pos float32) int {
	return int(math.Floor(float64(pos / grid.cellSize)))
}

// Simple hash function for 3D coordinates
func (grid *SpatialHashGrid) hashKey(x, y, z int) uint64 {
	// large primes for mixing
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}

// WorldAABB returns a conservative world-space box around the node's shape.
func WorldAABB(nb *NodeBase) (mgl32.Vec3, mgl32.Vec3) {
	p := nb.PoseWorld.Position
	if nb.Shape == nil {
		return p, p
	}
	r := nb.Shape.BoundingRadius() * nb.MaxScale()
	ext := mgl32.Vec3{r, r, r}
	return p.Sub(ext), p.Add(ext)
}

func cornersAABB(points []mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	const big = float32(1e20)
	lo := mgl32.Vec3{big, big, big}
	hi := mgl32.Vec3{-big, -big, -big}
	for _, c := range points {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], c[i])
			hi[i] = max(hi[i], c[i])
		}
	}
	return lo, hi
}
