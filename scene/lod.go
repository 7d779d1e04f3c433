package scene

import "sort"

// LodLevel is one representation of a LOD group. The level becomes active
// at view-normalized distances >= Distance.
type LodLevel struct {
	Distance float32
	Node     Node
}

// LodGroupNode resolves to exactly one of its levels depending on distance.
// Levels are not children in the hierarchy; only the selected subtree is
// traversed.
type LodGroupNode struct {
	NodeBase
	levels []LodLevel
}

func NewLodGroupNode(name string) *LodGroupNode {
	return &LodGroupNode{NodeBase: NewNodeBase(name)}
}

// AddLevel inserts a level keeping the levels sorted by distance.
func (g *LodGroupNode) AddLevel(distance float32, node Node) {
	g.levels = append(g.levels, LodLevel{Distance: distance, Node: node})
	sort.SliceStable(g.levels, func(i, j int) bool {
		return g.levels[i].Distance < g.levels[j].Distance
	})
	if node != nil {
		nb := node.AsNodeBase()
		nb.parent = g
	}
}

func (g *LodGroupNode) Levels() []LodLevel {
	return g.levels
}

// SelectLod returns the node of the level with the largest threshold not
// exceeding distance. Below the first threshold the first level is used.
func (g *LodGroupNode) SelectLod(distance float32) Node {
	if len(g.levels) == 0 {
		return nil
	}
	selected := g.levels[0].Node
	for _, l := range g.levels[1:] {
		if distance < l.Distance {
			break
		}
		selected = l.Node
	}
	return selected
}
