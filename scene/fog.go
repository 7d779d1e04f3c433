package scene

import "github.com/go-gl/mathgl/mgl32"

// FogNode is a fog volume. When several fog nodes are visible the one with
// the highest Priority wins.
type FogNode struct {
	NodeBase
	Priority int
	Density  float32
	Color    mgl32.Vec4
}

func NewFogNode(name string, priority int) *FogNode {
	return &FogNode{
		NodeBase: NewNodeBase(name),
		Priority: priority,
		Density:  1,
		Color:    mgl32.Vec4{1, 1, 1, 1},
	}
}
