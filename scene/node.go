package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Node is anything that lives in the scene hierarchy. Specialized nodes embed
// NodeBase and expose it through AsNodeBase.
type Node interface {
	AsNodeBase() *NodeBase
}

// NodeBase is the common part of every scene node. Queries only ever hold
// references to nodes; the hierarchy owns them.
type NodeBase struct {
	ID   uuid.UUID
	Name string

	// Local is relative to the parent. PoseWorld is derived by
	// UpdateWorldTransforms and is what queries and renderers read; its Scale
	// is the node's world scale.
	Local     Transform
	PoseWorld Transform

	Enabled bool

	// MaxDistance is the view-normalized distance beyond which the node is
	// culled. Zero or +Inf disables distance culling.
	MaxDistance float32

	// LastFrame is the frame index at which the node was last visited by a
	// query.
	LastFrame int

	// SortTag is scratch space for queries ranking nodes. Only valid right
	// after the query that wrote it.
	SortTag float32

	// Shape is the local-space bounding shape, nil for point-like nodes.
	Shape Shape

	parent   Node
	children []Node
}

func NewNodeBase(name string) NodeBase {
	return NodeBase{
		ID:        uuid.New(),
		Name:      name,
		Local:     NewTransform(),
		PoseWorld: NewTransform(),
		Enabled:   true,
		LastFrame: -1,
	}
}

func (n *NodeBase) AsNodeBase() *NodeBase {
	return n
}

func (n *NodeBase) Parent() Node {
	return n.parent
}

func (n *NodeBase) Children() []Node {
	return n.children
}

// HasMaxDistance reports whether distance culling applies to the node.
func (n *NodeBase) HasMaxDistance() bool {
	return n.MaxDistance > 0 && !math.IsInf(float64(n.MaxDistance), 1)
}

// MaxScale returns the largest absolute world-scale component.
func (n *NodeBase) MaxScale() float32 {
	s := n.PoseWorld.Scale
	m := abs32(s.X())
	if y := abs32(s.Y()); y > m {
		m = y
	}
	if z := abs32(s.Z()); z > m {
		m = z
	}
	return m
}

// SetPose places a root node. Children pick it up on the next
// UpdateWorldTransforms.
func (n *NodeBase) SetPose(position mgl32.Vec3, rotation mgl32.Quat) {
	n.Local.Position = position
	n.Local.Rotation = rotation
	n.PoseWorld.Position = position
	n.PoseWorld.Rotation = rotation
}

// AddChild attaches child to parent, detaching it from its previous parent.
func AddChild(parent, child Node) {
	if parent == nil || child == nil {
		panic("scene.AddChild: nil node")
	}
	cb := child.AsNodeBase()
	if cb.parent != nil {
		RemoveChild(cb.parent, child)
	}
	pb := parent.AsNodeBase()
	pb.children = append(pb.children, child)
	cb.parent = parent
}

func RemoveChild(parent, child Node) {
	pb := parent.AsNodeBase()
	for i, c := range pb.children {
		if c == child {
			pb.children = append(pb.children[:i], pb.children[i+1:]...)
			child.AsNodeBase().parent = nil
			return
		}
	}
}

// UpdateWorldTransforms propagates local transforms down from root. The root's
// world transform is its local transform.
func UpdateWorldTransforms(root Node) {
	rb := root.AsNodeBase()
	world := rb.Local
	if rb.parent != nil {
		world = rb.parent.AsNodeBase().PoseWorld.Compose(rb.Local)
	}
	updateWorld(root, world)
}

func updateWorld(n Node, world Transform) {
	nb := n.AsNodeBase()
	nb.PoseWorld = world
	if g, ok := n.(*LodGroupNode); ok {
		for _, l := range g.levels {
			if l.Node != nil {
				updateWorld(l.Node, world.Compose(l.Node.AsNodeBase().Local))
			}
		}
	}
	for _, c := range nb.children {
		updateWorld(c, world.Compose(c.AsNodeBase().Local))
	}
}

// Walk visits root and its enabled descendants depth-first. Disabled nodes
// are skipped together with their subtree. Returning false from fn stops
// descent into that node's children.
func Walk(root Node, fn func(Node) bool) {
	if root == nil {
		return
	}
	rb := root.AsNodeBase()
	if !rb.Enabled {
		return
	}
	if !fn(root) {
		return
	}
	for _, c := range rb.children {
		Walk(c, fn)
	}
}

// Collect returns every enabled node of the subtree in Walk order.
func Collect(root Node) []Node {
	var out []Node
	Walk(root, func(n Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Group is a plain node used to build hierarchies.
type Group struct {
	NodeBase
}

func NewGroup(name string) *Group {
	return &Group{NodeBase: NewNodeBase(name)}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
