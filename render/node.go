package render

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/annota/core/geometry"
)

// VisualState selects which of a node's three tints (base/hover/selected)
// is currently applied.
type VisualState uint8

const (
	VisualBase VisualState = iota
	VisualHover
	VisualSelected
)

// Node is the fundamental element of the annotation scene graph. One Node
// exists per live annotation id, plus one per layer-group container and
// the stage root. A single flat struct serves every shape kind; the draw
// hot path stays free of interface dispatch.
type Node struct {
	// ID is the annotation id this node renders, or "" for a container
	// (layer group / stage root).
	ID   string
	Name string
	// Kind selects the tessellation path. Zero value (geometry.KindPoint)
	// is meaningless for containers, which are never drawn.
	Kind geometry.Kind

	Parent   *Node
	children []*Node

	// Local transform, relative to Parent.
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
	SkewX, SkewY   float64
	PivotX, PivotY float64

	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	Alpha      float64
	Visible    bool
	Renderable bool

	// ZIndex controls draw order among siblings (layer groups use their
	// layer.Layer.ZIndex; annotation nodes within a layer draw in
	// insertion order unless overridden).
	ZIndex int

	State         VisualState
	BaseColor     Color
	HoverColor    Color
	SelectedColor Color
	BlendMode     BlendMode

	// Mesh data, built by BuildMesh from the annotation's geometry.Shape.
	Vertices         []ebiten.Vertex
	Indices          []uint16
	MeshImage        *ebiten.Image
	transformedVerts []ebiten.Vertex
	meshAABB         Rect
	meshAABBDirty    bool

	childrenSorted bool
	sortedChildren []*Node
}

func nodeDefaults(n *Node) {
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.BaseColor = ColorWhite
	n.HoverColor = ColorWhite
	n.SelectedColor = ColorWhite
	n.Visible = true
	n.Renderable = true
	n.transformDirty = true
	n.childrenSorted = true
}

// NewContainer creates a non-drawing group node (layer groups, stage root).
func NewContainer(name string) *Node {
	n := &Node{Name: name}
	nodeDefaults(n)
	return n
}

// NewShapeNode creates a mesh-backed node for one annotation. Its geometry
// is populated by a later call to BuildMesh.
func NewShapeNode(id string, kind geometry.Kind) *Node {
	n := &Node{ID: id, Name: id, Kind: kind, Renderable: true}
	nodeDefaults(n)
	return n
}

// Tint returns the color currently in effect for n.State.
func (n *Node) Tint() Color {
	switch n.State {
	case VisualHover:
		return n.HoverColor
	case VisualSelected:
		return n.SelectedColor
	default:
		return n.BaseColor
	}
}

// Children returns n's children in ZIndex order (stable for ties).
func (n *Node) Children() []*Node {
	if !n.childrenSorted {
		n.sortedChildren = append(n.sortedChildren[:0], n.children...)
		sort.SliceStable(n.sortedChildren, func(i, j int) bool {
			return n.sortedChildren[i].ZIndex < n.sortedChildren[j].ZIndex
		})
		n.childrenSorted = true
	}
	return n.sortedChildren
}

// AddChild appends child to n's children, reparenting it.
func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	child.transformDirty = true
	n.children = append(n.children, child)
	n.childrenSorted = false
}

// RemoveChild detaches child from n, if present.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.Parent = nil
			n.childrenSorted = false
			return
		}
	}
}

// SetZIndex updates the node's ZIndex and marks the parent's child order
// stale so the next Children() call resorts.
func (n *Node) SetZIndex(z int) {
	n.ZIndex = z
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// FindChild returns the direct child with the given annotation id, if any.
func (n *Node) FindChild(id string) (*Node, bool) {
	for _, c := range n.children {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}
