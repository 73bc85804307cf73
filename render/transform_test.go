package render

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func TestLocalTransformIdentity(t *testing.T) {
	n := NewContainer("test")
	got := computeLocalTransform(n)
	assertMatrix(t, "identity", got, [6]float64{1, 0, 0, 1, 0, 0})
}

func TestLocalTransformTranslation(t *testing.T) {
	n := NewContainer("test")
	n.X, n.Y = 10, 20
	got := computeLocalTransform(n)
	assertMatrix(t, "translation", got, [6]float64{1, 0, 0, 1, 10, 20})
}

func TestLocalTransformScale(t *testing.T) {
	n := NewContainer("test")
	n.ScaleX, n.ScaleY = 2, 3
	got := computeLocalTransform(n)
	assertMatrix(t, "scale", got, [6]float64{2, 0, 0, 3, 0, 0})
}

func TestLocalTransformRotation90(t *testing.T) {
	n := NewContainer("test")
	n.Rotation = math.Pi / 2
	got := computeLocalTransform(n)
	assertMatrix(t, "rotation90", got, [6]float64{0, 1, -1, 0, 0, 0})
}

func TestLocalTransformPivot(t *testing.T) {
	n := NewContainer("test")
	n.PivotX, n.PivotY = 5, 5
	got := computeLocalTransform(n)
	assertMatrix(t, "pivot", got, [6]float64{1, 0, 0, 1, -5, -5})
}

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 0, 0, 3, 10, 20}
	got := multiplyAffine(identityTransform, m)
	assertMatrix(t, "identity*m", got, m)
}

func TestMultiplyAffineTranslations(t *testing.T) {
	p := [6]float64{1, 0, 0, 1, 10, 0}
	c := [6]float64{1, 0, 0, 1, 5, 0}
	got := multiplyAffine(p, c)
	assertMatrix(t, "translate chain", got, [6]float64{1, 0, 0, 1, 15, 0})
}

func TestInvertAffine(t *testing.T) {
	m := [6]float64{2, 0, 0, 2, 10, 20}
	inv := invertAffine(m)
	roundTrip := multiplyAffine(m, inv)
	assertMatrix(t, "m*inv(m)", roundTrip, identityTransform)
}

func TestInvertAffineSingularReturnsIdentity(t *testing.T) {
	m := [6]float64{0, 0, 0, 1, 10, 20}
	inv := invertAffine(m)
	assertMatrix(t, "singular->identity", inv, identityTransform)
}

func TestWorldTransformParentChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.X = 100
	child.X = 10

	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "parent.tx", parent.worldTransform[4], 100)
	assertNear(t, "child.tx", child.worldTransform[4], 110)
}

func TestAlphaPropagation(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.Alpha = 0.5
	child.Alpha = 0.5

	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "parent.worldAlpha", parent.worldAlpha, 0.5)
	assertNear(t, "child.worldAlpha", child.worldAlpha, 0.25)
}

func TestDirtyFlagSkipsClean(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.X = 100
	child.X = 10
	updateWorldTransform(parent, identityTransform, 1.0, false)

	child.transformDirty = false
	parent.transformDirty = false
	child.X = 999 // not marked dirty directly

	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "child.tx (stale)", child.worldTransform[4], 110)
}

func TestDirtyFlagRecomputes(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.X = 100
	child.X = 10
	updateWorldTransform(parent, identityTransform, 1.0, false)

	child.SetPosition(20, 0)
	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "child.tx (updated)", child.worldTransform[4], 120)
}

func TestParentRecomputedPropagates(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.X = 100
	child.X = 10
	updateWorldTransform(parent, identityTransform, 1.0, false)

	parent.SetPosition(200, 0)
	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "child.tx (from parent)", child.worldTransform[4], 210)
}

func TestWorldToLocalRoundtrip(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.X, parent.Y = 100, 50
	child.X, child.Y = 10, 20
	child.ScaleX, child.ScaleY = 2, 3
	child.Rotation = math.Pi / 6

	updateWorldTransform(parent, identityTransform, 1.0, false)

	wx, wy := 150.0, 80.0
	lx, ly := child.WorldToLocal(wx, wy)
	wx2, wy2 := child.LocalToWorld(lx, ly)
	assertNear(t, "roundtrip.x", wx2, wx)
	assertNear(t, "roundtrip.y", wy2, wy)
}

func TestDeepHierarchy(t *testing.T) {
	nodes := make([]*Node, 10)
	for i := range nodes {
		nodes[i] = NewContainer("")
		nodes[i].X = 10
		if i > 0 {
			nodes[i-1].AddChild(nodes[i])
		}
	}

	updateWorldTransform(nodes[0], identityTransform, 1.0, false)

	assertNear(t, "deep.tx", nodes[9].worldTransform[4], 100)
}

func TestSettersDirty(t *testing.T) {
	n := NewContainer("test")
	n.transformDirty = false

	n.SetPosition(1, 2)
	if !n.transformDirty {
		t.Error("SetPosition should set dirty")
	}
	n.transformDirty = false

	n.SetScale(2, 2)
	if !n.transformDirty {
		t.Error("SetScale should set dirty")
	}
	n.transformDirty = false

	n.SetRotation(1)
	if !n.transformDirty {
		t.Error("SetRotation should set dirty")
	}
	n.transformDirty = false

	n.MarkDirty()
	if !n.transformDirty {
		t.Error("MarkDirty should set dirty")
	}
}

// TestViewportTransformAgreesWithLocalTransform resolves the Open Question
// on non-right-angle rotation correctness: for an equal, unflipped scale
// the viewport matrix used by render and the node matrix used internally
// must compose identically for the same translate/scale/rotate inputs.
func TestViewportTransformAgreesWithLocalTransform(t *testing.T) {
	v := Viewport{PanX: 12, PanY: -7, ScaleX: 1.5, ScaleY: 1.5, Rotation: math.Pi / 5}
	got := ComputeViewportTransform(v)

	n := NewContainer("equivalent")
	n.X, n.Y = v.PanX, v.PanY
	n.ScaleX, n.ScaleY = v.ScaleX, v.ScaleY
	n.Rotation = v.Rotation
	want := computeLocalTransform(n)

	assertMatrix(t, "viewport vs node", got, want)
}

func TestInvertAffineBothZeroScales(t *testing.T) {
	m := [6]float64{0, 0, 0, 0, 50, 100}
	inv := invertAffine(m)
	assertMatrix(t, "zero-scale->identity", inv, identityTransform)
}

func TestWorldToLocalZeroScale(t *testing.T) {
	n := NewContainer("test")
	n.ScaleX, n.ScaleY = 0, 0
	updateWorldTransform(n, identityTransform, 1.0, true)

	lx, ly := n.WorldToLocal(100, 200)
	if math.IsNaN(lx) || math.IsNaN(ly) {
		t.Error("WorldToLocal with zero scale should not produce NaN")
	}
}
