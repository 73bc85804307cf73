package render

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates a single float value over time via gween. Used by
// TintAnimator for the hover-brighten tint blend.
type Tween struct {
	inner  *gween.Tween
	target *float64
}

// NewTween animates *target from `from` to `to` over duration seconds
// using an ease-out curve.
func NewTween(target *float64, from, to float32, duration float32) *Tween {
	return &Tween{
		inner:  gween.New(from, to, duration, ease.OutQuad),
		target: target,
	}
}

// Update advances the tween by dt seconds, writing the current value into
// the bound target. Returns true once the tween has finished.
func (t *Tween) Update(dt float32) bool {
	value, done := t.inner.Update(dt)
	*t.target = float64(value)
	return done
}

// TintAnimator manages the in-flight hover tint tweens for a
// set of nodes, keyed by annotation id, so repeated hover-enter/leave
// events restart cleanly instead of stacking.
type TintAnimator struct {
	active map[string]*tintState
}

type tintState struct {
	node  *Node
	alpha float64
	tween *Tween
}

// NewTintAnimator creates an empty animator.
func NewTintAnimator() *TintAnimator {
	return &TintAnimator{active: make(map[string]*tintState)}
}

// AnimateHover starts (or restarts) a brighten/dim tween for id's node,
// targeting entering=true for hover-in, false for hover-out.
func (a *TintAnimator) AnimateHover(n *Node, entering bool) {
	st, ok := a.active[n.ID]
	if !ok {
		st = &tintState{node: n, alpha: 0}
		a.active[n.ID] = st
	}
	from := float32(st.alpha)
	to := float32(0)
	if entering {
		to = 1
	}
	st.tween = NewTween(&st.alpha, from, to, 0.15)
}

// Update advances every active tween by dt seconds and writes each
// node's HoverColor as BaseColor lerped toward white by 0.35*alpha,
// removing tweens that have finished at their rest value.
func (a *TintAnimator) Update(dt float32) {
	for id, st := range a.active {
		done := true
		if st.tween != nil {
			done = st.tween.Update(dt)
		}
		st.node.HoverColor = lerpColor(st.node.BaseColor, ColorWhite, st.alpha*0.35)
		if done && (st.alpha <= 0 || st.alpha >= 1) {
			delete(a.active, id)
		}
	}
}

func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
