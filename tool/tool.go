package tool

import (
	"github.com/annota/core/history"
	"github.com/annota/core/store"
)

// Context is the shared environment every tool operates against: the
// annotation store and history manager to mutate, and a stub of
// properties (layer/category/tags) merged into every new annotation so
// it lands in the intended layer.
type Context struct {
	Store   *store.Store
	History *history.Manager

	// DefaultProperties seeds properties on every annotation a tool
	// creates (e.g. {"layer": "cells", "category": "positive"}). Callers
	// typically replace this per active layer/category selection.
	DefaultProperties map[string]any

	// DefaultStyle seeds Style on every annotation a tool creates, or nil
	// to leave the rendering stage's own per-kind defaults in effect.
	DefaultStyle *store.Style
}

// mergedProperties returns a fresh copy of ctx.DefaultProperties with
// extra merged on top, so per-call overrides never mutate the shared stub.
func (c *Context) mergedProperties(extra map[string]any) map[string]any {
	out := make(map[string]any, len(c.DefaultProperties)+len(extra))
	for k, v := range c.DefaultProperties {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Tool is the minimal lifecycle every drawing tool implements. Pointer
// and keyboard handling are optional capabilities (PressHandler,
// DragHandler, ReleaseHandler, ClickHandler, MoveHandler, KeyHandler) a
// concrete tool implements selectively, rather than one fat interface
// every tool must satisfy in full.
type Tool interface {
	ID() string
	Init(ctx *Context)
	Destroy()
	SetEnabled(enabled bool)
	Enabled() bool
}

// PressHandler is implemented by tools that react to a pointer press.
// preventDefault suppresses the viewer's own pan/zoom handling for this
// event
type PressHandler interface {
	OnPress(ev Event) (preventDefault bool)
}

// DragHandler is implemented by tools that track pointer movement while
// a button is held.
type DragHandler interface {
	OnDrag(ev Event) (preventDefault bool)
}

// ReleaseHandler is implemented by tools that finalize work on release.
type ReleaseHandler interface {
	OnRelease(ev Event) (preventDefault bool)
}

// ClickHandler is implemented by tools that react to a press/release pair
// that never exceeded the drag dead zone (e.g. the polygon tool's
// vertex-append clicks).
type ClickHandler interface {
	OnClick(ev Event) (preventDefault bool)
}

// MoveHandler is implemented by tools that react to pointer movement with
// no button held (e.g. the SAM tool's hover preview).
type MoveHandler interface {
	OnMove(ev Event) (preventDefault bool)
}

// KeyHandler is implemented by tools that react to a named key press
// (e.g. the polygon tool's Escape-cancels-in-progress-shape).
type KeyHandler interface {
	OnKey(key string) (preventDefault bool)
}

// baseTool supplies the Enabled/SetEnabled bookkeeping every concrete
// tool embeds, so the flag handling isn't repeated per tool.
type baseTool struct {
	enabled bool
}

func (b *baseTool) SetEnabled(enabled bool) { b.enabled = enabled }
func (b *baseTool) Enabled() bool           { return b.enabled }

// Manager holds the tool registry and enforces the "at most one tool
// active at a time" rule: activating a tool deactivates
// and destroys whichever was active first.
type Manager struct {
	ctx    *Context
	tools  map[string]Tool
	active Tool

	dragging     bool
	pressX       float64
	pressY       float64
	pressScreenX float64
	pressScreenY float64
}

// NewManager creates a tool manager bound to ctx.
func NewManager(ctx *Context) *Manager {
	return &Manager{ctx: ctx, tools: make(map[string]Tool)}
}

// Register adds t to the registry under t.ID(). Registering a tool does
// not activate it.
func (m *Manager) Register(t Tool) {
	m.tools[t.ID()] = t
}

// Active returns the currently active tool's id, or "" if none.
func (m *Manager) Active() string {
	if m.active == nil {
		return ""
	}
	return m.active.ID()
}

// Activate deactivates the current tool (if any) and activates the one
// registered under id. Unknown ids deactivate the current tool and
// leave no tool active.
func (m *Manager) Activate(id string) {
	m.Deactivate()
	t, ok := m.tools[id]
	if !ok {
		return
	}
	t.SetEnabled(true)
	t.Init(m.ctx)
	m.active = t
}

// Deactivate detaches and destroys the active tool's internal state, if any.
func (m *Manager) Deactivate() {
	if m.active == nil {
		return
	}
	m.active.SetEnabled(false)
	m.active.Destroy()
	m.active = nil
}

// Press routes a pointer-down event to the active tool, tracking press
// origin for the drag-dead-zone/click distinction Release resolves.
func (m *Manager) Press(ev Event) (preventDefault bool) {
	m.dragging = false
	m.pressX, m.pressY = ev.ImageX, ev.ImageY
	m.pressScreenX, m.pressScreenY = ev.ScreenX, ev.ScreenY
	if m.active == nil {
		return false
	}
	if h, ok := m.active.(PressHandler); ok {
		return h.OnPress(ev)
	}
	return false
}

// Drag routes a pointer-move-with-button-held event to the active tool
// once the dead zone is exceeded.
func (m *Manager) Drag(ev Event) (preventDefault bool) {
	if !m.dragging && ExceedsDeadZone(m.pressScreenX, m.pressScreenY, ev.ScreenX, ev.ScreenY) {
		m.dragging = true
	}
	if !m.dragging || m.active == nil {
		return false
	}
	if h, ok := m.active.(DragHandler); ok {
		return h.OnDrag(ev)
	}
	return false
}

// Release routes a pointer-up event to the active tool, and additionally
// fires OnClick when the gesture never exceeded the drag dead zone (per
// the press-then-release-within-~5px-qualifies-as-click rule).
func (m *Manager) Release(ev Event) (preventDefault bool) {
	wasDragging := m.dragging
	m.dragging = false
	if m.active == nil {
		return false
	}
	if h, ok := m.active.(ReleaseHandler); ok {
		preventDefault = h.OnRelease(ev)
	}
	if !wasDragging {
		if h, ok := m.active.(ClickHandler); ok {
			if h.OnClick(ev) {
				preventDefault = true
			}
		}
	}
	return preventDefault
}

// Move routes a pointer-move-with-no-button-held event to the active tool.
func (m *Manager) Move(ev Event) (preventDefault bool) {
	if m.active == nil {
		return false
	}
	if h, ok := m.active.(MoveHandler); ok {
		return h.OnMove(ev)
	}
	return false
}

// Key routes a named key press to the active tool.
func (m *Manager) Key(key string) (preventDefault bool) {
	if m.active == nil {
		return false
	}
	if h, ok := m.active.(KeyHandler); ok {
		return h.OnKey(key)
	}
	return false
}
