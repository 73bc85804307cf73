package annotator

import (
	"github.com/annota/core/editor"
	"github.com/annota/core/history"
	"github.com/annota/core/layer"
	"github.com/annota/core/render"
	"github.com/annota/core/store"
	"github.com/annota/core/tool"
)

// Annotator is the public facade: it wires the store,
// layer manager, history manager, rendering stage, editor overlay, and
// tool manager together behind a single API surface driven by an
// external Viewer.
type Annotator struct {
	viewer Viewer

	Store   *store.Store
	Layers  *layer.Manager
	History *history.Manager
	Stage   *render.Stage
	Overlay *editor.Overlay
	Tools   *tool.Manager

	events *emitter

	unsubscribeStore func()
	onPress          func(any)
	onRelease        func(any)

	mouseDown      bool
	draggingHandle bool
	pressX         float64
	pressY         float64

	selection *selectionState
	samTool   *tool.SAMTool
}

// New constructs an Annotator against viewer, wiring every subsystem per
// opts. Returns ErrViewerNotReady if the viewer has not yet fired its
// open event. Construction is synchronous once the viewer itself reports
// ready; there is no separate GPU-context wait on this side (the
// caller's Viewer implementation owns the ebiten/GPU surface).
func New(viewer Viewer, opts Options) (*Annotator, error) {
	if viewer == nil || !viewer.Ready() {
		return nil, ErrViewerNotReady
	}

	a := &Annotator{
		viewer:  viewer,
		Store:   store.New(nil),
		Layers:  layer.New(),
		History: history.New(opts.History.toHistoryOptions(), nil),
		Stage:   render.NewStage(),
		events:  newEmitter(),
	}
	a.selection = newSelectionState(a)
	a.Overlay = editor.NewOverlay(a.Store, a.History)

	ctx := &tool.Context{
		Store:             a.Store,
		History:           a.History,
		DefaultProperties: opts.DefaultProperties,
		DefaultStyle:      opts.DefaultStyle,
	}
	a.Tools = tool.NewManager(ctx)
	a.registerDefaultTools(opts)

	a.Layers.Subscribe(func() {
		a.Stage.SyncLayers(a.Layers)
		for _, ann := range a.Store.All() {
			a.syncToStage(ann)
		}
	})
	a.Stage.SyncLayers(a.Layers)

	a.unsubscribeStore = a.Store.Subscribe(a.onStoreChange)

	a.wireViewerEvents()
	return a, nil
}

func (a *Annotator) registerDefaultTools(opts Options) {
	a.Tools.Register(tool.NewPointTool())
	a.Tools.Register(tool.NewRectangleTool())
	a.Tools.Register(tool.NewPolygonTool())

	freehand := tool.NewFreehandTool()
	if opts.Curve.SmoothingTolerance > 0 {
		freehand.SmoothingTolerance = opts.Curve.SmoothingTolerance
	}
	a.Tools.Register(freehand)

	push := tool.NewPushTool()
	if opts.Push.Radius > 0 {
		push.PushRadius = opts.Push.Radius
	}
	if opts.Push.Strength > 0 {
		push.PushStrength = opts.Push.Strength
	}
	push.ShowCursor = opts.Push.ShowCursor
	a.Tools.Register(push)

	if opts.SAM.Predictor != nil {
		samTool := tool.NewSAMTool(sessionFor(opts.SAM.Predictor))
		samTool.ShowHoverPreview = opts.SAM.ShowHoverPreview
		if opts.SAM.PreviewOpacity > 0 {
			samTool.PreviewOpacity = opts.SAM.PreviewOpacity
		}
		a.Tools.Register(samTool)
		a.samTool = samTool
	}
}

// onStoreChange mirrors every store mutation into the rendering stage,
// one Upsert/Remove per affected id, and emits the corresponding public
// event. Layer routing resolves to the first layer that
// accepts the annotation (render.Stage parents a shape under exactly one
// group; an annotation may belong to several layers logically, but
// rendering needs one primary parent).
func (a *Annotator) onStoreChange(evt store.ChangeEvent) {
	for _, ann := range evt.Created {
		a.syncToStage(ann)
		a.events.emit(EventCreateAnnotation, ann)
	}
	for _, u := range evt.Updated {
		a.syncToStage(u.New)
		a.events.emit(EventUpdateAnnotation, u.New)
	}
	for _, ann := range evt.Deleted {
		a.Stage.Remove(ann.ID)
		a.events.emit(EventDeleteAnnotation, ann)
	}
}

func (a *Annotator) syncToStage(ann store.Annotation) {
	layers := a.Layers.LayersFor(ann)
	if len(layers) == 0 {
		a.Stage.Remove(ann.ID)
		return
	}
	a.Stage.Upsert(ann, layers[0].ID)
}

// On registers fn for event, returning a Subscription for later Off.
func (a *Annotator) On(event EventName, fn Handler) Subscription {
	return a.events.On(event, fn)
}

// Off unregisters the listener identified by sub from event.
func (a *Annotator) Off(event EventName, sub Subscription) {
	a.events.Off(event, sub)
}

// Emit fires event with payload to every registered listener. Exposed so
// a host application can synthesize its own events through the same bus.
func (a *Annotator) Emit(event EventName, payload any) {
	a.events.emit(event, payload)
}

// Add inserts ann, generating an id if ann.ID is empty.
func (a *Annotator) Add(ann store.Annotation) (store.Annotation, error) {
	return a.Store.Add(ann)
}

// Update replaces the annotation at id.
func (a *Annotator) Update(id string, ann store.Annotation) (store.Annotation, error) {
	return a.Store.Update(id, ann)
}

// Delete removes the annotation at id.
func (a *Annotator) Delete(id string) (store.Annotation, error) {
	return a.Store.Delete(id)
}

// Clear removes every annotation.
func (a *Annotator) Clear() { a.Store.Clear() }

// GetAnnotations returns every live annotation.
func (a *Annotator) GetAnnotations() []store.Annotation { return a.Store.All() }

// CreateLayer adds a new layer.
func (a *Annotator) CreateLayer(l layer.Layer) (layer.Layer, error) { return a.Layers.Create(l) }

// GetLayer returns the layer for id.
func (a *Annotator) GetLayer(id string) (layer.Layer, bool) { return a.Layers.Get(id) }

// GetAllLayers returns every layer in insertion order.
func (a *Annotator) GetAllLayers() []layer.Layer { return a.Layers.All() }

// UpdateLayer replaces the layer at id.
func (a *Annotator) UpdateLayer(id string, l layer.Layer) (layer.Layer, error) {
	return a.Layers.Update(id, l)
}

// DeleteLayer removes the layer at id.
func (a *Annotator) DeleteLayer(id string) error { return a.Layers.Delete(id) }

// SetLayerVisibility sets a layer's visibility.
func (a *Annotator) SetLayerVisibility(id string, visible bool) error {
	return a.Layers.SetVisibility(id, visible)
}

// SetLayerLocked sets a layer's locked flag.
func (a *Annotator) SetLayerLocked(id string, locked bool) error {
	return a.Layers.SetLocked(id, locked)
}

// SetLayerOpacity sets a layer's opacity, clamped to [0,1].
func (a *Annotator) SetLayerOpacity(id string, opacity float64) error {
	return a.Layers.SetOpacity(id, opacity)
}

// SetLayerZIndex sets a layer's stacking order.
func (a *Annotator) SetLayerZIndex(id string, z int) error {
	return a.Layers.SetZIndex(id, z)
}

// SetLayerFilter sets or clears (nil) a layer's filter predicate.
func (a *Annotator) SetLayerFilter(id string, filter layer.Filter) error {
	return a.Layers.SetFilter(id, filter)
}

// SetStyle installs a dynamic style expression on the rendering stage: a
// non-nil return overrides an annotation's own style. Live annotations
// are re-tessellated immediately.
func (a *Annotator) SetStyle(expr func(store.Annotation) *store.Style) {
	a.Stage.SetStyle(expr)
	a.resyncStage()
}

// SetFilter installs a rendering-visibility predicate: annotations it
// rejects stay in the store but are not drawn. Pass nil to show
// everything.
func (a *Annotator) SetFilter(pred func(store.Annotation) bool) {
	a.Stage.SetFilter(pred)
	a.resyncStage()
}

// SetVisible toggles the whole annotation overlay without touching
// per-layer visibility.
func (a *Annotator) SetVisible(visible bool) { a.Stage.SetVisible(visible) }

func (a *Annotator) resyncStage() {
	for _, ann := range a.Store.All() {
		a.syncToStage(ann)
	}
}

// Undo reverts the last history command.
func (a *Annotator) Undo() error { return a.History.Undo() }

// Redo reapplies the last undone history command.
func (a *Annotator) Redo() error { return a.History.Redo() }

// CanUndo reports whether Undo has anything to revert.
func (a *Annotator) CanUndo() bool { return a.History.CanUndo() }

// CanRedo reports whether Redo has anything to reapply.
func (a *Annotator) CanRedo() bool { return a.History.CanRedo() }

// ClearHistory discards the undo/redo stacks.
func (a *Annotator) ClearHistory() { a.History.Clear() }

// ActivateTool makes the named tool the single active tool.
func (a *Annotator) ActivateTool(id string) { a.Tools.Activate(id) }

// DeactivateTool clears the active tool.
func (a *Annotator) DeactivateTool() { a.Tools.Deactivate() }

// Destroy unsubscribes from the store and viewer and releases wired
// resources. The Annotator must not be used afterward.
func (a *Annotator) Destroy() {
	if a.unsubscribeStore != nil {
		a.unsubscribeStore()
	}
	a.unwireViewerEvents()
	a.Stage.Destroy()
	a.viewer.Destroy()
}
