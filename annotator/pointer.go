package annotator

import (
	"github.com/annota/core/editor"
	"github.com/annota/core/store"
	"github.com/annota/core/tool"
)

// handleHitTolerance is how close (in image pixels) a press must land to
// an editor handle to grab it, rather than falling through to tool
// dispatch or selection hit-testing.
const handleHitTolerance = 10.0

// selectionHitTolerance is the image-pixel tolerance passed to
// store.GetAt for selection clicks, hover and context-menu hit-tests.
const selectionHitTolerance = 4.0

// wireViewerEvents attaches this Annotator's pointer handlers to the
// viewer's canvas-press/canvas-release events, feeding the
// "capture -> edit -> release" and "hit-test -> select/toggle/clear"
// flows. canvas-press/release payloads are tool.Event values in image
// coordinates: the viewer converts screen/device coordinates to image
// space before handing events to the core.
func (a *Annotator) wireViewerEvents() {
	a.onPress = func(data any) {
		if ev, ok := data.(tool.Event); ok {
			a.handlePress(ev)
		}
	}
	a.onRelease = func(data any) {
		if ev, ok := data.(tool.Event); ok {
			a.handleRelease(ev)
		}
	}
	a.viewer.AddHandler(EventCanvasPress, a.onPress)
	a.viewer.AddHandler(EventCanvasRelease, a.onRelease)
}

func (a *Annotator) unwireViewerEvents() {
	if a.onPress != nil {
		a.viewer.RemoveHandler(EventCanvasPress, a.onPress)
	}
	if a.onRelease != nil {
		a.viewer.RemoveHandler(EventCanvasRelease, a.onRelease)
	}
}

// HandlePointerPress processes a pointer-down event in image coordinates.
// The Viewer's canvas-press event (if it fires one) is wired to this
// automatically by New; a host integration with its own lower-level
// pointer source may call this directly instead.
func (a *Annotator) HandlePointerPress(ev tool.Event) { a.handlePress(ev) }

// HandlePointerMove processes a pointer-move event, routing to an
// in-progress handle drag, the active tool's drag handler while a button
// is held, or its hover handler otherwise. Exposed directly since
// the Viewer event list has no canvas-move analogue; the host
// application feeds this from whatever native mouse-move source it has.
func (a *Annotator) HandlePointerMove(ev tool.Event) { a.handleMove(ev) }

// HandlePointerRelease processes a pointer-up event in image coordinates.
func (a *Annotator) HandlePointerRelease(ev tool.Event) { a.handleRelease(ev) }

func (a *Annotator) handlePress(ev tool.Event) {
	a.mouseDown = true
	a.pressX, a.pressY = ev.ScreenX, ev.ScreenY

	if handle, ok := a.hitHandle(ev); ok {
		a.draggingHandle = true
		a.Overlay.BeginDrag(handle.ID, ev.ImageX, ev.ImageY)
		a.viewer.SetMouseNavEnabled(false)
		return
	}

	if a.Tools.Active() != "" {
		if a.Tools.Press(ev) {
			a.viewer.SetMouseNavEnabled(false)
		}
		return
	}

	// No active drawing tool and no handle hit: this press is the start
	// of a potential selection click, resolved on release by
	// resolveSelectionClick's own hit-test.
}

func (a *Annotator) handleMove(ev tool.Event) {
	if a.draggingHandle {
		a.Overlay.UpdateDrag(ev.ImageX, ev.ImageY)
		return
	}
	if a.mouseDown && a.Tools.Active() != "" {
		a.Tools.Drag(ev)
		return
	}
	if a.Tools.Active() != "" {
		a.Tools.Move(ev)
		return
	}
	if a.mouseDown {
		return
	}
	a.updateHover(ev)
}

// updateHover hit-tests the cursor and retints at most one annotation as
// hovered. Runs only while no tool is active and no button is held, so
// drawing gestures never fight the hover highlight.
func (a *Annotator) updateHover(ev tool.Event) {
	if ann, ok := a.Store.GetAt(ev.ImageX, ev.ImageY, selectionHitTolerance, nil); ok {
		a.Stage.SetHovered(ann.ID)
	} else {
		a.Stage.SetHovered("")
	}
}

func (a *Annotator) handleRelease(ev tool.Event) {
	a.mouseDown = false

	if a.draggingHandle {
		a.draggingHandle = false
		a.Overlay.EndDrag()
		a.viewer.SetMouseNavEnabled(true)
		return
	}

	if a.Tools.Active() != "" {
		a.Tools.Release(ev)
		return
	}

	if !tool.ExceedsDeadZone(a.pressX, a.pressY, ev.ScreenX, ev.ScreenY) {
		a.resolveSelectionClick(ev)
	}
}

// resolveSelectionClick implements the click-resolution rule:
// single-select the hit, toggle membership with a modifier held, or
// clear selection on a miss.
func (a *Annotator) resolveSelectionClick(ev tool.Event) {
	ann, ok := a.Store.GetAt(ev.ImageX, ev.ImageY, selectionHitTolerance, nil)
	if !ok {
		a.ClearSelection()
		return
	}
	if ev.Modifiers.Has(tool.ModShift) || ev.Modifiers.Has(tool.ModCtrl) {
		a.ToggleSelection(ann.ID)
		return
	}
	a.SetSelection(ann.ID)
}

// ContextMenuEvent is the payload for the annotationMenu and viewerMenu
// events: where the right-click landed, and (for annotationMenu) which
// annotation it hit.
type ContextMenuEvent struct {
	ImageX, ImageY   float64
	ScreenX, ScreenY float64
	Annotation       *store.Annotation
}

// HandleContextMenu resolves a right-click the same way a selection
// click resolves: a hit dispatches annotationMenu with the annotation, a
// miss dispatches viewerMenu. The UI layer decides what menu to show.
func (a *Annotator) HandleContextMenu(ev tool.Event) {
	menu := ContextMenuEvent{ImageX: ev.ImageX, ImageY: ev.ImageY, ScreenX: ev.ScreenX, ScreenY: ev.ScreenY}
	if ann, ok := a.Store.GetAt(ev.ImageX, ev.ImageY, selectionHitTolerance, nil); ok {
		menu.Annotation = &ann
		a.events.emit(EventAnnotationMenu, menu)
		return
	}
	a.events.emit(EventViewerMenu, menu)
}

// hitHandle returns the selected annotation's handle (if any) within
// handleHitTolerance image pixels of ev, for drag capture.
func (a *Annotator) hitHandle(ev tool.Event) (editor.Handle, bool) {
	for _, h := range a.Overlay.Handles() {
		dx := h.X - ev.ImageX
		dy := h.Y - ev.ImageY
		if dx*dx+dy*dy <= handleHitTolerance*handleHitTolerance {
			return h, true
		}
	}
	return editor.Handle{}, false
}
