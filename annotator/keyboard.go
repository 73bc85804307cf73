package annotator

import (
	"github.com/annota/core/history"
	"github.com/annota/core/tool"
)

// HandleKey processes one named key press (e.g. "Delete", "Escape", "z",
// "a") with the given modifiers, implementing the global
// shortcuts: Delete/Backspace deletes every selected annotation in one
// batch undo step, Ctrl/Cmd-Z undoes, Ctrl/Cmd-Shift-Z redoes, Ctrl/Cmd-A
// selects all, Escape clears selection. The active tool gets first look
// (so Escape can cancel an in-progress draw before this falls through to
// clearing selection).
func (a *Annotator) HandleKey(key string, mods tool.KeyModifiers) {
	if a.Tools.Active() != "" && a.Tools.Key(key) {
		return
	}

	cmdHeld := mods.Has(tool.ModCtrl) || mods.Has(tool.ModMeta)

	switch {
	case (key == "Delete" || key == "Backspace") && len(a.selection.ids) > 0:
		a.deleteSelected()
	case cmdHeld && mods.Has(tool.ModShift) && key == "Z":
		a.Redo()
	case cmdHeld && (key == "z" || key == "Z"):
		a.Undo()
	case cmdHeld && (key == "a" || key == "A"):
		a.SelectAll()
	case key == "Escape":
		a.ClearSelection()
	}
}

// deleteSelected removes every selected annotation as a single batch
// undo step
func (a *Annotator) deleteSelected() {
	ids := a.GetSelected()
	if len(ids) == 0 {
		return
	}
	a.History.BeginBatch("delete selection")
	for _, id := range ids {
		ann, ok := a.Store.Get(id)
		if !ok {
			continue
		}
		a.History.Execute(history.NewDelete(a.Store, ann))
	}
	a.History.EndBatch()
	a.ClearSelection()
}
