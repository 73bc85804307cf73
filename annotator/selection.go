package annotator

// selectionState is an ordered list of selected annotation ids. The
// editor overlay only ever shows handles for a single annotation, so
// multi-selection drives only bulk operations (delete) and the
// selectionChanged event; the overlay always tracks the most recently
// selected id.
type selectionState struct {
	a   *Annotator
	ids []string
}

func newSelectionState(a *Annotator) *selectionState {
	return &selectionState{a: a}
}

func (s *selectionState) contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

func (s *selectionState) set(ids []string) {
	s.ids = append([]string(nil), ids...)
	if len(s.ids) > 0 {
		s.a.Overlay.SetSelected(s.ids[len(s.ids)-1])
	} else {
		s.a.Overlay.SetSelected("")
	}
	s.a.Stage.SetSelected(s.ids)
	s.a.events.emit(EventSelectionChanged, append([]string(nil), s.ids...))
}

// SetSelection replaces the selection with a single id.
func (a *Annotator) SetSelection(id string) { a.selection.set([]string{id}) }

// SetSelected replaces the selection with the given ids, in order.
func (a *Annotator) SetSelected(ids []string) { a.selection.set(ids) }

// ToggleSelection adds id to the selection if absent (modifier-click),
// or removes it if present.
func (a *Annotator) ToggleSelection(id string) {
	if a.selection.contains(id) {
		next := make([]string, 0, len(a.selection.ids))
		for _, existing := range a.selection.ids {
			if existing != id {
				next = append(next, existing)
			}
		}
		a.selection.set(next)
		return
	}
	a.selection.set(append(append([]string(nil), a.selection.ids...), id))
}

// ClearSelection empties the selection.
func (a *Annotator) ClearSelection() { a.selection.set(nil) }

// SelectAll selects every live annotation.
func (a *Annotator) SelectAll() {
	anns := a.Store.All()
	ids := make([]string, len(anns))
	for i, ann := range anns {
		ids[i] = ann.ID
	}
	a.selection.set(ids)
}

// GetSelected returns the current selection's ids, in selection order.
func (a *Annotator) GetSelected() []string {
	return append([]string(nil), a.selection.ids...)
}
