package history

import "github.com/annota/core/store"

// Command is a reversible mutation, the undo/redo unit.
type Command interface {
	Execute() error
	Undo() error
}

// Mergeable commands can absorb a subsequent command of the same kind,
// collapsing bursts of edits (e.g. vertex drags) into one undo step.
// Merge returns the replacement command and true on success.
type Mergeable interface {
	Merge(next Command) (Command, bool)
}

// Create records the creation of ann and, on undo, removes it.
type Create struct {
	st  *store.Store
	ann store.Annotation
}

// NewCreate builds a Create command for ann. ann.ID should already be set
// (callers typically reserve the id before building the command so undo
// and redo are deterministic).
func NewCreate(st *store.Store, ann store.Annotation) *Create {
	return &Create{st: st, ann: ann}
}

func (c *Create) Execute() error {
	added, err := c.st.Add(c.ann)
	if err != nil {
		return err
	}
	c.ann = added
	return nil
}

func (c *Create) Undo() error {
	_, err := c.st.Delete(c.ann.ID)
	return err
}

// Update records a single-id mutation from old to new, and merges with a
// subsequent Update to the same id so a burst of drags becomes one step.
type Update struct {
	st       *store.Store
	id       string
	old, new store.Annotation
}

// NewUpdate builds an Update command against id.
func NewUpdate(st *store.Store, id string, old, new store.Annotation) *Update {
	return &Update{st: st, id: id, old: old, new: new}
}

func (u *Update) Execute() error {
	applied, err := u.st.Update(u.id, u.new)
	if err != nil {
		return err
	}
	u.new = applied
	return nil
}

func (u *Update) Undo() error {
	_, err := u.st.Update(u.id, u.old)
	return err
}

// Merge implements Mergeable: consecutive updates to the same id collapse
// into one command spanning the original old and the latest new.
func (u *Update) Merge(next Command) (Command, bool) {
	other, ok := next.(*Update)
	if !ok || other.id != u.id {
		return nil, false
	}
	return &Update{st: u.st, id: u.id, old: u.old, new: other.new}, true
}

// Delete records the removal of ann and, on undo, re-adds it with its
// original id.
type Delete struct {
	st  *store.Store
	ann store.Annotation
}

// NewDelete builds a Delete command. ann should be the annotation's
// current stored value (captured before deletion).
func NewDelete(st *store.Store, ann store.Annotation) *Delete {
	return &Delete{st: st, ann: ann}
}

func (d *Delete) Execute() error {
	removed, err := d.st.Delete(d.ann.ID)
	if err != nil {
		return err
	}
	d.ann = removed
	return nil
}

func (d *Delete) Undo() error {
	_, err := d.st.Add(d.ann)
	return err
}

// Batch groups child commands into one undo/redo unit. Its Undo replays
// children in reverse order.
type Batch struct {
	Description string
	children    []Command
}

// NewBatch wraps already-executed children into one undo/redo unit.
func NewBatch(description string, children []Command) *Batch {
	return &Batch{Description: description, children: append([]Command(nil), children...)}
}

// Execute runs every child in order. Used only when a Batch is replayed
// via Manager.Redo; children have already run once when first recorded.
func (b *Batch) Execute() error {
	for _, c := range b.children {
		if err := c.Execute(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Batch) Undo() error {
	for i := len(b.children) - 1; i >= 0; i-- {
		if err := b.children[i].Undo(); err != nil {
			return err
		}
	}
	return nil
}
