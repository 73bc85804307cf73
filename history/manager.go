// Package history implements the undo/redo command stack: Create/Update/
// Delete primitives, Batch grouping, merge-on-execute, and a disable
// switch for programmatic mutations that shouldn't be undoable.
package history

import "go.uber.org/zap"

// DefaultMaxSize is the undo stack cap used when Options.MaxSize is zero.
const DefaultMaxSize = 100

// Status is delivered to observers after every stack change.
type Status struct {
	CanUndo  bool
	CanRedo  bool
	UndoSize int
	RedoSize int
}

// Options configures a Manager.
type Options struct {
	// MaxSize caps the undo stack; zero means DefaultMaxSize.
	MaxSize int
	// EnableMerging turns on Mergeable command collapsing, so bursts of
	// updates to the same id become one undo step. The zero value means
	// merging is OFF; annotator.Options.History.EnableMerging passes this
	// through directly.
	EnableMerging bool
}

// Manager is the command stack driving undo/redo.
type Manager struct {
	opts Options
	log  *zap.SugaredLogger

	undoStack []Command
	redoStack []Command
	disabled  bool

	inBatch     bool
	batchChild  []Command
	batchDesc   string
	observers   []func(Status)
}

// New creates a Manager. A nil logger falls back to zap's no-op logger.
func New(opts Options, logger *zap.SugaredLogger) *Manager {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{opts: opts, log: logger}
}

// Subscribe registers an observer notified with the latest Status after
// every stack change.
func (m *Manager) Subscribe(obs func(Status)) {
	m.observers = append(m.observers, obs)
}

func (m *Manager) notify() {
	status := m.Status()
	for _, obs := range m.observers {
		obs(status)
	}
}

// Status returns the current undo/redo availability.
func (m *Manager) Status() Status {
	return Status{
		CanUndo:  len(m.undoStack) > 0,
		CanRedo:  len(m.redoStack) > 0,
		UndoSize: len(m.undoStack),
		RedoSize: len(m.redoStack),
	}
}

// SetEnabled toggles recording. While disabled, Execute still runs
// commands but never records them onto the undo stack.
func (m *Manager) SetEnabled(enabled bool) { m.disabled = !enabled }

// Enabled reports whether recording is currently on.
func (m *Manager) Enabled() bool { return !m.disabled }

// BeginBatch opens a batch: subsequent Execute calls run immediately but
// are collected into a single Batch command pushed at EndBatch.
func (m *Manager) BeginBatch(description string) {
	m.inBatch = true
	m.batchDesc = description
	m.batchChild = nil
}

// EndBatch closes a batch and pushes the accumulated Batch command. A
// batch with no children is a no-op.
func (m *Manager) EndBatch() {
	m.inBatch = false
	if len(m.batchChild) == 0 {
		return
	}
	batch := NewBatch(m.batchDesc, m.batchChild)
	m.batchChild = nil
	m.push(batch)
}

// Execute runs cmd and records it: (a) if
// disabled, run without recording; (b) if inside a batch, run and append
// to the batch; (c) otherwise attempt to merge into the last undo-stack
// entry; (d) else push as a new undo step, clearing the redo stack.
func (m *Manager) Execute(cmd Command) error {
	if m.disabled {
		return cmd.Execute()
	}
	if m.inBatch {
		if err := cmd.Execute(); err != nil {
			return err
		}
		m.batchChild = append(m.batchChild, cmd)
		return nil
	}
	if m.opts.EnableMerging && len(m.undoStack) > 0 {
		if mergeable, ok := m.undoStack[len(m.undoStack)-1].(Mergeable); ok {
			if merged, ok := mergeable.Merge(cmd); ok {
				if err := merged.Execute(); err != nil {
					return err
				}
				m.undoStack[len(m.undoStack)-1] = merged
				m.log.Debugw("history: merged command into previous undo step")
				m.notify()
				return nil
			}
		}
	}
	if err := cmd.Execute(); err != nil {
		return err
	}
	m.push(cmd)
	return nil
}

func (m *Manager) push(cmd Command) {
	m.undoStack = append(m.undoStack, cmd)
	m.redoStack = nil
	if len(m.undoStack) > m.opts.MaxSize {
		m.undoStack = m.undoStack[len(m.undoStack)-m.opts.MaxSize:]
	}
	m.notify()
}

// Undo pops the most recent undo step, runs its Undo while recording is
// disabled, and pushes it onto the redo stack. No-op if the stack is empty.
func (m *Manager) Undo() error {
	if len(m.undoStack) == 0 {
		return nil
	}
	cmd := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]

	wasDisabled := m.disabled
	m.disabled = true
	err := cmd.Undo()
	m.disabled = wasDisabled
	if err != nil {
		// Put it back; the mutation did not happen as expected.
		m.undoStack = append(m.undoStack, cmd)
		return err
	}
	m.redoStack = append(m.redoStack, cmd)
	m.notify()
	return nil
}

// Redo pops the most recent redo step, re-executes it while recording is
// disabled, and pushes it back onto the undo stack.
func (m *Manager) Redo() error {
	if len(m.redoStack) == 0 {
		return nil
	}
	cmd := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]

	wasDisabled := m.disabled
	m.disabled = true
	err := cmd.Execute()
	m.disabled = wasDisabled
	if err != nil {
		m.redoStack = append(m.redoStack, cmd)
		return err
	}
	m.undoStack = append(m.undoStack, cmd)
	m.notify()
	return nil
}

// Clear empties both stacks without undoing anything.
func (m *Manager) Clear() {
	m.undoStack = nil
	m.redoStack = nil
	m.notify()
}

// CanUndo reports whether Undo would do anything.
func (m *Manager) CanUndo() bool { return len(m.undoStack) > 0 }

// CanRedo reports whether Redo would do anything.
func (m *Manager) CanRedo() bool { return len(m.redoStack) > 0 }
