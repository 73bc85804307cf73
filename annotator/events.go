package annotator

import "log"

// EventName identifies one of the Annotator's public events:
// createAnnotation, updateAnnotation, deleteAnnotation, selectionChanged,
// plus the two context-menu streams the UI layer listens on.
type EventName string

const (
	EventCreateAnnotation EventName = "createAnnotation"
	EventUpdateAnnotation EventName = "updateAnnotation"
	EventDeleteAnnotation EventName = "deleteAnnotation"
	EventSelectionChanged EventName = "selectionChanged"
	// EventAnnotationMenu fires on a right-click that hits an annotation;
	// the payload is a ContextMenuEvent with the hit filled in.
	EventAnnotationMenu EventName = "annotationMenu"
	// EventViewerMenu fires on a right-click over empty canvas.
	EventViewerMenu EventName = "viewerMenu"
)

// Handler receives whatever payload the named event carries (an
// Annotation for the create/update/delete events, a []string of selected
// ids for selectionChanged).
type Handler func(payload any)

// Subscription identifies one On() registration, returned so the caller
// can later Off() that exact listener.
type Subscription uint64

type subscriberEntry struct {
	id Subscription
	fn Handler
}

// emitter is a small named-event pub/sub, generalizing the Subscribe/
// Unsubscribe idiom store.Store and history.Manager already use in this
// module to a string-keyed event name (the public facade needs several
// distinct event streams sharing one on/off/emit surface, not one).
type emitter struct {
	handlers map[EventName][]subscriberEntry
	nextID   Subscription
}

func newEmitter() *emitter {
	return &emitter{handlers: make(map[EventName][]subscriberEntry)}
}

// On registers fn for event and returns a Subscription identifying it
// for a later Off.
func (e *emitter) On(event EventName, fn Handler) Subscription {
	e.nextID++
	e.handlers[event] = append(e.handlers[event], subscriberEntry{id: e.nextID, fn: fn})
	return e.nextID
}

// Off removes the listener identified by sub from event, if present.
func (e *emitter) Off(event EventName, sub Subscription) {
	entries := e.handlers[event]
	for i, entry := range entries {
		if entry.id == sub {
			e.handlers[event] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// emit invokes every handler registered for event, recovering and logging
// any panic so one misbehaving listener never blocks its siblings or the
// mutation that triggered it.
func (e *emitter) emit(event EventName, payload any) {
	for _, entry := range e.handlers[event] {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("annotator: event handler for %s panicked: %v", event, r)
				}
			}()
			entry.fn(payload)
		}()
	}
}
