package lista

import "time"

// EventType indicates what kind of change occurred
type EventType string

const (
	EventCategoryChanged EventType = "category_changed"
	EventItemChanged     EventType = "item_changed"
)

// Event is a change notification published after each committed write.
// Consumers use it as a refresh signal; the record itself is re-fetched.
type Event struct {
	Type       EventType
	CategoryID CategoryID // the category created or deleted, or the parent of a changed item
	ItemID     ItemID     // set for item events
	Timestamp  time.Time  // when the event was published
	SequenceID int64      // monotonically increasing, assigned by the publisher
}

// Publisher delivers change notifications to interested subscribers.
// Publish runs on the writer's goroutine and must not block.
type Publisher interface {
	Publish(Event)
}
