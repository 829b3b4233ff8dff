package classifier

// Event represents a worker lifecycle or per-request event.
// Minimal and stable: name + worker/request IDs and optional fields.
type Event struct {
	Name      string
	Worker    int
	RequestID string
	Fields    map[string]any
}

// EventPublisher receives events from workers. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
