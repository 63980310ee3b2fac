package sim

type EventType int

const (
	EventLaneChangeStarted EventType = iota
	EventLaneChangeDone
	EventAgentSpawned
	EventAgentEvicted
	EventAgentDespawned
	EventReset
)

type Event struct {
	Type     EventType
	Position float64 // longitudinal
	Lane     int
	Dir      Direction
}

type EventHandler func(Event)

// EventBus is a synchronous fan-out; handlers run inside the tick.
type EventBus struct {
	handlers map[EventType][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) {
	eb.handlers[t] = append(eb.handlers[t], fn)
}

func (eb *EventBus) Emit(e Event) {
	if eb == nil {
		return
	}
	for _, fn := range eb.handlers[e.Type] {
		fn(e)
	}
}
