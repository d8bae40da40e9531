package orange4

import "fmt"

// EventKind classifies guest-program events. Beeps are notifications only;
// nothing in the machine synthesizes sound.
type EventKind int

const (
	EventBeepEnd EventKind = iota
	EventBeepError
	EventBeepLong
	EventBeepShort
	EventBeepScale
	EventUnimplemented
)

// Event is emitted by the running program through beep service calls and by
// accepted-but-unimplemented opcodes.
type Event struct {
	Kind  EventKind
	Value uint8  // tone for EventBeepScale
	Name  string // offending mnemonic for EventUnimplemented
}

func (e Event) String() string {
	switch e.Kind {
	case EventBeepEnd:
		return "beep: end"
	case EventBeepError:
		return "beep: error"
	case EventBeepLong:
		return "beep: long"
	case EventBeepShort:
		return "beep: short"
	case EventBeepScale:
		return fmt.Sprintf("beep: scale %X", e.Value)
	case EventUnimplemented:
		return "unimpl: " + e.Name
	}
	return "unknown event"
}

// emit never blocks a tick: events wait in the channel's buffer, and once
// the buffer is full further events are dropped.
func (vm *VM) emit(e Event) {
	select {
	case vm.events <- e:
	default:
	}
}
