package protocol

import "fmt"

// Event verbs sent coordinator -> client.
const (
	VerbStop      = "stop"
	VerbStart     = "start"
	VerbFinish    = "finish"
	VerbTerminate = "terminate"
	VerbSetID     = "set_id"
)

// EventKind tags one decoded inbound event.
type EventKind int

const (
	EventStop EventKind = iota + 1
	EventStart
	EventFinish
	EventTerminate
	EventSetID
)

func (k EventKind) String() string {
	switch k {
	case EventStop:
		return VerbStop
	case EventStart:
		return VerbStart
	case EventFinish:
		return VerbFinish
	case EventTerminate:
		return VerbTerminate
	case EventSetID:
		return VerbSetID
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Event is the tagged decode result for one inbound message. Which fields
// are populated depends on Kind:
//
//	stop       Name
//	start      Name, Value, EventNumber, NodeIDs
//	finish     Name, EventNumber
//	terminate  Name
//	set_id     Name, ID
//
// Value is an opaque integer carried by the coordinator on start events; no
// semantics are assigned to it here.
type Event struct {
	Kind        EventKind
	Name        string
	Value       int
	EventNumber int
	ID          int
	NodeIDs     []int
}

// ParseEvent interprets one decoded message as a coordinator event. NodeIDs
// for start events are appended into nodeIDs, which may be a reused scratch
// slice; the result aliases it and is only valid until the next reuse.
// A well-formed message with an unrecognized verb, wrong arity, or a
// non-integer token is a protocol violation.
func ParseEvent(msg Message, nodeIDs []int) (Event, error) {
	switch msg.Verb {
	case VerbStop:
		if len(msg.Args) != 1 {
			return Event{}, arityErr(msg, 1)
		}
		return Event{Kind: EventStop, Name: msg.Args[0]}, nil

	case VerbStart:
		// Fixed header of name, opaque value, event number; node ids
		// fill the remainder. Zero node ids is valid.
		if len(msg.Args) < 3 {
			return Event{}, fmt.Errorf("%w: %s wants at least 3 arguments, got %d",
				ErrProtocolViolation, msg.Verb, len(msg.Args))
		}
		value, err := ParseInt(msg.Args[1])
		if err != nil {
			return Event{}, err
		}
		eventNr, err := ParseInt(msg.Args[2])
		if err != nil {
			return Event{}, err
		}
		ids := nodeIDs[:0]
		if ids == nil {
			ids = make([]int, 0, len(msg.Args)-3)
		}
		for _, tok := range msg.Args[3:] {
			id, err := ParseInt(tok)
			if err != nil {
				return Event{}, err
			}
			ids = append(ids, id)
		}
		return Event{
			Kind:        EventStart,
			Name:        msg.Args[0],
			Value:       value,
			EventNumber: eventNr,
			NodeIDs:     ids,
		}, nil

	case VerbFinish:
		if len(msg.Args) != 2 {
			return Event{}, arityErr(msg, 2)
		}
		eventNr, err := ParseInt(msg.Args[1])
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: EventFinish, Name: msg.Args[0], EventNumber: eventNr}, nil

	case VerbTerminate:
		if len(msg.Args) != 1 {
			return Event{}, arityErr(msg, 1)
		}
		return Event{Kind: EventTerminate, Name: msg.Args[0]}, nil

	case VerbSetID:
		if len(msg.Args) != 2 {
			return Event{}, arityErr(msg, 2)
		}
		id, err := ParseInt(msg.Args[1])
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: EventSetID, Name: msg.Args[0], ID: id}, nil

	default:
		return Event{}, fmt.Errorf("%w: unknown verb %q", ErrProtocolViolation, msg.Verb)
	}
}

func arityErr(msg Message, want int) error {
	return fmt.Errorf("%w: %s wants %d arguments, got %d",
		ErrProtocolViolation, msg.Verb, want, len(msg.Args))
}
