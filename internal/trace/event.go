package trace

import "fmt"

// Kind represents the shape kind of a trace record (the `ph` field).
type Kind uint8

const (
	// KindBegin opens a duration event.
	KindBegin Kind = iota + 1 // "B"
	// KindEnd closes the innermost open duration event of the same name.
	KindEnd      // "E"
	KindComplete // "X", carries dur
	KindInstant  // "I" or "i"
	KindMetadata // "M"
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindComplete:
		return "complete"
	case KindInstant:
		return "instant"
	case KindMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// ParseKind converts a `ph` value to a Kind.
func ParseKind(ph string) (Kind, error) {
	switch ph {
	case "B":
		return KindBegin, nil
	case "E":
		return KindEnd, nil
	case "X":
		return KindComplete, nil
	case "I", "i":
		return KindInstant, nil
	case "M":
		return KindMetadata, nil
	default:
		return 0, fmt.Errorf("invalid ph: %q (expected: B|E|X|I|i|M)", ph)
	}
}

type kindSet uint8

func kinds(ks ...Kind) kindSet {
	var s kindSet
	for _, k := range ks {
		s |= 1 << k
	}
	return s
}

func (s kindSet) has(k Kind) bool { return s&(1<<k) != 0 }

// Phase is the analyzer phase that emitted an event (the `cat` field).
type Phase uint8

const (
	PhaseParse Phase = iota + 1
	PhaseProgram
	PhaseBind
	PhaseCheck
	PhaseCheckTypes
	PhaseEmit
	PhaseSession
	PhaseMetadata
	PhaseDevtools
)

// String returns the `cat` value of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseProgram:
		return "program"
	case PhaseBind:
		return "bind"
	case PhaseCheck:
		return "check"
	case PhaseCheckTypes:
		return "checkTypes"
	case PhaseEmit:
		return "emit"
	case PhaseSession:
		return "session"
	case PhaseMetadata:
		return "__metadata"
	case PhaseDevtools:
		return "disabled-by-default-devtools.timeline"
	default:
		return "unknown"
	}
}

// Scope is the visibility of an instant event (the `s` field).
type Scope uint8

const (
	ScopeNone    Scope = iota // not provided
	ScopeThread               // "t"
	ScopeProcess              // "p"
	ScopeGlobal               // "g"
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeThread:
		return "thread"
	case ScopeProcess:
		return "process"
	case ScopeGlobal:
		return "global"
	default:
		return "none"
	}
}

func parseScope(s string) Scope {
	switch s {
	case "t":
		return ScopeThread
	case "p":
		return ScopeProcess
	case "g":
		return ScopeGlobal
	default:
		return ScopeNone
	}
}

// Event is one validated trace record.
type Event struct {
	Index   int // position in the trace array
	Variant Variant
	Kind    Kind
	Phase   Phase
	Scope   Scope
	PID     int
	TID     int
	TS      int64 // microseconds
	Dur     int64 // microseconds, KindComplete only
	Args    Args  // nil when the record carried no args
}

// Name returns the tag of the event.
func (e *Event) Name() string {
	return e.Variant.String()
}

// End returns the end timestamp of a complete event, or TS otherwise.
func (e *Event) End() int64 {
	return e.TS + e.Dur
}
