package trace

import "sort"

// Span is a closed interval of analyzer work: either a begin/end pair or a
// single complete event.
type Span struct {
	Variant Variant
	PID     int
	TID     int
	Start   int64 // microseconds
	Dur     int64 // microseconds
	Depth   int   // nesting depth within the thread at Start
	Args    Args  // payload of the begin (or complete) record
	Begin   int   // trace index of the opening record
}

// End returns the end timestamp of the span.
func (s Span) End() int64 { return s.Start + s.Dur }

// PairStats counts records that could not be paired.
type PairStats struct {
	Unmatched    int // end records without an open begin of the same name
	Unterminated int // begin records never closed
}

type threadKey struct{ pid, tid int }

type openSpan struct {
	ev    *Event
	depth int
}

// Pair correlates begin/end records by nesting order within each thread and
// turns complete records into spans directly. Spans are returned sorted by
// start time, ties broken by trace order.
func Pair(events []Event) ([]Span, PairStats) {
	var (
		stats  PairStats
		spans  = make([]Span, 0, len(events)/2)
		stacks = make(map[threadKey][]openSpan)
	)
	for i := range events {
		ev := &events[i]
		key := threadKey{ev.PID, ev.TID}
		switch ev.Kind {
		case KindBegin:
			stack := stacks[key]
			stacks[key] = append(stack, openSpan{ev: ev, depth: len(stack)})
		case KindEnd:
			stack := stacks[key]
			at := -1
			for j := len(stack) - 1; j >= 0; j-- {
				if stack[j].ev.Variant == ev.Variant {
					at = j
					break
				}
			}
			if at < 0 {
				stats.Unmatched++
				continue
			}
			// everything opened above the match was never closed
			stats.Unterminated += len(stack) - 1 - at
			open := stack[at]
			spans = append(spans, Span{
				Variant: open.ev.Variant,
				PID:     open.ev.PID,
				TID:     open.ev.TID,
				Start:   open.ev.TS,
				Dur:     max(ev.TS-open.ev.TS, 0),
				Depth:   open.depth,
				Args:    open.ev.Args,
				Begin:   open.ev.Index,
			})
			stacks[key] = stack[:at]
		case KindComplete:
			spans = append(spans, Span{
				Variant: ev.Variant,
				PID:     ev.PID,
				TID:     ev.TID,
				Start:   ev.TS,
				Dur:     ev.Dur,
				Depth:   len(stacks[key]),
				Args:    ev.Args,
				Begin:   ev.Index,
			})
		}
	}
	for _, stack := range stacks {
		stats.Unterminated += len(stack)
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].Begin < spans[j].Begin
	})
	return spans, stats
}
