// Package trace validates and models the analyzer's event trace.
//
// A trace is a JSON array of records in the Chrome trace-event layout
// (`pid`, `tid`, `ph`, `cat`, `ts`, `name`, optional `dur`, `s`, `args`).
// The `name` field is the tag: it selects exactly one Variant from a closed
// catalog, and the variant fixes the allowed shape kinds, the category and
// the payload type stored in Event.Args.
//
// # Shape kinds
//
//   - KindBegin / KindEnd: duration events paired by nesting order per thread
//   - KindComplete: a single record carrying `dur`
//   - KindInstant: a point-in-time fact, optionally scoped (`s`)
//   - KindMetadata: process/thread naming records
//
// # Validation
//
// Decode is all-or-nothing. The first record that fails produces a
// *schema.Error naming the record index, its tag and the offending field;
// no events are returned in that case.
//
//	events, err := trace.Decode(data)
//	var se *schema.Error
//	if errors.As(err, &se) {
//		fmt.Println(se.Index, se.Tag, se.Field)
//	}
package trace
