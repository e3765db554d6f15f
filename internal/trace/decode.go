package trace

import (
	"encoding/json"
	"fmt"

	"fortio.org/safecast"

	"tracelens/internal/schema"
)

// ArtifactName labels schema errors raised while decoding a trace.
const ArtifactName = "trace"

// envelope holds the fields shared by every record.
type envelope struct {
	PID  int64           `json:"pid" validate:"gt=0"`
	TID  int64           `json:"tid" validate:"gt=0"`
	Ph   string          `json:"ph" validate:"oneof=B E X I i M"`
	Cat  string          `json:"cat,omitempty"`
	TS   int64           `json:"ts" validate:"gt=0"`
	Name string          `json:"name" validate:"required"`
	Dur  *int64          `json:"dur,omitempty" validate:"gte=0"`
	S    string          `json:"s,omitempty" validate:"oneof=t p g"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Decode validates a trace.json document and returns its events in trace
// order. The first invalid record aborts the whole load.
func Decode(data []byte) ([]Event, error) {
	items, err := schema.ReadArray(data)
	if err != nil {
		return nil, schema.At(err, ArtifactName, -1, "")
	}
	events := make([]Event, len(items))
	for i, raw := range items {
		if err := decodeRecord(raw, i, &events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// DecodeRecord validates a single record; index is used for error context.
func DecodeRecord(raw json.RawMessage, index int) (Event, error) {
	var ev Event
	if err := decodeRecord(raw, index, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func decodeRecord(raw json.RawMessage, index int, ev *Event) *schema.Error {
	obj, err := schema.ReadObject(raw, "")
	if err != nil {
		return schema.At(err, ArtifactName, index, "")
	}

	// dispatch on the tag before looking at anything else
	rawName, ok := obj["name"]
	if !ok {
		return fail(index, "", "name", schema.ReasonMissingField, "required key is absent")
	}
	var tag string
	if err := json.Unmarshal(rawName, &tag); err != nil {
		return fail(index, "", "name", schema.ReasonWrongType, "expected string")
	}
	variant, ok := LookupVariant(tag)
	if !ok {
		return fail(index, tag, "name", schema.ReasonUnknownTag, fmt.Sprintf("no event variant is named %q", tag))
	}
	info := &catalog[variant]

	var env envelope
	if err := schema.DecodeObject(obj, &env, ""); err != nil {
		return schema.At(err, ArtifactName, index, tag)
	}

	kind, err := ParseKind(env.Ph)
	if err != nil {
		return fail(index, tag, "ph", schema.ReasonConstraint, err.Error())
	}
	if !info.kinds.has(kind) {
		return fail(index, tag, "ph", schema.ReasonNotAllowed, fmt.Sprintf("%s events cannot be %s", tag, kind))
	}

	_, hasCat := obj["cat"]
	switch {
	case !hasCat && info.phase != PhaseMetadata:
		return fail(index, tag, "cat", schema.ReasonMissingField, "required key is absent")
	case hasCat && env.Cat != info.phase.String():
		return fail(index, tag, "cat", schema.ReasonConstraint, fmt.Sprintf("expected %q, got %q", info.phase.String(), env.Cat))
	}

	switch {
	case kind == KindComplete && env.Dur == nil:
		return fail(index, tag, "dur", schema.ReasonMissingField, "complete events carry a duration")
	case kind != KindComplete && env.Dur != nil:
		return fail(index, tag, "dur", schema.ReasonNotAllowed, "only complete events carry a duration")
	}
	if env.S != "" && kind != KindInstant {
		return fail(index, tag, "s", schema.ReasonNotAllowed, "only instant events carry a scope")
	}

	pid, err := safecast.Conv[int](env.PID)
	if err != nil {
		return fail(index, tag, "pid", schema.ReasonConstraint, err.Error())
	}
	tid, err := safecast.Conv[int](env.TID)
	if err != nil {
		return fail(index, tag, "tid", schema.ReasonConstraint, err.Error())
	}

	*ev = Event{
		Index:   index,
		Variant: variant,
		Kind:    kind,
		Phase:   info.phase,
		Scope:   parseScope(env.S),
		PID:     pid,
		TID:     tid,
		TS:      env.TS,
	}
	if env.Dur != nil {
		ev.Dur = *env.Dur
	}

	if _, hasArgs := obj["args"]; !hasArgs {
		if kind == KindEnd || info.optional {
			return nil
		}
		return fail(index, tag, "args", schema.ReasonMissingField, "required key is absent")
	}
	args := info.newArgs()
	if err := schema.DecodeStrict(env.Args, args, "args"); err != nil {
		return schema.At(err, ArtifactName, index, tag)
	}
	ev.Args = args
	return nil
}

func fail(index int, tag, field string, reason schema.Reason, detail string) *schema.Error {
	return &schema.Error{
		Artifact: ArtifactName,
		Index:    index,
		Tag:      tag,
		Field:    field,
		Reason:   reason,
		Detail:   detail,
	}
}
