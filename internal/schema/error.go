package schema

import (
	"fmt"
	"strings"
)

// Reason classifies why a record was rejected.
type Reason uint8

const (
	ReasonMalformed    Reason = iota + 1 // document is not a JSON array of objects
	ReasonNotObject                      // record or nested value is not an object
	ReasonUnknownTag                     // tag does not name a known variant
	ReasonMissingField                   // required key absent
	ReasonUnknownField                   // key not part of the closed shape
	ReasonWrongType                      // value has the wrong JSON type
	ReasonConstraint                     // value violates a range/enum/literal constraint
	ReasonNotAllowed                     // key or value not allowed for this variant
	ReasonDuplicateID                    // id already used by an earlier record
)

// String returns the string representation of Reason.
func (r Reason) String() string {
	switch r {
	case ReasonMalformed:
		return "malformed"
	case ReasonNotObject:
		return "not-object"
	case ReasonUnknownTag:
		return "unknown-tag"
	case ReasonMissingField:
		return "missing-field"
	case ReasonUnknownField:
		return "unknown-field"
	case ReasonWrongType:
		return "wrong-type"
	case ReasonConstraint:
		return "constraint"
	case ReasonNotAllowed:
		return "not-allowed"
	case ReasonDuplicateID:
		return "duplicate-id"
	default:
		return "unknown"
	}
}

// Error reports the first record of an artifact that failed validation.
// Index is -1 when the document itself could not be read as an array.
type Error struct {
	Artifact string
	Index    int
	Tag      string
	Field    string
	Reason   Reason
	Detail   string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Artifact)
	if e.Index >= 0 {
		fmt.Fprintf(&sb, "[%d]", e.Index)
	}
	if e.Tag != "" {
		fmt.Fprintf(&sb, " (%s)", e.Tag)
	}
	if e.Field != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Field)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason.String())
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

// FieldError is produced by DecodeStrict before the record context is known.
// Callers convert it into an *Error with At.
type FieldError struct {
	Field  string
	Reason Reason
	Detail string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Reason, e.Detail)
}

// At attaches record context to a field error. Errors that are not
// *FieldError are reported as constraint failures on the whole record.
func At(err error, artifact string, index int, tag string) *Error {
	if fe, ok := err.(*FieldError); ok {
		return &Error{
			Artifact: artifact,
			Index:    index,
			Tag:      tag,
			Field:    fe.Field,
			Reason:   fe.Reason,
			Detail:   fe.Detail,
		}
	}
	return &Error{
		Artifact: artifact,
		Index:    index,
		Tag:      tag,
		Reason:   ReasonConstraint,
		Detail:   err.Error(),
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
