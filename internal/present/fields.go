package present

import (
	"fmt"
	"reflect"
	"strings"

	"tracelens/internal/types"
)

// FieldKind is how the presenter treats one field of a ResolvedType.
type FieldKind uint8

const (
	FieldIgnore   FieldKind = iota // bookkeeping, or already reflected in the display string
	FieldDisplay                   // printed as a label
	FieldLocation                  // printed as path:line:col
	FieldSingle                    // one type reference, walked
	FieldList                      // ordered type references, walked
)

func (k FieldKind) String() string {
	switch k {
	case FieldIgnore:
		return "ignore"
	case FieldDisplay:
		return "display"
	case FieldLocation:
		return "location"
	case FieldSingle:
		return "single"
	case FieldList:
		return "list"
	}
	return fmt.Sprintf("FieldKind(%d)", k)
}

// Field is a classified ResolvedType field.
type Field struct {
	Name     string // json key
	Kind     FieldKind
	Relation types.RelationKind // for FieldSingle and FieldList
}

// fieldTable classifies every field of ResolvedType at package init, so a
// field added to the model without a classification stops the program
// before any type is presented.
var fieldTable = func() []Field {
	rt := reflect.TypeOf(types.ResolvedType{})
	out := make([]Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		name, _, _ := strings.Cut(rt.Field(i).Tag.Get("json"), ",")
		kind, rel := classify(name)
		out = append(out, Field{Name: name, Kind: kind, Relation: rel})
	}
	return out
}()

// Fields returns the classification of every ResolvedType field in
// declaration order.
func Fields() []Field {
	return append([]Field(nil), fieldTable...)
}

func classify(name string) (FieldKind, types.RelationKind) {
	switch name {
	case "id", "recursionId", "isTuple":
		return FieldIgnore, 0
	case "flags", "display", "symbolName", "intrinsicName":
		return FieldDisplay, 0
	case "firstDeclaration", "destructuringPattern", "referenceLocation":
		return FieldLocation, 0
	}
	if rel, err := types.ParseRelationKind(name); err == nil {
		if rel.IsList() {
			return FieldList, rel
		}
		return FieldSingle, rel
	}
	panic(fmt.Sprintf("present: field %q of ResolvedType has no classification", name))
}

func displayValue(t *types.ResolvedType, name string) string {
	switch name {
	case "flags":
		return strings.Join(t.Flags, "|")
	case "display":
		return t.Display
	case "symbolName":
		return t.SymbolName
	case "intrinsicName":
		return t.IntrinsicName
	}
	panic(fmt.Sprintf("present: %q is not a display field", name))
}

func locationValue(t *types.ResolvedType, name string) *types.Location {
	switch name {
	case "firstDeclaration":
		return t.FirstDeclaration
	case "destructuringPattern":
		return t.DestructuringPattern
	case "referenceLocation":
		return t.ReferenceLocation
	}
	panic(fmt.Sprintf("present: %q is not a location field", name))
}
