package types

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// TypeID identifies a type within one analysis run.
type TypeID int32

const (
	// NoTypeID marks an absent reference.
	NoTypeID TypeID = 0
	// SentinelTypeID is the analyzer's placeholder identifier.
	SentinelTypeID TypeID = -1
)

// Valid reports whether id is a positive identifier or the sentinel.
func (id TypeID) Valid() bool {
	return id > 0 || id == SentinelTypeID
}

// UnmarshalJSON accepts only JSON integers that fit into an int32.
func (id *TypeID) UnmarshalJSON(b []byte) error {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("expected integer type id, got %s", b)
	}
	v, err := safecast.Conv[int32](n)
	if err != nil {
		return fmt.Errorf("type id %d overflows: %w", n, err)
	}
	*id = TypeID(v)
	return nil
}

// Position is a 1-based line/character pair.
type Position struct {
	Line      int `json:"line" validate:"gt=0"`
	Character int `json:"character" validate:"gt=0"`
}

// Location points into a source file.
type Location struct {
	Path  string    `json:"path" validate:"required"`
	Start Position  `json:"start"`
	End   *Position `json:"end,omitempty"`
}

func (l Location) String() string {
	if l.End == nil {
		return fmt.Sprintf("%s:%d:%d", l.Path, l.Start.Line, l.Start.Character)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", l.Path, l.Start.Line, l.Start.Character, l.End.Line, l.End.Character)
}

// ResolvedType is one record of the type catalog. Scalar relations use
// NoTypeID for "absent"; list relations use nil.
type ResolvedType struct {
	ID    TypeID   `json:"id" validate:"typeid"`
	Flags []string `json:"flags" validate:"dive,typeflag"`

	Display       string `json:"display,omitempty"`
	SymbolName    string `json:"symbolName,omitempty"`
	IntrinsicName string `json:"intrinsicName,omitempty"`
	RecursionID   *int   `json:"recursionId,omitempty" validate:"gte=0"`
	IsTuple       bool   `json:"isTuple,omitempty" validate:"eq=true"`

	FirstDeclaration     *Location `json:"firstDeclaration,omitempty"`
	DestructuringPattern *Location `json:"destructuringPattern,omitempty"`
	ReferenceLocation    *Location `json:"referenceLocation,omitempty"`

	UnionTypes         []TypeID `json:"unionTypes,omitempty" validate:"dive,typeid"`
	IntersectionTypes  []TypeID `json:"intersectionTypes,omitempty" validate:"dive,typeid"`
	TypeArguments      []TypeID `json:"typeArguments,omitempty" validate:"dive,typeid"`
	AliasTypeArguments []TypeID `json:"aliasTypeArguments,omitempty" validate:"dive,typeid"`

	InstantiatedType            TypeID `json:"instantiatedType,omitempty" validate:"typeid"`
	KeyofType                   TypeID `json:"keyofType,omitempty" validate:"typeid"`
	IndexedAccessObjectType     TypeID `json:"indexedAccessObjectType,omitempty" validate:"typeid"`
	IndexedAccessIndexType      TypeID `json:"indexedAccessIndexType,omitempty" validate:"typeid"`
	ConditionalCheckType        TypeID `json:"conditionalCheckType,omitempty" validate:"typeid"`
	ConditionalExtendsType      TypeID `json:"conditionalExtendsType,omitempty" validate:"typeid"`
	ConditionalTrueType         TypeID `json:"conditionalTrueType,omitempty" validate:"typeid"`
	ConditionalFalseType        TypeID `json:"conditionalFalseType,omitempty" validate:"typeid"`
	SubstitutionBaseType        TypeID `json:"substitutionBaseType,omitempty" validate:"typeid"`
	ConstraintType              TypeID `json:"constraintType,omitempty" validate:"typeid"`
	ReverseMappedSourceType     TypeID `json:"reverseMappedSourceType,omitempty" validate:"typeid"`
	ReverseMappedMappedType     TypeID `json:"reverseMappedMappedType,omitempty" validate:"typeid"`
	ReverseMappedConstraintType TypeID `json:"reverseMappedConstraintType,omitempty" validate:"typeid"`
	EvolvingArrayElementType    TypeID `json:"evolvingArrayElementType,omitempty" validate:"typeid"`
	EvolvingArrayFinalType      TypeID `json:"evolvingArrayFinalType,omitempty" validate:"typeid"`
}

// Name picks the most descriptive label available for the type.
func (t *ResolvedType) Name() string {
	switch {
	case t.Display != "":
		return t.Display
	case t.SymbolName != "":
		return t.SymbolName
	case t.IntrinsicName != "":
		return t.IntrinsicName
	default:
		return fmt.Sprintf("#%d", t.ID)
	}
}

// HasFlag reports whether flag is set on the type.
func (t *ResolvedType) HasFlag(flag string) bool {
	for _, f := range t.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
