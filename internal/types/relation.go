package types

import "fmt"

// RelationKind names one of the typed edges a ResolvedType may carry.
type RelationKind uint8

const (
	RelUnionTypes RelationKind = iota
	RelIntersectionTypes
	RelTypeArguments
	RelAliasTypeArguments
	RelInstantiatedType
	RelKeyofType
	RelIndexedAccessObjectType
	RelIndexedAccessIndexType
	RelConditionalCheckType
	RelConditionalExtendsType
	RelConditionalTrueType
	RelConditionalFalseType
	RelSubstitutionBaseType
	RelConstraintType
	RelReverseMappedSourceType
	RelReverseMappedMappedType
	RelReverseMappedConstraintType
	RelEvolvingArrayElementType
	RelEvolvingArrayFinalType

	relationCount
)

// NumRelations is the number of relation kinds.
const NumRelations = int(relationCount)

var relationNames = [relationCount]string{
	RelUnionTypes:                  "unionTypes",
	RelIntersectionTypes:           "intersectionTypes",
	RelTypeArguments:               "typeArguments",
	RelAliasTypeArguments:          "aliasTypeArguments",
	RelInstantiatedType:            "instantiatedType",
	RelKeyofType:                   "keyofType",
	RelIndexedAccessObjectType:     "indexedAccessObjectType",
	RelIndexedAccessIndexType:      "indexedAccessIndexType",
	RelConditionalCheckType:        "conditionalCheckType",
	RelConditionalExtendsType:      "conditionalExtendsType",
	RelConditionalTrueType:         "conditionalTrueType",
	RelConditionalFalseType:        "conditionalFalseType",
	RelSubstitutionBaseType:        "substitutionBaseType",
	RelConstraintType:              "constraintType",
	RelReverseMappedSourceType:     "reverseMappedSourceType",
	RelReverseMappedMappedType:     "reverseMappedMappedType",
	RelReverseMappedConstraintType: "reverseMappedConstraintType",
	RelEvolvingArrayElementType:    "evolvingArrayElementType",
	RelEvolvingArrayFinalType:      "evolvingArrayFinalType",
}

// AllRelations lists every relation kind in declaration order.
func AllRelations() []RelationKind {
	out := make([]RelationKind, relationCount)
	for i := range out {
		out[i] = RelationKind(i)
	}
	return out
}

// String returns the JSON key of the relation.
func (k RelationKind) String() string {
	if k < relationCount {
		return relationNames[k]
	}
	return fmt.Sprintf("RelationKind(%d)", k)
}

// IsList reports whether the relation holds an ordered list of references.
func (k RelationKind) IsList() bool {
	return k <= RelAliasTypeArguments
}

// ParseRelationKind converts a JSON key into a RelationKind.
func ParseRelationKind(s string) (RelationKind, error) {
	for i, name := range relationNames {
		if name == s {
			return RelationKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown relation kind %q", s)
}

// Refs returns the identifiers referenced through kind, or nil when the
// relation is absent. Scalar relations yield at most one element.
func (t *ResolvedType) Refs(kind RelationKind) []TypeID {
	switch kind {
	case RelUnionTypes:
		return t.UnionTypes
	case RelIntersectionTypes:
		return t.IntersectionTypes
	case RelTypeArguments:
		return t.TypeArguments
	case RelAliasTypeArguments:
		return t.AliasTypeArguments
	}
	if id := t.Ref(kind); id != NoTypeID {
		return []TypeID{id}
	}
	return nil
}

// Ref returns the scalar reference for kind; NoTypeID for list kinds or
// when the relation is absent.
func (t *ResolvedType) Ref(kind RelationKind) TypeID {
	switch kind {
	case RelInstantiatedType:
		return t.InstantiatedType
	case RelKeyofType:
		return t.KeyofType
	case RelIndexedAccessObjectType:
		return t.IndexedAccessObjectType
	case RelIndexedAccessIndexType:
		return t.IndexedAccessIndexType
	case RelConditionalCheckType:
		return t.ConditionalCheckType
	case RelConditionalExtendsType:
		return t.ConditionalExtendsType
	case RelConditionalTrueType:
		return t.ConditionalTrueType
	case RelConditionalFalseType:
		return t.ConditionalFalseType
	case RelSubstitutionBaseType:
		return t.SubstitutionBaseType
	case RelConstraintType:
		return t.ConstraintType
	case RelReverseMappedSourceType:
		return t.ReverseMappedSourceType
	case RelReverseMappedMappedType:
		return t.ReverseMappedMappedType
	case RelReverseMappedConstraintType:
		return t.ReverseMappedConstraintType
	case RelEvolvingArrayElementType:
		return t.EvolvingArrayElementType
	case RelEvolvingArrayFinalType:
		return t.EvolvingArrayFinalType
	default:
		return NoTypeID
	}
}
