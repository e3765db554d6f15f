package types

import (
	"github.com/go-playground/validator/v10"

	"tracelens/internal/schema"
)

// flagVocabulary is the set of flag names the analyzer may emit. It is
// versioned together with the analyzer; unknown names are rejected.
var flagVocabulary = []string{
	// primitive flags
	"Any", "Unknown", "String", "Number", "Boolean", "Enum", "BigInt",
	"StringLiteral", "NumberLiteral", "BooleanLiteral", "EnumLiteral", "BigIntLiteral",
	"ESSymbol", "UniqueESSymbol", "Void", "Undefined", "Null", "Never",
	"TypeParameter", "Object", "Union", "Intersection", "Index", "IndexedAccess",
	"Conditional", "Substitution", "NonPrimitive", "TemplateLiteral", "StringMapping",
	"Reserved1", "Reserved2",

	// composite flags
	"AnyOrUnknown", "Nullable", "Literal", "Unit", "Freshable",
	"StringOrNumberLiteral", "StringOrNumberLiteralOrUnique",
	"DefinitelyFalsy", "PossiblyFalsy", "Intrinsic",
	"StringLike", "NumberLike", "BigIntLike", "BooleanLike", "EnumLike",
	"ESSymbolLike", "VoidLike", "Primitive", "DefinitelyNonNullable",
	"DisjointDomains", "UnionOrIntersection", "StructuredType", "TypeVariable",
	"InstantiableNonPrimitive", "InstantiablePrimitive", "Instantiable",
	"StructuredOrInstantiable", "ObjectFlagsType", "Simplifiable", "Singleton",
	"Narrowable", "IncludesMask", "IncludesMissingType", "IncludesNonWideningType",
	"IncludesWildcard", "IncludesEmptyObject", "IncludesInstantiable",
	"IncludesConstrainedTypeVariable", "IncludesError", "NotPrimitiveUnion",
}

var knownFlags = func() map[string]struct{} {
	m := make(map[string]struct{}, len(flagVocabulary))
	for _, f := range flagVocabulary {
		m[f] = struct{}{}
	}
	return m
}()

func init() {
	schema.RegisterValidation("typeflag", func(fl validator.FieldLevel) bool {
		return IsKnownFlag(fl.Field().String())
	})
}

// IsKnownFlag reports whether name belongs to the flag vocabulary.
func IsKnownFlag(name string) bool {
	_, ok := knownFlags[name]
	return ok
}

// Flags returns a copy of the flag vocabulary.
func Flags() []string {
	return append([]string(nil), flagVocabulary...)
}
