package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// schema violations
	SchInfo          Code = 1000
	SchTraceInvalid  Code = 1001
	SchTypesInvalid  Code = 1002
	SchDuplicateType Code = 1003

	// depth limits, one per analyzer limit
	LimInfo                               Code = 2000
	LimInstantiateType                    Code = 2001
	LimRecursiveTypeRelatedTo             Code = 2002
	LimTypeRelatedToDiscriminatedType     Code = 2003
	LimCheckCrossProductUnion             Code = 2004
	LimGetTypeAtFlowNode                  Code = 2005
	LimRemoveSubtypes                     Code = 2006
	LimTraceUnionsOrIntersectionsTooLarge Code = 2007
	LimCheckTypeRelatedTo                 Code = 2008

	// relation graph
	GrfInfo              Code = 3000
	GrfDanglingReference Code = 3001
	GrfSentinelReference Code = 3002

	// trace structure
	TrcInfo         Code = 4000
	TrcUnmatchedEnd Code = 4001
	TrcUnterminated Code = 4002
	TrcNoCheckSpans Code = 4003
)

var (
	codeDescription = map[Code]string{
		UnknownCode: "Unknown error",

		SchInfo:          "Schema information",
		SchTraceInvalid:  "Trace record failed validation",
		SchTypesInvalid:  "Type record failed validation",
		SchDuplicateType: "Type identifier defined twice",

		LimInfo:                               "Depth limit information",
		LimInstantiateType:                    "Type instantiation depth limit reached",
		LimRecursiveTypeRelatedTo:             "Recursive relation depth limit reached",
		LimTypeRelatedToDiscriminatedType:     "Discriminated union combination limit reached",
		LimCheckCrossProductUnion:             "Cross-product union size limit reached",
		LimGetTypeAtFlowNode:                  "Control flow analysis depth limit reached",
		LimRemoveSubtypes:                     "Subtype reduction limit reached",
		LimTraceUnionsOrIntersectionsTooLarge: "Very large union or intersection comparison",
		LimCheckTypeRelatedTo:                 "Assignability check depth limit reached",

		GrfInfo:              "Relation graph information",
		GrfDanglingReference: "Relation points at an unknown type",
		GrfSentinelReference: "Relation points at the sentinel type",

		TrcInfo:         "Trace structure information",
		TrcUnmatchedEnd: "End record without a matching begin",
		TrcUnterminated: "Begin record never closed",
		TrcNoCheckSpans: "Trace has no file check spans",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCH%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("LIM%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("GRF%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TRC%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// MarshalText renders the stable identifier.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.ID()), nil
}
