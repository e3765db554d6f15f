package limits

import (
	"fmt"
	"strings"

	"tracelens/internal/diag"
	"tracelens/internal/trace"
)

// Kind is one of the eight analyzer depth limits.
type Kind uint8

const (
	InstantiateType Kind = iota
	RecursiveTypeRelatedTo
	TypeRelatedToDiscriminatedType
	CheckCrossProductUnion
	GetTypeAtFlowNode
	RemoveSubtypes
	TraceUnionsOrIntersectionsTooLarge
	CheckTypeRelatedTo

	kindCount
)

// NumKinds is the number of depth-limit kinds.
const NumKinds = int(kindCount)

var kindInfo = [kindCount]struct {
	name    string
	variant trace.Variant
	code    diag.Code
	metric  string
}{
	InstantiateType:                    {"instantiateType", trace.VarInstantiateTypeDepthLimit, diag.LimInstantiateType, "instantiationDepth"},
	RecursiveTypeRelatedTo:             {"recursiveTypeRelatedTo", trace.VarRecursiveTypeRelatedToDepthLimit, diag.LimRecursiveTypeRelatedTo, "max(depth, targetDepth)"},
	TypeRelatedToDiscriminatedType:     {"typeRelatedToDiscriminatedType", trace.VarTypeRelatedToDiscriminatedTypeDepthLimit, diag.LimTypeRelatedToDiscriminatedType, "numCombinations"},
	CheckCrossProductUnion:             {"checkCrossProductUnion", trace.VarCheckCrossProductUnionDepthLimit, diag.LimCheckCrossProductUnion, "size"},
	GetTypeAtFlowNode:                  {"getTypeAtFlowNode", trace.VarGetTypeAtFlowNodeDepthLimit, diag.LimGetTypeAtFlowNode, ""},
	RemoveSubtypes:                     {"removeSubtypes", trace.VarRemoveSubtypesDepthLimit, diag.LimRemoveSubtypes, "typeIds"},
	TraceUnionsOrIntersectionsTooLarge: {"traceUnionsOrIntersectionsTooLarge", trace.VarTraceUnionsOrIntersectionsTooLargeDepthLimit, diag.LimTraceUnionsOrIntersectionsTooLarge, "sourceSize*targetSize"},
	CheckTypeRelatedTo:                 {"checkTypeRelatedTo", trace.VarCheckTypeRelatedToDepthLimit, diag.LimCheckTypeRelatedTo, "max(depth, targetDepth)"},
}

// Kinds returns the kinds in trace catalog order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

func (k Kind) String() string {
	if k < kindCount {
		return kindInfo[k].name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Variant returns the trace event variant reporting k.
func (k Kind) Variant() trace.Variant {
	return kindInfo[k].variant
}

// Code returns the diagnostic code findings of kind k carry.
func (k Kind) Code() diag.Code {
	return kindInfo[k].code
}

// MetricName names the payload field Worst ranks by; empty when the payload
// carries no magnitude.
func (k Kind) MetricName() string {
	return kindInfo[k].metric
}

// KindOf maps a trace variant to its depth-limit kind.
func KindOf(v trace.Variant) (Kind, bool) {
	if !v.IsDepthLimit() {
		return 0, false
	}
	return Kind(v - trace.VarInstantiateTypeDepthLimit), true
}

// ParseKind accepts either the short name ("instantiateType") or the event
// tag ("instantiateType_DepthLimit").
func ParseKind(s string) (Kind, error) {
	name := strings.TrimSuffix(s, "_DepthLimit")
	for k := range kindInfo {
		if kindInfo[k].name == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown depth-limit kind %q", s)
}
