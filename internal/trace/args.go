package trace

import "tracelens/internal/types"

// Args is the typed payload of an event. The concrete type is fixed by the
// event's Variant.
type Args interface {
	isArgs()
}

// NoArgs is the payload of variants that carry no arguments; it accepts
// only an empty object.
type NoArgs struct{}

// NameArgs names a process or thread.
type NameArgs struct {
	Name string `json:"name" validate:"required"`
}

// TracingStartedArgs is the devtools session marker.
type TracingStartedArgs struct {
	Data TracingStartedData `json:"data"`
}

type TracingStartedData struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// PathArgs carries a source file path.
type PathArgs struct {
	Path string `json:"path" validate:"required"`
}

type CreateProgramArgs struct {
	ConfigFilePath string `json:"configFilePath,omitempty"`
	RootDir        string `json:"rootDir,omitempty"`
}

type FindSourceFileArgs struct {
	FileName        string `json:"fileName" validate:"required"`
	FileIncludeKind string `json:"fileIncludeKind" validate:"required"`
}

type CountArgs struct {
	Count int `json:"count" validate:"gte=0"`
}

type ContainingFileArgs struct {
	ContainingFileName string `json:"containingFileName" validate:"required"`
}

type TypeReferenceDirectiveArgs struct {
	Directive   string `json:"directive" validate:"required"`
	HasResolved bool   `json:"hasResolved"`
	RefKind     int    `json:"refKind" validate:"gte=0"`
	RefPath     string `json:"refPath,omitempty"`
}

type ResolveLibraryArgs struct {
	ResolveFrom string `json:"resolveFrom" validate:"required"`
}

type OldProgramArgs struct {
	HasOldProgram bool `json:"hasOldProgram"`
}

// NodeArgs locates a syntax node inside a file.
type NodeArgs struct {
	Kind int    `json:"kind" validate:"gte=0"`
	Pos  int    `json:"pos" validate:"gte=0"`
	End  int    `json:"end" validate:"gte=0"`
	Path string `json:"path,omitempty"`
}

// TypePairArgs names the source and target of a type relation check.
type TypePairArgs struct {
	SourceID types.TypeID `json:"sourceId" validate:"typeid"`
	TargetID types.TypeID `json:"targetId" validate:"typeid"`
}

type VariancesArgs struct {
	Arity     int          `json:"arity" validate:"gte=0"`
	ID        types.TypeID `json:"id" validate:"typeid"`
	Variances []string     `json:"variances,omitempty"`
}

type DeferredTypeParameterArgs struct {
	Parent types.TypeID `json:"parent" validate:"typeid"`
	ID     types.TypeID `json:"id" validate:"typeid"`
}

type BuildInfoArgs struct {
	BuildInfoPath string `json:"buildInfoPath" validate:"required"`
}

type CommandArgs struct {
	Seq     int    `json:"seq" validate:"gte=0"`
	Command string `json:"command" validate:"required"`
}

type ProjectArgs struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"required"`
}

type ConfigFileArgs struct {
	ConfigFilePath string `json:"configFilePath" validate:"required"`
}

type FileCheckArgs struct {
	File           string `json:"file" validate:"required"`
	ConfigFilePath string `json:"configFilePath,omitempty"`
}

type StepArgs struct {
	Seq   int  `json:"seq" validate:"gte=0"`
	Early bool `json:"early,omitempty"`
}

// Depth-limit payloads ------------------------------------------------------

// InstantiateTypeDepthLimit fires when type instantiation nests too deep or
// produces too many instantiations.
type InstantiateTypeDepthLimit struct {
	TypeID             types.TypeID `json:"typeId" validate:"typeid"`
	InstantiationDepth int          `json:"instantiationDepth" validate:"gt=0"`
	InstantiationCount int          `json:"instantiationCount" validate:"gt=0"`
}

// RecursiveTypeRelatedToDepthLimit fires when a structural comparison
// recurses past the analyzer's stack budget.
type RecursiveTypeRelatedToDepthLimit struct {
	SourceID      types.TypeID   `json:"sourceId" validate:"typeid"`
	SourceIDStack []types.TypeID `json:"sourceIdStack" validate:"dive,typeid"`
	TargetID      types.TypeID   `json:"targetId" validate:"typeid"`
	TargetIDStack []types.TypeID `json:"targetIdStack" validate:"dive,typeid"`
	Depth         int            `json:"depth" validate:"gt=0"`
	TargetDepth   int            `json:"targetDepth" validate:"gt=0"`
}

// TypeRelatedToDiscriminatedTypeDepthLimit fires when discriminant
// combinations exceed the budget.
type TypeRelatedToDiscriminatedTypeDepthLimit struct {
	SourceID        types.TypeID `json:"sourceId" validate:"typeid"`
	TargetID        types.TypeID `json:"targetId" validate:"typeid"`
	NumCombinations int          `json:"numCombinations" validate:"gt=0"`
}

// CheckCrossProductUnionDepthLimit fires when a cross-product union would
// exceed the size budget.
type CheckCrossProductUnionDepthLimit struct {
	TypeIDs []types.TypeID `json:"typeIds" validate:"dive,typeid"`
	Size    int            `json:"size" validate:"gt=0"`
}

// GetTypeAtFlowNodeDepthLimit fires when control-flow analysis walks too
// many flow nodes.
type GetTypeAtFlowNodeDepthLimit struct {
	FlowID int `json:"flowId" validate:"gt=0"`
}

// RemoveSubtypesDepthLimit fires when subtype reduction gives up.
type RemoveSubtypesDepthLimit struct {
	TypeIDs []types.TypeID `json:"typeIds" validate:"dive,typeid"`
}

// TraceUnionsOrIntersectionsTooLargeDepthLimit records a comparison between
// two very large unions or intersections.
type TraceUnionsOrIntersectionsTooLargeDepthLimit struct {
	SourceID   types.TypeID `json:"sourceId" validate:"typeid"`
	SourceSize int          `json:"sourceSize" validate:"gt=0"`
	TargetID   types.TypeID `json:"targetId" validate:"typeid"`
	TargetSize int          `json:"targetSize" validate:"gt=0"`
	Pos        *int         `json:"pos,omitempty" validate:"gte=0"`
	End        *int         `json:"end,omitempty" validate:"gte=0"`
}

// CheckTypeRelatedToDepthLimit fires when an assignability check overflows
// the relation stack.
type CheckTypeRelatedToDepthLimit struct {
	SourceID    types.TypeID `json:"sourceId" validate:"typeid"`
	TargetID    types.TypeID `json:"targetId" validate:"typeid"`
	Depth       int          `json:"depth" validate:"gt=0"`
	TargetDepth int          `json:"targetDepth" validate:"gt=0"`
}

func (*NoArgs) isArgs()                                       {}
func (*NameArgs) isArgs()                                     {}
func (*TracingStartedArgs) isArgs()                           {}
func (*PathArgs) isArgs()                                     {}
func (*CreateProgramArgs) isArgs()                            {}
func (*FindSourceFileArgs) isArgs()                           {}
func (*CountArgs) isArgs()                                    {}
func (*ContainingFileArgs) isArgs()                           {}
func (*TypeReferenceDirectiveArgs) isArgs()                   {}
func (*ResolveLibraryArgs) isArgs()                           {}
func (*OldProgramArgs) isArgs()                               {}
func (*NodeArgs) isArgs()                                     {}
func (*TypePairArgs) isArgs()                                 {}
func (*VariancesArgs) isArgs()                                {}
func (*DeferredTypeParameterArgs) isArgs()                    {}
func (*BuildInfoArgs) isArgs()                                {}
func (*CommandArgs) isArgs()                                  {}
func (*ProjectArgs) isArgs()                                  {}
func (*ConfigFileArgs) isArgs()                               {}
func (*FileCheckArgs) isArgs()                                {}
func (*StepArgs) isArgs()                                     {}
func (*InstantiateTypeDepthLimit) isArgs()                    {}
func (*RecursiveTypeRelatedToDepthLimit) isArgs()             {}
func (*TypeRelatedToDiscriminatedTypeDepthLimit) isArgs()     {}
func (*CheckCrossProductUnionDepthLimit) isArgs()             {}
func (*GetTypeAtFlowNodeDepthLimit) isArgs()                  {}
func (*RemoveSubtypesDepthLimit) isArgs()                     {}
func (*TraceUnionsOrIntersectionsTooLargeDepthLimit) isArgs() {}
func (*CheckTypeRelatedToDepthLimit) isArgs()                 {}
