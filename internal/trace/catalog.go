package trace

import "fmt"

// Variant identifies one event shape of the catalog. The tag (`name`)
// uniquely selects a Variant.
type Variant uint8

const (
	VariantInvalid Variant = iota

	// metadata
	VarProcessName
	VarThreadName
	VarTracingStartedInBrowser

	// parse
	VarCreateSourceFile
	VarParseJSONSourceFileConfigFileContent

	// program
	VarCreateProgram
	VarFindSourceFile
	VarProcessRootFiles
	VarProcessTypeReferences
	VarProcessLibReferenceDirectives
	VarResolveModuleNamesWorker
	VarResolveTypeReferenceDirectiveNamesWorker
	VarProcessTypeReferenceDirective
	VarResolveLibrary
	VarShouldProgramCreateNewSourceFiles
	VarTryReuseStructureFromOldProgram
	VarFinishCachingPerDirectoryResolution

	// bind
	VarBindSourceFile

	// check
	VarCheckSourceFile
	VarCheckExpression
	VarCheckVariableDeclaration
	VarCheckDeferredNode

	// checkTypes
	VarStructuredTypeRelatedTo
	VarGetVariancesWorker
	VarCheckTypeParameterDeferred
	VarInstantiateTypeDepthLimit
	VarRecursiveTypeRelatedToDepthLimit
	VarTypeRelatedToDiscriminatedTypeDepthLimit
	VarCheckCrossProductUnionDepthLimit
	VarGetTypeAtFlowNodeDepthLimit
	VarRemoveSubtypesDepthLimit
	VarTraceUnionsOrIntersectionsTooLargeDepthLimit
	VarCheckTypeRelatedToDepthLimit

	// emit
	VarEmit
	VarEmitJSFileOrBundle
	VarEmitDeclarationFileOrBundle
	VarEmitBuildInfo
	VarTransformNodes

	// session
	VarExecuteCommand
	VarUpdateGraph
	VarCreateConfiguredProject
	VarSemanticCheck
	VarSyntacticCheck
	VarSuggestionCheck
	VarRegionSemanticCheck
	VarStepAction
	VarStepCanceled

	variantCount
)

// variantInfo fixes everything the tag determines about a record.
type variantInfo struct {
	name     string
	phase    Phase
	kinds    kindSet
	newArgs  func() Args
	optional bool // args may be omitted on every kind
}

var (
	durationKinds = kinds(KindBegin, KindEnd)
	completeKinds = kinds(KindComplete)
	instantKinds  = kinds(KindInstant)
	metaKinds     = kinds(KindMetadata)
	checkKinds    = kinds(KindBegin, KindEnd, KindComplete)
)

func newNoArgs() Args { return &NoArgs{} }

var catalog = [variantCount]variantInfo{
	VarProcessName:             {name: "process_name", phase: PhaseMetadata, kinds: metaKinds, newArgs: func() Args { return &NameArgs{} }},
	VarThreadName:              {name: "thread_name", phase: PhaseMetadata, kinds: metaKinds, newArgs: func() Args { return &NameArgs{} }},
	VarTracingStartedInBrowser: {name: "TracingStartedInBrowser", phase: PhaseDevtools, kinds: metaKinds, newArgs: func() Args { return &TracingStartedArgs{} }},

	VarCreateSourceFile:                     {name: "createSourceFile", phase: PhaseParse, kinds: durationKinds, newArgs: func() Args { return &PathArgs{} }},
	VarParseJSONSourceFileConfigFileContent: {name: "parseJsonSourceFileConfigFileContent", phase: PhaseParse, kinds: completeKinds, newArgs: func() Args { return &PathArgs{} }},

	VarCreateProgram:                            {name: "createProgram", phase: PhaseProgram, kinds: durationKinds, newArgs: func() Args { return &CreateProgramArgs{} }, optional: true},
	VarFindSourceFile:                           {name: "findSourceFile", phase: PhaseProgram, kinds: completeKinds, newArgs: func() Args { return &FindSourceFileArgs{} }},
	VarProcessRootFiles:                         {name: "processRootFiles", phase: PhaseProgram, kinds: completeKinds, newArgs: func() Args { return &CountArgs{} }},
	VarProcessTypeReferences:                    {name: "processTypeReferences", phase: PhaseProgram, kinds: completeKinds, newArgs: func() Args { return &CountArgs{} }},
	VarProcessLibReferenceDirectives:            {name: "processLibReferenceDirectives", phase: PhaseProgram, kinds: completeKinds, newArgs: func() Args { return &CountArgs{} }},
	VarResolveModuleNamesWorker:                 {name: "resolveModuleNamesWorker", phase: PhaseProgram, kinds: completeKinds, newArgs: func() Args { return &ContainingFileArgs{} }},
	VarResolveTypeReferenceDirectiveNamesWorker: {name: "resolveTypeReferenceDirectiveNamesWorker", phase: PhaseProgram, kinds: completeKinds, newArgs: func() Args { return &ContainingFileArgs{} }},
	VarProcessTypeReferenceDirective:            {name: "processTypeReferenceDirective", phase: PhaseProgram, kinds: completeKinds, newArgs: func() Args { return &TypeReferenceDirectiveArgs{} }},
	VarResolveLibrary:                           {name: "resolveLibrary", phase: PhaseProgram, kinds: completeKinds, newArgs: func() Args { return &ResolveLibraryArgs{} }},
	VarShouldProgramCreateNewSourceFiles:        {name: "shouldProgramCreateNewSourceFiles", phase: PhaseProgram, kinds: instantKinds, newArgs: func() Args { return &OldProgramArgs{} }},
	VarTryReuseStructureFromOldProgram:          {name: "tryReuseStructureFromOldProgram", phase: PhaseProgram, kinds: completeKinds, newArgs: newNoArgs, optional: true},
	VarFinishCachingPerDirectoryResolution:      {name: "finishCachingPerDirectoryResolution", phase: PhaseProgram, kinds: instantKinds, newArgs: newNoArgs, optional: true},

	VarBindSourceFile: {name: "bindSourceFile", phase: PhaseBind, kinds: durationKinds, newArgs: func() Args { return &PathArgs{} }},

	VarCheckSourceFile:          {name: "checkSourceFile", phase: PhaseCheck, kinds: checkKinds, newArgs: func() Args { return &PathArgs{} }},
	VarCheckExpression:          {name: "checkExpression", phase: PhaseCheck, kinds: durationKinds, newArgs: func() Args { return &NodeArgs{} }},
	VarCheckVariableDeclaration: {name: "checkVariableDeclaration", phase: PhaseCheck, kinds: durationKinds, newArgs: func() Args { return &NodeArgs{} }},
	VarCheckDeferredNode:        {name: "checkDeferredNode", phase: PhaseCheck, kinds: durationKinds, newArgs: func() Args { return &NodeArgs{} }},

	VarStructuredTypeRelatedTo:                      {name: "structuredTypeRelatedTo", phase: PhaseCheckTypes, kinds: completeKinds, newArgs: func() Args { return &TypePairArgs{} }},
	VarGetVariancesWorker:                           {name: "getVariancesWorker", phase: PhaseCheckTypes, kinds: completeKinds, newArgs: func() Args { return &VariancesArgs{} }},
	VarCheckTypeParameterDeferred:                   {name: "checkTypeParameterDeferred", phase: PhaseCheckTypes, kinds: completeKinds, newArgs: func() Args { return &DeferredTypeParameterArgs{} }},
	VarInstantiateTypeDepthLimit:                    {name: "instantiateType_DepthLimit", phase: PhaseCheckTypes, kinds: instantKinds, newArgs: func() Args { return &InstantiateTypeDepthLimit{} }},
	VarRecursiveTypeRelatedToDepthLimit:             {name: "recursiveTypeRelatedTo_DepthLimit", phase: PhaseCheckTypes, kinds: instantKinds, newArgs: func() Args { return &RecursiveTypeRelatedToDepthLimit{} }},
	VarTypeRelatedToDiscriminatedTypeDepthLimit:     {name: "typeRelatedToDiscriminatedType_DepthLimit", phase: PhaseCheckTypes, kinds: instantKinds, newArgs: func() Args { return &TypeRelatedToDiscriminatedTypeDepthLimit{} }},
	VarCheckCrossProductUnionDepthLimit:             {name: "checkCrossProductUnion_DepthLimit", phase: PhaseCheckTypes, kinds: instantKinds, newArgs: func() Args { return &CheckCrossProductUnionDepthLimit{} }},
	VarGetTypeAtFlowNodeDepthLimit:                  {name: "getTypeAtFlowNode_DepthLimit", phase: PhaseCheckTypes, kinds: instantKinds, newArgs: func() Args { return &GetTypeAtFlowNodeDepthLimit{} }},
	VarRemoveSubtypesDepthLimit:                     {name: "removeSubtypes_DepthLimit", phase: PhaseCheckTypes, kinds: instantKinds, newArgs: func() Args { return &RemoveSubtypesDepthLimit{} }},
	VarTraceUnionsOrIntersectionsTooLargeDepthLimit: {name: "traceUnionsOrIntersectionsTooLarge_DepthLimit", phase: PhaseCheckTypes, kinds: instantKinds, newArgs: func() Args { return &TraceUnionsOrIntersectionsTooLargeDepthLimit{} }},
	VarCheckTypeRelatedToDepthLimit:                 {name: "checkTypeRelatedTo_DepthLimit", phase: PhaseCheckTypes, kinds: instantKinds, newArgs: func() Args { return &CheckTypeRelatedToDepthLimit{} }},

	VarEmit:                        {name: "emit", phase: PhaseEmit, kinds: durationKinds, newArgs: newNoArgs, optional: true},
	VarEmitJSFileOrBundle:          {name: "emitJsFileOrBundle", phase: PhaseEmit, kinds: durationKinds, newArgs: func() Args { return &PathArgs{} }},
	VarEmitDeclarationFileOrBundle: {name: "emitDeclarationFileOrBundle", phase: PhaseEmit, kinds: durationKinds, newArgs: func() Args { return &PathArgs{} }},
	VarEmitBuildInfo:               {name: "emitBuildInfo", phase: PhaseEmit, kinds: durationKinds, newArgs: func() Args { return &BuildInfoArgs{} }},
	VarTransformNodes:              {name: "transformNodes", phase: PhaseEmit, kinds: durationKinds, newArgs: func() Args { return &PathArgs{} }},

	VarExecuteCommand:          {name: "executeCommand", phase: PhaseSession, kinds: durationKinds, newArgs: func() Args { return &CommandArgs{} }},
	VarUpdateGraph:             {name: "updateGraph", phase: PhaseSession, kinds: completeKinds, newArgs: func() Args { return &ProjectArgs{} }},
	VarCreateConfiguredProject: {name: "createConfiguredProject", phase: PhaseSession, kinds: completeKinds, newArgs: func() Args { return &ConfigFileArgs{} }},
	VarSemanticCheck:           {name: "semanticCheck", phase: PhaseSession, kinds: durationKinds, newArgs: func() Args { return &FileCheckArgs{} }},
	VarSyntacticCheck:          {name: "syntacticCheck", phase: PhaseSession, kinds: durationKinds, newArgs: func() Args { return &FileCheckArgs{} }},
	VarSuggestionCheck:         {name: "suggestionCheck", phase: PhaseSession, kinds: durationKinds, newArgs: func() Args { return &FileCheckArgs{} }},
	VarRegionSemanticCheck:     {name: "regionSemanticCheck", phase: PhaseSession, kinds: durationKinds, newArgs: func() Args { return &FileCheckArgs{} }},
	VarStepAction:              {name: "stepAction", phase: PhaseSession, kinds: instantKinds, newArgs: func() Args { return &StepArgs{} }},
	VarStepCanceled:            {name: "stepCanceled", phase: PhaseSession, kinds: instantKinds, newArgs: func() Args { return &StepArgs{} }},
}

var variantByName = func() map[string]Variant {
	m := make(map[string]Variant, variantCount)
	for i := Variant(1); i < variantCount; i++ {
		name := catalog[i].name
		if name == "" {
			panic(fmt.Sprintf("trace: variant %d has no catalog entry", i))
		}
		if _, dup := m[name]; dup {
			panic(fmt.Sprintf("trace: tag %q registered twice", name))
		}
		m[name] = i
	}
	return m
}()

// String returns the tag of the variant.
func (v Variant) String() string {
	if v > VariantInvalid && v < variantCount {
		return catalog[v].name
	}
	return fmt.Sprintf("Variant(%d)", v)
}

// Phase returns the category the variant is emitted under.
func (v Variant) Phase() Phase {
	if v > VariantInvalid && v < variantCount {
		return catalog[v].phase
	}
	return 0
}

// Allows reports whether the variant may appear with shape kind k.
func (v Variant) Allows(k Kind) bool {
	if v > VariantInvalid && v < variantCount {
		return catalog[v].kinds.has(k)
	}
	return false
}

// IsDepthLimit reports whether v is one of the eight depth-limit diagnostics.
func (v Variant) IsDepthLimit() bool {
	return v >= VarInstantiateTypeDepthLimit && v <= VarCheckTypeRelatedToDepthLimit
}

// LookupVariant maps a tag to its Variant.
func LookupVariant(name string) (Variant, bool) {
	v, ok := variantByName[name]
	return v, ok
}

// Variants returns every variant in catalog order.
func Variants() []Variant {
	out := make([]Variant, 0, variantCount-1)
	for i := Variant(1); i < variantCount; i++ {
		out = append(out, i)
	}
	return out
}

// DepthLimitVariants returns the eight depth-limit variants in catalog order.
func DepthLimitVariants() []Variant {
	out := make([]Variant, 0, 8)
	for v := VarInstantiateTypeDepthLimit; v <= VarCheckTypeRelatedToDepthLimit; v++ {
		out = append(out, v)
	}
	return out
}
