package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracelens/internal/schema"
	"tracelens/internal/types"
)

const sampleTrace = `[
  {"name":"process_name","cat":"__metadata","ph":"M","ts":1,"pid":1,"tid":1,"args":{"name":"tsc"}},
  {"name":"TracingStartedInBrowser","cat":"disabled-by-default-devtools.timeline","ph":"M","ts":1,"pid":1,"tid":1,"args":{"data":{"sessionId":"-1"}}},
  {"pid":1,"tid":1,"ph":"B","cat":"program","ts":10,"name":"createProgram","args":{"configFilePath":"/p/tsconfig.json","rootDir":"/p"}},
  {"pid":1,"tid":1,"ph":"B","cat":"parse","ts":20,"name":"createSourceFile","args":{"path":"/p/src/a.ts"}},
  {"pid":1,"tid":1,"ph":"E","cat":"parse","ts":30,"name":"createSourceFile","args":{"path":"/p/src/a.ts"}},
  {"pid":1,"tid":1,"ph":"E","cat":"program","ts":40,"name":"createProgram"},
  {"pid":1,"tid":1,"ph":"X","cat":"check","ts":50,"name":"checkSourceFile","dur":25,"args":{"path":"/p/src/a.ts"}},
  {"pid":1,"tid":1,"ph":"I","cat":"checkTypes","ts":60,"name":"instantiateType_DepthLimit","s":"g","args":{"typeId":42,"instantiationDepth":100,"instantiationCount":5000}},
  {"pid":1,"tid":1,"ph":"X","cat":"checkTypes","ts":70,"name":"structuredTypeRelatedTo","dur":3,"args":{"sourceId":-1,"targetId":7}},
  {"pid":1,"tid":1,"ph":"X","cat":"program","ts":80,"name":"tryReuseStructureFromOldProgram","dur":0}
]`

func TestDecodeValidTrace(t *testing.T) {
	events, err := Decode([]byte(sampleTrace))
	require.NoError(t, err)
	require.Len(t, events, 10)

	assert.Equal(t, VarProcessName, events[0].Variant)
	assert.Equal(t, KindMetadata, events[0].Kind)
	assert.Equal(t, "tsc", events[0].Args.(*NameArgs).Name)

	assert.Equal(t, KindBegin, events[2].Kind)
	assert.Equal(t, "/p", events[2].Args.(*CreateProgramArgs).RootDir)
	assert.Nil(t, events[5].Args, "end record without args keeps nil payload")

	check := events[6]
	assert.Equal(t, "checkSourceFile", check.Name())
	assert.Equal(t, PhaseCheck, check.Phase)
	assert.Equal(t, int64(25), check.Dur)
	assert.Equal(t, int64(75), check.End())

	limit, ok := events[7].Args.(*InstantiateTypeDepthLimit)
	require.True(t, ok, "payload type follows the tag")
	assert.Equal(t, types.TypeID(42), limit.TypeID)
	assert.Equal(t, 100, limit.InstantiationDepth)
	assert.Equal(t, ScopeGlobal, events[7].Scope)

	pair := events[8].Args.(*TypePairArgs)
	assert.Equal(t, types.SentinelTypeID, pair.SourceID)

	assert.Nil(t, events[9].Args)
	assert.Equal(t, 9, events[9].Index)
}

func TestDecodeTagSelectsPayloadShape(t *testing.T) {
	events, err := Decode([]byte(sampleTrace))
	require.NoError(t, err)
	for _, ev := range events {
		v, ok := LookupVariant(ev.Name())
		require.True(t, ok)
		assert.Equal(t, v, ev.Variant)
		assert.Equal(t, v.Phase(), ev.Phase)
		assert.True(t, v.Allows(ev.Kind), "%s as %s", ev.Name(), ev.Kind)
	}
}

func TestDecodeRejections(t *testing.T) {
	tests := []struct {
		name   string
		record string
		tag    string
		field  string
		reason schema.Reason
	}{
		{
			name:   "unknown tag",
			record: `{"pid":1,"tid":1,"ph":"X","cat":"check","ts":5,"dur":1,"name":"checkEverything"}`,
			tag:    "checkEverything",
			field:  "name",
			reason: schema.ReasonUnknownTag,
		},
		{
			name:   "missing name",
			record: `{"pid":1,"tid":1,"ph":"X","cat":"check","ts":5,"dur":1}`,
			field:  "name",
			reason: schema.ReasonMissingField,
		},
		{
			name:   "extra top-level key",
			record: `{"pid":1,"tid":1,"ph":"X","cat":"check","ts":5,"dur":1,"name":"checkSourceFile","args":{"path":"a.ts"},"color":"red"}`,
			tag:    "checkSourceFile",
			field:  "color",
			reason: schema.ReasonUnknownField,
		},
		{
			name:   "extra args key",
			record: `{"pid":1,"tid":1,"ph":"X","cat":"check","ts":5,"dur":1,"name":"checkSourceFile","args":{"path":"a.ts","size":3}}`,
			tag:    "checkSourceFile",
			field:  "args.size",
			reason: schema.ReasonUnknownField,
		},
		{
			name:   "missing pid",
			record: `{"tid":1,"ph":"X","cat":"check","ts":5,"dur":1,"name":"checkSourceFile","args":{"path":"a.ts"}}`,
			tag:    "checkSourceFile",
			field:  "pid",
			reason: schema.ReasonMissingField,
		},
		{
			name:   "zero pid",
			record: `{"pid":0,"tid":1,"ph":"X","cat":"check","ts":5,"dur":1,"name":"checkSourceFile","args":{"path":"a.ts"}}`,
			tag:    "checkSourceFile",
			field:  "pid",
			reason: schema.ReasonConstraint,
		},
		{
			name:   "fractional timestamp",
			record: `{"pid":1,"tid":1,"ph":"X","cat":"check","ts":5.5,"dur":1,"name":"checkSourceFile","args":{"path":"a.ts"}}`,
			tag:    "checkSourceFile",
			field:  "ts",
			reason: schema.ReasonWrongType,
		},
		{
			name:   "string tid",
			record: `{"pid":1,"tid":"1","ph":"X","cat":"check","ts":5,"dur":1,"name":"checkSourceFile","args":{"path":"a.ts"}}`,
			tag:    "checkSourceFile",
			field:  "tid",
			reason: schema.ReasonWrongType,
		},
		{
			name:   "shape kind not allowed",
			record: `{"pid":1,"tid":1,"ph":"X","cat":"parse","ts":5,"dur":1,"name":"createSourceFile","args":{"path":"a.ts"}}`,
			tag:    "createSourceFile",
			field:  "ph",
			reason: schema.ReasonNotAllowed,
		},
		{
			name:   "category mismatch",
			record: `{"pid":1,"tid":1,"ph":"X","cat":"emit","ts":5,"dur":1,"name":"checkSourceFile","args":{"path":"a.ts"}}`,
			tag:    "checkSourceFile",
			field:  "cat",
			reason: schema.ReasonConstraint,
		},
		{
			name:   "complete without duration",
			record: `{"pid":1,"tid":1,"ph":"X","cat":"check","ts":5,"name":"checkSourceFile","args":{"path":"a.ts"}}`,
			tag:    "checkSourceFile",
			field:  "dur",
			reason: schema.ReasonMissingField,
		},
		{
			name:   "instant with duration",
			record: `{"pid":1,"tid":1,"ph":"I","cat":"checkTypes","ts":5,"dur":2,"name":"getTypeAtFlowNode_DepthLimit","args":{"flowId":3}}`,
			tag:    "getTypeAtFlowNode_DepthLimit",
			field:  "dur",
			reason: schema.ReasonNotAllowed,
		},
		{
			name:   "scope on complete event",
			record: `{"pid":1,"tid":1,"ph":"X","cat":"check","ts":5,"dur":1,"s":"g","name":"checkSourceFile","args":{"path":"a.ts"}}`,
			tag:    "checkSourceFile",
			field:  "s",
			reason: schema.ReasonNotAllowed,
		},
		{
			name:   "zero type id",
			record: `{"pid":1,"tid":1,"ph":"I","cat":"checkTypes","ts":5,"name":"instantiateType_DepthLimit","args":{"typeId":0,"instantiationDepth":1,"instantiationCount":1}}`,
			tag:    "instantiateType_DepthLimit",
			field:  "args.typeId",
			reason: schema.ReasonConstraint,
		},
		{
			name:   "negative type id other than sentinel",
			record: `{"pid":1,"tid":1,"ph":"I","cat":"checkTypes","ts":5,"name":"removeSubtypes_DepthLimit","args":{"typeIds":[3,-2]}}`,
			tag:    "removeSubtypes_DepthLimit",
			field:  "args.typeIds[1]",
			reason: schema.ReasonConstraint,
		},
		{
			name:   "missing payload field",
			record: `{"pid":1,"tid":1,"ph":"I","cat":"checkTypes","ts":5,"name":"checkCrossProductUnion_DepthLimit","args":{"typeIds":[3]}}`,
			tag:    "checkCrossProductUnion_DepthLimit",
			field:  "args.size",
			reason: schema.ReasonMissingField,
		},
		{
			name:   "missing args",
			record: `{"pid":1,"tid":1,"ph":"B","cat":"bind","ts":5,"name":"bindSourceFile"}`,
			tag:    "bindSourceFile",
			field:  "args",
			reason: schema.ReasonMissingField,
		},
		{
			name:   "args on argument-less variant",
			record: `{"pid":1,"tid":1,"ph":"B","cat":"emit","ts":5,"name":"emit","args":{"path":"x"}}`,
			tag:    "emit",
			field:  "args.path",
			reason: schema.ReasonUnknownField,
		},
		{
			name:   "null value",
			record: `{"pid":1,"tid":1,"ph":"X","cat":"check","ts":5,"dur":1,"name":"checkSourceFile","args":null}`,
			tag:    "checkSourceFile",
			field:  "args",
			reason: schema.ReasonWrongType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `[{"pid":1,"tid":1,"ph":"M","cat":"__metadata","ts":1,"name":"thread_name","args":{"name":"main"}},` + tt.record + `]`
			events, err := Decode([]byte(doc))
			require.Error(t, err)
			assert.Nil(t, events)

			var se *schema.Error
			require.True(t, errors.As(err, &se), "got %T", err)
			assert.Equal(t, 1, se.Index)
			assert.Equal(t, tt.tag, se.Tag)
			assert.Equal(t, tt.field, se.Field)
			assert.Equal(t, tt.reason, se.Reason, se.Error())
		})
	}
}

func TestDecodeRejectsNonArrayDocument(t *testing.T) {
	_, err := Decode([]byte(`{"traceEvents":[]}`))
	var se *schema.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, -1, se.Index)
	assert.Equal(t, schema.ReasonMalformed, se.Reason)
}

func TestDecodeRejectsNonObjectRecord(t *testing.T) {
	_, err := Decode([]byte(`[42]`))
	var se *schema.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.Index)
	assert.Equal(t, schema.ReasonNotObject, se.Reason)
}

func TestCatalogTagsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, v := range Variants() {
		name := v.String()
		require.False(t, seen[name], "duplicate tag %q", name)
		seen[name] = true
		got, ok := LookupVariant(name)
		require.True(t, ok)
		assert.Equal(t, v, got)
	}
	assert.GreaterOrEqual(t, len(seen), 45)
	assert.Len(t, DepthLimitVariants(), 8)
	for _, v := range DepthLimitVariants() {
		assert.True(t, v.IsDepthLimit())
		assert.Equal(t, PhaseCheckTypes, v.Phase())
		assert.True(t, v.Allows(KindInstant))
	}
}

func TestDecodeRecordReturnsNilErrorOnSuccess(t *testing.T) {
	ev, err := DecodeRecord([]byte(`{"pid":2,"tid":3,"ph":"i","cat":"checkTypes","ts":9,"name":"getTypeAtFlowNode_DepthLimit","args":{"flowId":11}}`), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, ev.Index)
	assert.Equal(t, 2, ev.PID)
	assert.Equal(t, 3, ev.TID)
	assert.Equal(t, 11, ev.Args.(*GetTypeAtFlowNodeDepthLimit).FlowID)
}
