package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracelens/internal/schema"
)

const sampleTypes = `[
  {"id":1,"intrinsicName":"string","flags":["String"]},
  {"id":2,"intrinsicName":"number","flags":["Number"]},
  {"id":3,"flags":["Union"],"unionTypes":[1,2],"display":"string | number",
   "firstDeclaration":{"path":"/p/a.ts","start":{"line":3,"character":5},"end":{"line":3,"character":20}}},
  {"id":4,"symbolName":"Box","flags":["Object"],"typeArguments":[1],"instantiatedType":5,"recursionId":0},
  {"id":5,"symbolName":"Box","flags":["Object"],"instantiatedType":5},
  {"id":6,"flags":["Object"],"isTuple":true,"typeArguments":[1,1,2]}
]`

func TestDecodeCatalog(t *testing.T) {
	c, err := Decode([]byte(sampleTypes))
	require.NoError(t, err)
	require.Equal(t, 6, c.Len())

	union, ok := c.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, []TypeID{1, 2}, union.UnionTypes)
	assert.Equal(t, "string | number", union.Name())
	require.NotNil(t, union.FirstDeclaration)
	assert.Equal(t, "/p/a.ts:3:5-3:20", union.FirstDeclaration.String())

	box, _ := c.Lookup(4)
	assert.Equal(t, "Box", box.Name())
	require.NotNil(t, box.RecursionID)
	assert.Equal(t, 0, *box.RecursionID)
	assert.Equal(t, TypeID(5), box.Ref(RelInstantiatedType))

	self, _ := c.Lookup(5)
	assert.Equal(t, []TypeID{5}, self.Refs(RelInstantiatedType), "self-reference is legal")

	tuple, _ := c.Lookup(6)
	assert.True(t, tuple.IsTuple)
	assert.Equal(t, "#6", tuple.Name())

	pos, ok := c.Position(6)
	require.True(t, ok)
	assert.Equal(t, 5, pos)

	_, ok = c.Lookup(99)
	assert.False(t, ok)
}

func TestDecodeCatalogRejections(t *testing.T) {
	tests := []struct {
		name   string
		record string
		field  string
		reason schema.Reason
	}{
		{"unknown flag", `{"id":7,"flags":["Stringy"]}`, "flags[0]", schema.ReasonConstraint},
		{"missing flags", `{"id":7}`, "flags", schema.ReasonMissingField},
		{"missing id", `{"flags":[]}`, "id", schema.ReasonMissingField},
		{"zero id", `{"id":0,"flags":[]}`, "id", schema.ReasonConstraint},
		{"string id", `{"id":"7","flags":[]}`, "id", schema.ReasonWrongType},
		{"unknown key", `{"id":7,"flags":[],"aliasSymbol":"X"}`, "aliasSymbol", schema.ReasonUnknownField},
		{"false tuple literal", `{"id":7,"flags":[],"isTuple":false}`, "isTuple", schema.ReasonConstraint},
		{"bad union member", `{"id":7,"flags":["Union"],"unionTypes":[1,0]}`, "unionTypes[1]", schema.ReasonConstraint},
		{"bad scalar ref", `{"id":7,"flags":[],"keyofType":-3}`, "keyofType", schema.ReasonConstraint},
		{"location without path", `{"id":7,"flags":[],"referenceLocation":{"start":{"line":1,"character":1}}}`, "referenceLocation.path", schema.ReasonMissingField},
		{"zero line", `{"id":7,"flags":[],"referenceLocation":{"path":"a.ts","start":{"line":0,"character":1}}}`, "referenceLocation.start.line", schema.ReasonConstraint},
		{"null display", `{"id":7,"flags":[],"display":null}`, "display", schema.ReasonWrongType},
		{"non-object record", `"type"`, "", schema.ReasonNotObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `[{"id":1,"flags":["Any"]},` + tt.record + `]`
			c, err := Decode([]byte(doc))
			require.Error(t, err)
			assert.Nil(t, c, "no partial catalog")

			var se *schema.Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, ArtifactName, se.Artifact)
			assert.Equal(t, 1, se.Index)
			assert.Equal(t, tt.field, se.Field)
			assert.Equal(t, tt.reason, se.Reason, se.Error())
		})
	}
}

func TestDecodeCatalogDuplicateID(t *testing.T) {
	_, err := Decode([]byte(`[{"id":1,"flags":[]},{"id":2,"flags":[]},{"id":1,"flags":[]}]`))
	var se *schema.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Index)
	assert.Equal(t, schema.ReasonDuplicateID, se.Reason)
}

func TestDecodeCatalogSentinelID(t *testing.T) {
	c, err := Decode([]byte(`[{"id":-1,"flags":["Any"]},{"id":2,"flags":[],"constraintType":-1}]`))
	require.NoError(t, err)
	sentinel, ok := c.Lookup(SentinelTypeID)
	require.True(t, ok)
	assert.Equal(t, "#-1", sentinel.Name())
}

func TestDecodeEmptyCatalog(t *testing.T) {
	c, err := Decode([]byte(` [] `))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Types())
}

func TestRelationKinds(t *testing.T) {
	require.Len(t, AllRelations(), NumRelations)
	assert.Equal(t, 19, NumRelations)
	lists := 0
	for _, k := range AllRelations() {
		got, err := ParseRelationKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
		if k.IsList() {
			lists++
		}
	}
	assert.Equal(t, 4, lists)

	_, err := ParseRelationKind("baseType")
	assert.Error(t, err)
}

func TestRefsCoverEveryScalarKind(t *testing.T) {
	// setting each scalar relation to a distinct id must surface through Ref
	var rt ResolvedType
	rt.InstantiatedType = 10
	rt.KeyofType = 11
	rt.IndexedAccessObjectType = 12
	rt.IndexedAccessIndexType = 13
	rt.ConditionalCheckType = 14
	rt.ConditionalExtendsType = 15
	rt.ConditionalTrueType = 16
	rt.ConditionalFalseType = 17
	rt.SubstitutionBaseType = 18
	rt.ConstraintType = 19
	rt.ReverseMappedSourceType = 20
	rt.ReverseMappedMappedType = 21
	rt.ReverseMappedConstraintType = 22
	rt.EvolvingArrayElementType = 23
	rt.EvolvingArrayFinalType = 24

	seen := make(map[TypeID]bool)
	for _, k := range AllRelations() {
		if k.IsList() {
			assert.Nil(t, rt.Refs(k))
			continue
		}
		id := rt.Ref(k)
		require.NotEqual(t, NoTypeID, id, k.String())
		assert.False(t, seen[id], "%s shares a field", k)
		seen[id] = true
	}
	assert.Len(t, seen, 15)
}

func TestFlagVocabulary(t *testing.T) {
	assert.True(t, IsKnownFlag("Union"))
	assert.False(t, IsKnownFlag("union"))
	flags := Flags()
	flags[0] = "mutated"
	assert.True(t, IsKnownFlag("Any"))
}
