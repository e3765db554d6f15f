package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int `json:"x" validate:"gte=0"`
	Y int `json:"y,omitempty" validate:"lte=10"`
}

type shapeDoc struct {
	Name   string  `json:"name" validate:"required"`
	Mode   string  `json:"mode,omitempty" validate:"oneof=fast slow"`
	Origin point   `json:"origin"`
	Extra  *point  `json:"extra"`
	Path   []point `json:"path,omitempty"`
	Tags   []int   `json:"tags,omitempty" validate:"dive,typeid"`
}

func decodeDoc(t *testing.T, src string) (*shapeDoc, *FieldError) {
	t.Helper()
	var d shapeDoc
	err := DecodeStrict([]byte(src), &d, "")
	if err == nil {
		return &d, nil
	}
	fe, ok := err.(*FieldError)
	require.True(t, ok, "got %T", err)
	return nil, fe
}

func TestDecodeStrictAcceptsClosedShape(t *testing.T) {
	d, fe := decodeDoc(t, `{"name":"a","origin":{"x":1},"extra":{"x":2,"y":3},"path":[{"x":4},{"x":5,"y":6}],"tags":[1,-1]}`)
	require.Nil(t, fe)
	assert.Equal(t, "a", d.Name)
	assert.Equal(t, 1, d.Origin.X)
	require.NotNil(t, d.Extra)
	assert.Equal(t, 3, d.Extra.Y)
	require.Len(t, d.Path, 2)
	assert.Equal(t, 6, d.Path[1].Y)
	assert.Equal(t, []int{1, -1}, d.Tags)
}

func TestDecodeStrictErrors(t *testing.T) {
	tests := []struct {
		src    string
		field  string
		reason Reason
	}{
		{`{"origin":{"x":1}}`, "name", ReasonMissingField},
		{`{"name":"a","origin":{"x":1},"zzz":1,"aaa":2}`, "aaa", ReasonUnknownField},
		{`{"name":"a","origin":{"x":1,"z":0}}`, "origin.z", ReasonUnknownField},
		{`{"name":"a","origin":{}}`, "origin.x", ReasonMissingField},
		{`{"name":"a","origin":{"x":-1}}`, "origin.x", ReasonConstraint},
		{`{"name":"a","origin":{"x":1,"y":11}}`, "origin.y", ReasonConstraint},
		{`{"name":"a","origin":[]}`, "origin", ReasonNotObject},
		{`{"name":"a","origin":{"x":"1"}}`, "origin.x", ReasonWrongType},
		{`{"name":"a","mode":"medium","origin":{"x":1}}`, "mode", ReasonConstraint},
		{`{"name":"","origin":{"x":1}}`, "name", ReasonConstraint},
		{`{"name":"a","origin":{"x":1},"path":[{"x":1},{"y":1}]}`, "path[1].x", ReasonMissingField},
		{`{"name":"a","origin":{"x":1},"path":{"x":1}}`, "path", ReasonWrongType},
		{`{"name":"a","origin":{"x":1},"tags":[3,0]}`, "tags[1]", ReasonConstraint},
		{`{"name":"a","origin":{"x":1},"extra":null}`, "extra", ReasonWrongType},
		{`[1]`, "", ReasonNotObject},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, fe := decodeDoc(t, tt.src)
			require.NotNil(t, fe)
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, tt.reason, fe.Reason, fe.Error())
		})
	}
}

func TestReadArray(t *testing.T) {
	items, err := ReadArray([]byte("\n[ {}, 1, \"x\" ]\n"))
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = ReadArray([]byte(`{"a":1}`))
	require.Error(t, err)
	assert.Equal(t, ReasonMalformed, err.(*FieldError).Reason)

	_, err = ReadArray([]byte(`[1,`))
	require.Error(t, err)
	assert.Equal(t, ReasonMalformed, err.(*FieldError).Reason)
}

func TestErrorMessage(t *testing.T) {
	err := At(&FieldError{Field: "args.typeId", Reason: ReasonConstraint, Detail: `failed "typeid" on value 0`}, "trace", 7, "instantiateType_DepthLimit")
	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "trace[7] (instantiateType_DepthLimit) args.typeId: constraint"), msg)

	whole := At(assert.AnError, "types", -1, "")
	assert.Equal(t, ReasonConstraint, whole.Reason)
	assert.Equal(t, "types: constraint: "+assert.AnError.Error(), whole.Error())
}
