package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sub(index int) Subject { return Subject{Artifact: "trace", Index: index} }

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(3)
	r := BagReporter{Bag: b}
	ReportInfo(r, TrcUnterminated, sub(-1), "2 begin records never closed").Emit()
	ReportWarning(r, LimRecursiveTypeRelatedTo, sub(9), "depth 100").Emit()
	ReportError(r, LimInstantiateType, sub(12), "depth 100").WithNote(Subject{Artifact: "types", Index: 4}, "type #42").Emit()
	ReportError(r, LimInstantiateType, sub(13), "dropped").Emit()

	require.Equal(t, 3, b.Len())
	assert.Equal(t, 1, b.Dropped())
	assert.True(t, b.HasErrors())
	assert.Equal(t, 1, b.Count(SevWarning))

	b.Sort()
	got := FormatShort(b.Items(), true)
	want := "error LIM2001 trace[12] depth 100\n" +
		"  note types[4] type #42\n" +
		"warning LIM2002 trace[9] depth 100\n" +
		"info TRC4002 trace 2 begin records never closed"
	assert.Equal(t, want, got)
}

func TestHasWarningsCountsErrors(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevInfo, TrcNoCheckSpans, sub(-1), "no spans"))
	assert.False(t, b.HasWarnings())
	b.Add(NewError(LimInstantiateType, sub(3), "depth 100"))
	assert.True(t, b.HasWarnings(), "errors rank above warnings")
}

func TestBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	rb := ReportWarning(BagReporter{Bag: b}, GrfDanglingReference, Subject{Artifact: "types", Index: 1}, "unionTypes -> #99")
	rb.Emit()
	rb.Emit()
	assert.Equal(t, 1, b.Len())

	var nilBuilder *ReportBuilder
	assert.Nil(t, nilBuilder.WithNote(sub(0), "x"))
	nilBuilder.Emit()
}

func TestDedup(t *testing.T) {
	b := NewBag(0)
	d := NewDedupReporter(BagReporter{Bag: b})
	for i := 0; i < 3; i++ {
		d.Report(GrfSentinelReference, SevInfo, Subject{Artifact: "types", Index: 2}, "constraintType -> #-1", nil)
	}
	d.Report(GrfSentinelReference, SevInfo, Subject{Artifact: "types", Index: 3}, "constraintType -> #-1", nil)
	assert.Equal(t, 2, b.Len())

	b.Add(b.Items()[0])
	b.Dedup()
	assert.Equal(t, 2, b.Len())
}

func TestCodeText(t *testing.T) {
	assert.Equal(t, "LIM2007", LimTraceUnionsOrIntersectionsTooLarge.ID())
	assert.Equal(t, "[GRF3001]: Relation points at an unknown type", GrfDanglingReference.String())
	assert.Equal(t, "E0000", Code(9999).ID())
	txt, err := SevWarning.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warning", string(txt))
	sev, err := ParseSeverity("error")
	require.NoError(t, err)
	assert.Equal(t, SevError, sev)
}
