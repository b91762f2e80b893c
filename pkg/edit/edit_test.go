package edit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/edit"
)

func TestApply_OffsetsReferToOriginal(t *testing.T) {
	t.Parallel()

	rec := edit.NewRecorder("a.html")
	// Recorded out of order on purpose.
	rec.Replace(10, 3, "xyz")
	rec.Remove(0, 2)
	rec.InsertRight(5, "++")

	out, err := rec.Apply("0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, "234++56789xyzdef", out)
}

func TestApply_InsertSidesAtSamePoint(t *testing.T) {
	t.Parallel()

	rec := edit.NewRecorder("a.html")
	rec.InsertRight(3, "R1")
	rec.InsertLeft(3, "L1")
	rec.InsertRight(3, "R2")
	rec.InsertLeft(3, "L2")

	out, err := rec.Apply("abcdef")
	require.NoError(t, err)
	assert.Equal(t, "abcL1L2R1R2def", out)
}

func TestApply_InsertBeforeReplacedSpan(t *testing.T) {
	t.Parallel()

	rec := edit.NewRecorder("a.html")
	rec.Replace(1, 3, "X")
	rec.InsertRight(1, "<")
	rec.InsertLeft(4, ">")

	out, err := rec.Apply("abcdef")
	require.NoError(t, err)
	assert.Equal(t, "a<X>ef", out)
}

func TestApply_RemoveExactSpan(t *testing.T) {
	t.Parallel()

	src := `<tui-editor new [formControl]="control"></tui-editor>`

	ops := []edit.Operation{{Kind: edit.KindRemove, Offset: 11, Length: 4}}

	out, err := edit.Apply(src, ops)
	require.NoError(t, err)
	assert.Equal(t, `<tui-editor [formControl]="control"></tui-editor>`, out)
}

func TestApply_EndOfText(t *testing.T) {
	t.Parallel()

	rec := edit.NewRecorder("a")
	rec.InsertLeft(3, "!")

	out, err := rec.Apply("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc!", out)
}

func TestApply_OutOfRange(t *testing.T) {
	t.Parallel()

	rec := edit.NewRecorder("a")
	rec.Remove(2, 5)

	_, err := rec.Apply("abc")
	require.ErrorIs(t, err, edit.ErrOutOfRange)
}

func TestApply_NoOperations(t *testing.T) {
	t.Parallel()

	out, err := edit.Apply("unchanged", nil)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", out)
}

func TestRecorder_IgnoresEmptyEdits(t *testing.T) {
	t.Parallel()

	rec := edit.NewRecorder("a")
	rec.InsertLeft(0, "")
	rec.InsertRight(0, "")
	rec.Remove(0, 0)

	assert.True(t, rec.Empty())
	assert.Equal(t, "a", rec.Path())
}

func TestRecorder_OperationsAreCopied(t *testing.T) {
	t.Parallel()

	rec := edit.NewRecorder("a")
	rec.Remove(0, 1)

	ops := rec.Operations()
	ops[0].Offset = 42

	assert.Equal(t, 0, rec.Operations()[0].Offset)
	assert.Equal(t, 1, rec.Len())
}

func TestCheckOverlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ops     []edit.Operation
		wantErr bool
	}{
		{
			name: "disjoint",
			ops: []edit.Operation{
				{Kind: edit.KindRemove, Offset: 0, Length: 2},
				{Kind: edit.KindReplace, Offset: 2, Length: 2, Text: "x"},
			},
		},
		{
			name: "inserts inside span are fine",
			ops: []edit.Operation{
				{Kind: edit.KindRemove, Offset: 0, Length: 5},
				{Kind: edit.KindInsertLeft, Offset: 2, Text: "x"},
			},
		},
		{
			name: "overlap",
			ops: []edit.Operation{
				{Kind: edit.KindReplace, Offset: 3, Length: 4, Text: "x"},
				{Kind: edit.KindRemove, Offset: 0, Length: 4},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := edit.CheckOverlaps(tt.ops)
			if tt.wantErr {
				require.ErrorIs(t, err, edit.ErrOverlap)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "insert-left", edit.KindInsertLeft.String())
	assert.Equal(t, "replace", edit.KindReplace.String())
	assert.Equal(t, "kind(9)", edit.Kind(9).String())
}
