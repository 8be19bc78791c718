package splice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pysqlfmt/pkg/splice"
)

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		edits []splice.Edit
		want  string
	}{
		{name: "no edits", src: "spark.sql(q)", want: "spark.sql(q)"},
		{
			name:  "replace payload",
			src:   "run('select 1')",
			edits: []splice.Edit{{Start: 5, End: 13, Text: "SELECT 1"}},
			want:  "run('SELECT 1')",
		},
		{
			name:  "widen quotes",
			src:   "run('a')",
			edits: []splice.Edit{{Start: 4, End: 7, Text: "'''\nA\n'''"}},
			want:  "run('''\nA\n''')",
		},
		{
			name: "several edits keep text between them",
			src:  "a = 'x'\nb = 'y'\n",
			edits: []splice.Edit{
				{Start: 5, End: 6, Text: "X"},
				{Start: 13, End: 14, Text: "Y"},
			},
			want: "a = 'X'\nb = 'Y'\n",
		},
		{
			name: "adjacent edits",
			src:  "abcdef",
			edits: []splice.Edit{
				{Start: 0, End: 2, Text: "XX"},
				{Start: 2, End: 4, Text: "YY"},
				{Start: 4, End: 6, Text: "ZZ"},
			},
			want: "XXYYZZ",
		},
		{
			name:  "insert at end",
			src:   "abc",
			edits: []splice.Edit{{Start: 3, End: 3, Text: "d"}},
			want:  "abcd",
		},
		{
			name:  "delete everything",
			src:   "abc",
			edits: []splice.Edit{{Start: 0, End: 3}},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, splice.Apply(tt.src, tt.edits))
		})
	}
}

func TestApplyChecked(t *testing.T) {
	t.Parallel()

	got, err := splice.ApplyChecked("a b c", []splice.Edit{
		{Start: 4, End: 5, Text: "C"},
		{Start: 0, End: 1, Text: "A"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A b C", got)

	_, err = splice.ApplyChecked("abc", []splice.Edit{
		{Start: 0, End: 2, Text: "x"},
		{Start: 1, End: 3, Text: "y"},
	})
	var overlap *splice.OverlapError
	require.ErrorAs(t, err, &overlap)
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	var b splice.Builder
	b.Replace(4, 5, "'''")
	b.Insert(0, "# header\n")

	edits, err := b.Build(10)
	require.NoError(t, err)
	require.Len(t, edits, 2)
	assert.Equal(t, 0, edits[0].Start)
	assert.Equal(t, 4, edits[1].Start)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edits   []splice.Edit
		n       int
		wantErr string
	}{
		{name: "empty", n: 10},
		{name: "valid", edits: []splice.Edit{{Start: 0, End: 5}, {Start: 5, End: 10}}, n: 10},
		{name: "insertion at end", edits: []splice.Edit{{Start: 10, End: 10}}, n: 10},
		{name: "negative start", edits: []splice.Edit{{Start: -1, End: 2}}, n: 10, wantErr: "start is negative"},
		{name: "end before start", edits: []splice.Edit{{Start: 5, End: 3}}, n: 10, wantErr: "end is before start"},
		{name: "past end", edits: []splice.Edit{{Start: 5, End: 15}}, n: 10, wantErr: "exceeds length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := splice.Validate(tt.edits, tt.n)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var rangeErr *splice.RangeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		edits    []splice.Edit
		want     []splice.Edit
		overlaps bool
	}{
		{name: "nil", edits: nil, want: nil},
		{
			name:  "sorts by start then end",
			edits: []splice.Edit{{Start: 6, End: 8}, {Start: 0, End: 2}, {Start: 3, End: 3}},
			want:  []splice.Edit{{Start: 0, End: 2}, {Start: 3, End: 3}, {Start: 6, End: 8}},
		},
		{
			name:     "overlapping ranges",
			edits:    []splice.Edit{{Start: 0, End: 5}, {Start: 4, End: 6}},
			overlaps: true,
		},
		{
			name:     "two insertions at one offset",
			edits:    []splice.Edit{{Start: 2, End: 2, Text: "a"}, {Start: 2, End: 2, Text: "b"}},
			overlaps: true,
		},
		{
			name:  "insertion before replacement at same offset",
			edits: []splice.Edit{{Start: 2, End: 4}, {Start: 2, End: 2, Text: "a"}},
			want:  []splice.Edit{{Start: 2, End: 2, Text: "a"}, {Start: 2, End: 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := splice.Prepare(tt.edits, 10)
			if tt.overlaps {
				var overlap *splice.OverlapError
				require.ErrorAs(t, err, &overlap)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrepare_DoesNotReorderInput(t *testing.T) {
	t.Parallel()

	edits := []splice.Edit{{Start: 5, End: 6}, {Start: 0, End: 1}}
	_, err := splice.Prepare(edits, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, edits[0].Start)
}
