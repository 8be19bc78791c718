package udiff_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pysqlfmt/pkg/udiff"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		before  string
		after   string
		want    string
		added   int
		removed int
	}{
		{
			name:    "single line change",
			before:  "a\nb\nc\n",
			after:   "a\nB\nc\n",
			want:    "--- a/job.py\n+++ b/job.py\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n",
			added:   1,
			removed: 1,
		},
		{
			name:   "insert into empty file",
			before: "",
			after:  "x = 1\n",
			want:   "--- a/job.py\n+++ b/job.py\n@@ -0,0 +1,1 @@\n+x = 1\n",
			added:  1,
		},
		{
			name:    "missing final newline",
			before:  "x = 1",
			after:   "x = 1\n",
			want:    "--- a/job.py\n+++ b/job.py\n@@ -1,1 +1,1 @@\n-x = 1\n\\ No newline at end of file\n+x = 1\n",
			added:   1,
			removed: 1,
		},
		{
			name:    "query promoted to block",
			before:  "import os\nquery = 'select 1'\nrun(query)\n",
			after:   "import os\nquery = '''\nSELECT\n    1\n'''\nrun(query)\n",
			want:    "--- a/job.py\n+++ b/job.py\n@@ -1,3 +1,6 @@\n import os\n-query = 'select 1'\n+query = '''\n+SELECT\n+    1\n+'''\n run(query)\n",
			added:   4,
			removed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := udiff.Compute("job.py", tt.before, tt.after)
			require.NotNil(t, d)
			assert.False(t, d.Empty())
			assert.Equal(t, tt.want, d.String())
			assert.Equal(t, tt.added, d.Added)
			assert.Equal(t, tt.removed, d.Removed)
		})
	}
}

func TestCompute_Equal(t *testing.T) {
	t.Parallel()

	d := udiff.Compute("job.py", "x = 1\n", "x = 1\n")
	assert.Nil(t, d)
	assert.True(t, d.Empty())
	assert.Empty(t, d.String())
}

func numbered(n int, change map[int]string) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if s, ok := change[i]; ok {
			b.WriteString(s)
		} else {
			fmt.Fprintf(&b, "line %d", i)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func TestCompute_Hunks(t *testing.T) {
	t.Parallel()

	before := numbered(30, nil)

	t.Run("distant changes split", func(t *testing.T) {
		t.Parallel()

		d := udiff.Compute("f", before, numbered(30, map[int]string{2: "two", 20: "twenty"}))
		require.Len(t, d.Hunks, 2)

		assert.Equal(t, 1, d.Hunks[0].OldStart)
		assert.Equal(t, 5, d.Hunks[0].OldLines)
		assert.Equal(t, 17, d.Hunks[1].OldStart)
		assert.Equal(t, 7, d.Hunks[1].OldLines)
		assert.Equal(t, 7, d.Hunks[1].NewLines)
	})

	t.Run("close changes merge", func(t *testing.T) {
		t.Parallel()

		d := udiff.Compute("f", before, numbered(30, map[int]string{10: "ten", 16: "sixteen"}))
		require.Len(t, d.Hunks, 1)
		assert.Equal(t, 7, d.Hunks[0].OldStart)
		assert.Equal(t, 13, d.Hunks[0].OldLines)
	})

	t.Run("zero context", func(t *testing.T) {
		t.Parallel()

		d := udiff.ComputeContext("f", before, numbered(30, map[int]string{10: "ten"}), 0)
		require.Len(t, d.Hunks, 1)
		assert.Equal(t, "--- a/f\n+++ b/f\n@@ -10,1 +10,1 @@\n-line 10\n+ten\n", d.String())
	})
}

func TestWriteTo(t *testing.T) {
	t.Parallel()

	d := udiff.Compute("/abs/job.py", "a\n", "b\n")
	var b strings.Builder
	n, err := d.WriteTo(&b)
	require.NoError(t, err)
	assert.Equal(t, int64(b.Len()), n)
	assert.True(t, strings.HasPrefix(b.String(), "--- a/abs/job.py\n+++ b/abs/job.py\n"))
}

func FuzzCompute(f *testing.F) {
	f.Add("a\nb\n", "a\nc\n")
	f.Add("", "x")
	f.Add("query = 'select 1'\n", "query = '''\nSELECT\n    1\n'''\n")

	f.Fuzz(func(t *testing.T, before, after string) {
		d := udiff.Compute("f", before, after)
		if before == after {
			if d != nil {
				t.Fatal("equal inputs produced a diff")
			}
			return
		}

		// Each hunk's old and new sides are contiguous runs of the inputs.
		for _, h := range d.Hunks {
			var oldText, newText strings.Builder
			for _, l := range h.Lines {
				if l.Op != udiff.Insert {
					oldText.WriteString(l.Text)
				}
				if l.Op != udiff.Delete {
					newText.WriteString(l.Text)
				}
			}
			if !strings.Contains(before, oldText.String()) || !strings.Contains(after, newText.String()) {
				t.Fatalf("hunk does not match inputs:\n%s", d)
			}
		}
	})
}
