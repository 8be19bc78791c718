package pyfmt_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pysqlfmt/pkg/pyfmt"
)

func TestBuiltin_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trailing whitespace", input: "x = 1   \ny = 2\t\n", want: "x = 1\ny = 2\n"},
		{name: "crlf line endings", input: "x = 1\r\ny = 2\r\n", want: "x = 1\ny = 2\n"},
		{name: "leading blank lines", input: "\n\n\nx = 1\n", want: "x = 1\n"},
		{name: "trailing blank lines", input: "x = 1\n\n\n\n", want: "x = 1\n"},
		{name: "missing final newline", input: "x = 1", want: "x = 1\n"},
		{name: "empty input", input: "", want: ""},
		{name: "whitespace only input", input: "\n\n  \n", want: ""},
		{name: "top level blank runs collapse", input: "x = 1\n\n\n\n\ny = 2\n", want: "x = 1\n\n\ny = 2\n"},
		{
			name:  "nested blank runs collapse",
			input: "def f():\n    a = 1\n\n\n\n    b = 2\n",
			want:  "def f():\n    a = 1\n\n    b = 2\n",
		},
		{
			name:  "blank lines around top level definitions",
			input: "import os\ndef f():\n    pass\nx = 1\n",
			want:  "import os\n\n\ndef f():\n    pass\n\n\nx = 1\n",
		},
		{
			name:  "decorator stays attached",
			input: "import os\n@dec\ndef f():\n    pass\n",
			want:  "import os\n\n\n@dec\ndef f():\n    pass\n",
		},
		{
			name:  "async definition",
			input: "x = 1\nasync def f():\n    pass\n",
			want:  "x = 1\n\n\nasync def f():\n    pass\n",
		},
		{
			name:  "comment block moves with its definition",
			input: "x = 1\n# about f\ndef f():\n    pass\n",
			want:  "x = 1\n\n\n# about f\ndef f():\n    pass\n",
		},
		{
			name:  "comment after a definition body",
			input: "def f():\n    pass\n# done\nx = 1\n",
			want:  "def f():\n    pass\n\n\n# done\nx = 1\n",
		},
		{
			name:  "bracket continuation is not a statement",
			input: "x = [\n1,\n]\ndef f():\n    pass\n",
			want:  "x = [\n1,\n]\n\n\ndef f():\n    pass\n",
		},
		{
			name:  "methods keep their spacing",
			input: "class A:\n    def f(self):\n        pass\n    def g(self):\n        pass\n",
			want:  "class A:\n    def f(self):\n        pass\n    def g(self):\n        pass\n",
		},
		{
			name:  "string contents are untouched",
			input: "query = '''\nselect *   \n\n\n\nfrom t\n'''   \n",
			want:  "query = '''\nselect *   \n\n\n\nfrom t\n'''\n",
		},
		{
			name:  "names that start with keywords",
			input: "x = 1\nclassify = 2\ndefault = 3\n",
			want:  "x = 1\nclassify = 2\ndefault = 3\n",
		},
	}

	formatter, err := pyfmt.New(pyfmt.Options{})
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := formatter.Format(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := formatter.Format(context.Background(), got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "formatting must be idempotent")
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		f, err := pyfmt.New(pyfmt.Options{})
		require.NoError(t, err)
		assert.Equal(t, pyfmt.EngineBuiltin, f.Options().Engine)
		assert.Equal(t, pyfmt.StylePEP8, f.Options().Style)
		assert.Equal(t, pyfmt.DefaultCommand, f.Options().Command)
	})

	t.Run("unknown engine", func(t *testing.T) {
		t.Parallel()
		_, err := pyfmt.New(pyfmt.Options{Engine: "black"})
		require.ErrorIs(t, err, pyfmt.ErrUnknownEngine)
	})

	t.Run("builtin rejects style files", func(t *testing.T) {
		t.Parallel()
		_, err := pyfmt.New(pyfmt.Options{Style: "setup.cfg"})
		require.ErrorIs(t, err, pyfmt.ErrUnsupportedStyle)
	})

	t.Run("yapf accepts style files", func(t *testing.T) {
		t.Parallel()
		_, err := pyfmt.New(pyfmt.Options{Engine: pyfmt.EngineYapf, Style: "setup.cfg"})
		require.NoError(t, err)
	})

	for _, style := range []string{pyfmt.StylePEP8, pyfmt.StyleGoogle, pyfmt.StyleFacebook, pyfmt.StyleYapf} {
		assert.True(t, pyfmt.IsNamedStyle(style), style)
	}
	assert.False(t, pyfmt.IsNamedStyle("chromium"))
}

func TestNoneEngine(t *testing.T) {
	t.Parallel()

	f, err := pyfmt.New(pyfmt.Options{Engine: pyfmt.EngineNone})
	require.NoError(t, err)

	src := "x=1   \n\n\n\n"
	got, err := f.Format(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestFormat_CanceledContext(t *testing.T) {
	t.Parallel()

	f, err := pyfmt.New(pyfmt.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.Format(ctx, "x = 1\n")
	require.ErrorIs(t, err, context.Canceled)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-yapf")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestYapfEngine(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "printf '# %s\\n' \"$1\"\ncat\n")
	f, err := pyfmt.New(pyfmt.Options{Engine: pyfmt.EngineYapf, Style: pyfmt.StyleGoogle, Command: script})
	require.NoError(t, err)

	got, err := f.Format(context.Background(), "x = 1\n")
	require.NoError(t, err)
	assert.Equal(t, "# --style=google\nx = 1\n", got)
}

func TestYapfEngine_Failure(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "echo 'invalid style' >&2\nexit 3\n")
	f, err := pyfmt.New(pyfmt.Options{Engine: pyfmt.EngineYapf, Command: script})
	require.NoError(t, err)

	_, err = f.Format(context.Background(), "x = 1\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid style")
}

func TestYapfEngine_MissingCommand(t *testing.T) {
	t.Parallel()

	f, err := pyfmt.New(pyfmt.Options{
		Engine:  pyfmt.EngineYapf,
		Command: filepath.Join(t.TempDir(), "does-not-exist"),
	})
	require.NoError(t, err)

	_, err = f.Format(context.Background(), "x = 1\n")
	require.Error(t, err)
}

func FuzzBuiltin(f *testing.F) {
	f.Add("def f():\n    pass\nx = 1\n")
	f.Add("q = '''\n  a  \n\n'''\n")
	f.Add("x = (\n\n\n1)\r\n")
	f.Add("@d\n# c\nclass A: pass")

	formatter, err := pyfmt.New(pyfmt.Options{})
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, src string) {
		once, err := formatter.Format(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := formatter.Format(context.Background(), once)
		if err != nil {
			t.Fatal(err)
		}
		if once != twice {
			t.Fatalf("not idempotent:\n%q\n%q", once, twice)
		}
	})
}
