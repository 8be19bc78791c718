package formatter_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pysqlfmt/pkg/formatter"
	"github.com/yaklabco/pysqlfmt/pkg/pyfmt"
	"github.com/yaklabco/pysqlfmt/pkg/querylit"
	"github.com/yaklabco/pysqlfmt/pkg/sqlfmt"
)

type codeFunc func(ctx context.Context, src string) (string, error)

func (f codeFunc) Format(ctx context.Context, src string) (string, error) { return f(ctx, src) }

type queryFunc func(query string) (string, error)

func (f queryFunc) Format(query string) (string, error) { return f(query) }

func TestFormatScript_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		opts   formatter.Options
		want   string
	}{
		{
			name:   "tracked variable is promoted",
			script: "query = 'select * from t0'\nresult = run(query)\n",
			opts:   formatter.Options{Callees: []string{"run"}},
			want:   "query = '''\nSELECT\n    *\nFROM\n    t0\n'''\nresult = run(query)\n",
		},
		{
			name:   "inline argument is promoted",
			script: "run('select * from t0')",
			opts:   formatter.Options{Callees: []string{"run"}},
			want:   "run('''\nSELECT\n    *\nFROM\n    t0\n''')\n",
		},
		{
			name:   "query inside a function",
			script: "def load(spark):\n    df = spark.sql('select a, b from t where a = 1')\n    return df\n",
			want: "def load(spark):\n    df = spark.sql('''\n    SELECT\n        a,\n        b\n    FROM\n        t\n" +
				"    WHERE\n        a = 1\n    ''')\n    return df\n",
		},
		{
			name: "code and query are both normalized",
			script: "import os   \n\n\n\n\nquery = \"\"\"\n        select * from t0\n" +
				"            left join t1 on t0.id = t1.id\n\"\"\"\ndef run():\n    return spark.sql(query)\n",
			want: "import os\n\n\nquery = \"\"\"\nSELECT\n    *\nFROM\n    t0\n    LEFT JOIN t1 ON t0.id = t1.id\n\"\"\"\n" +
				"\n\ndef run():\n    return spark.sql(query)\n",
		},
		{
			name:   "escaped quotes inside a query",
			script: `df = spark.sql('select * from t where a = \'x\'')` + "\n",
			want:   "df = spark.sql('''\nSELECT\n    *\nFROM\n    t\nWHERE\n    a = " + `\'x\'` + "\n''')\n",
		},
		{
			name:   "subscripts and escaped newlines",
			script: `spark.sql("select m['k'], a[0]\nfrom t")` + "\n",
			want:   "spark.sql('''\nSELECT\n    m['k'],\n    a[0]\nFROM\n    t\n''')\n",
		},
		{
			name:   "lowercase keyword style",
			script: "spark.sql('select 1')\n",
			opts:   formatter.Options{SQLStyle: "{keywordCase: lower}"},
			want:   "spark.sql('''\nselect\n    1\n''')\n",
		},
		{
			name:   "custom query names",
			script: "stmt = 'select 1'\n",
			opts:   formatter.Options{QueryNames: []string{"stmt"}},
			want:   "stmt = '''\nSELECT\n    1\n'''\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			got, err := formatter.FormatScript(ctx, tt.script, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := formatter.FormatScript(ctx, got, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, got, again, "formatting must be idempotent")
		})
	}
}

func TestFormat_PassthroughEqualsCodeFormatter(t *testing.T) {
	t.Parallel()

	script := "import os\ndef main():\n    print('select * from t0')   \n\n\n\n\nmain()\n"

	code, err := pyfmt.New(pyfmt.Options{})
	require.NoError(t, err)
	want, err := code.Format(context.Background(), script)
	require.NoError(t, err)

	got, err := formatter.FormatScript(context.Background(), script, formatter.Options{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFormat_RunsCodeFormatterTwice(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	code := codeFunc(func(_ context.Context, src string) (string, error) {
		calls.Add(1)
		return src, nil
	})
	query := queryFunc(func(q string) (string, error) { return strings.ToUpper(q), nil })

	f := formatter.NewWith(code, query, querylit.ScanOptions{})
	got, err := f.Format(context.Background(), "query = 'select 1'\n")
	require.NoError(t, err)
	assert.Equal(t, "query = 'SELECT 1'\n", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFormat_Errors(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	identity := codeFunc(func(_ context.Context, src string) (string, error) { return src, nil })
	upper := queryFunc(func(q string) (string, error) { return strings.ToUpper(q), nil })

	tests := []struct {
		name    string
		code    formatter.CodeFormatter
		query   formatter.QueryFormatter
		script  string
		wantErr []error
	}{
		{
			name: "code formatter failure",
			code: codeFunc(func(context.Context, string) (string, error) {
				return "", errBoom
			}),
			query:   upper,
			script:  "x = 1\n",
			wantErr: []error{formatter.ErrCodeFormatter, errBoom},
		},
		{
			name: "query formatter failure",
			code: identity,
			query: queryFunc(func(string) (string, error) {
				return "", errBoom
			}),
			script:  "query = 'select 1'\n",
			wantErr: []error{formatter.ErrQueryFormatter, errBoom},
		},
		{
			name:    "unresolved identifier",
			code:    identity,
			query:   upper,
			script:  "spark.sql(stmt)\n",
			wantErr: []error{querylit.ErrNoMatchFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := formatter.NewWith(tt.code, tt.query, querylit.ScanOptions{})
			got, err := f.Format(context.Background(), tt.script)
			for _, want := range tt.wantErr {
				require.ErrorIs(t, err, want)
			}
			assert.Empty(t, got)
		})
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := formatter.New(formatter.Options{SQLStyle: 42})
	require.ErrorIs(t, err, sqlfmt.ErrUnsupportedConfigType)

	_, err = formatter.New(formatter.Options{SQLStyle: "{keywordCase: shouting}"})
	require.ErrorIs(t, err, sqlfmt.ErrInvalidStyle)

	_, err = formatter.New(formatter.Options{PythonEngine: "black"})
	require.ErrorIs(t, err, pyfmt.ErrUnknownEngine)

	_, err = formatter.FormatScript(context.Background(), "x = 1\n", formatter.Options{SQLStyle: []string{"x"}})
	require.ErrorIs(t, err, sqlfmt.ErrUnsupportedConfigType)
}

func TestFormatFile(t *testing.T) {
	t.Parallel()

	const (
		input = "query = 'select 1'\n"
		want  = "query = '''\nSELECT\n    1\n'''\n"
	)

	t.Run("to writer", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "job.py")
		require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

		var buf bytes.Buffer
		require.NoError(t, formatter.FormatFile(context.Background(), path, formatter.Options{}, false, &buf))
		assert.Equal(t, want, buf.String())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, input, string(content), "file must be untouched")
	})

	t.Run("in place", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "job.py")
		require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

		var buf bytes.Buffer
		require.NoError(t, formatter.FormatFile(context.Background(), path, formatter.Options{}, true, &buf))
		assert.Empty(t, buf.String())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, string(content))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		err := formatter.FormatFile(context.Background(), filepath.Join(t.TempDir(), "nope.py"),
			formatter.Options{}, false, &bytes.Buffer{})
		require.Error(t, err)
	})
}
