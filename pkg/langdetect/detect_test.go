package langdetect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/pysqlfmt/pkg/langdetect"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "empty", content: "", want: langdetect.Text},
		{name: "whitespace", content: " \n\t", want: langdetect.Text},
		{name: "python shebang", content: "#!/usr/bin/env python3\nprint('hello')", want: langdetect.Python},
		{name: "shell shebang", content: "#!/bin/sh\necho hello", want: langdetect.Shell},
		{name: "function definition", content: "def foo():\n    pass\n", want: langdetect.Python},
		{name: "main guard", content: "if __name__ == '__main__':\n    main()", want: langdetect.Python},
		{name: "imports", content: "from pyspark.sql import SparkSession\n", want: langdetect.Python},
		{name: "spark call", content: "df = spark.sql('select 1')", want: langdetect.Python},
		{name: "sql", content: "SELECT * FROM t0", want: langdetect.SQL},
		{name: "lowercase sql", content: "with a as (select 1) select * from a", want: langdetect.SQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, langdetect.Detect([]byte(tt.content)))
		})
	}
}

func TestIsPython(t *testing.T) {
	t.Parallel()

	assert.True(t, langdetect.IsPython([]byte("import os\nprint(os.getcwd())\n")))
	assert.False(t, langdetect.IsPython([]byte("SELECT 1")))
	assert.False(t, langdetect.IsPython(nil))
}

func TestIsPythonScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		content string
		want    bool
	}{
		{name: "python shebang", path: "bin/etl", content: "#!/usr/bin/env python\nimport sys\n", want: true},
		{name: "versioned shebang", path: "run", content: "#!/usr/bin/python3\n", want: true},
		{name: "shell shebang", path: "bin/deploy", content: "#!/bin/bash\necho hi\n", want: false},
		{name: "no shebang", path: "notes", content: "hello\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, langdetect.IsPythonScript(tt.path, []byte(tt.content)))
		})
	}
}

func TestIsPythonFence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		info string
		want bool
	}{
		{"python", true},
		{"Python", true},
		{"py", true},
		{"pyspark", true},
		{"python3 title=\"job.py\"", true},
		{"{.python}", true},
		{"sql", false},
		{"go", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.info, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, langdetect.IsPythonFence(tt.info))
		})
	}
}

func BenchmarkDetect(b *testing.B) {
	code := []byte("def load(spark):\n    return spark.sql('select 1')\n")
	for range b.N {
		langdetect.Detect(code)
	}
}
