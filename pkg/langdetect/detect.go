// Package langdetect decides whether content is Python source.
//
// It backs two decisions: whether an extensionless file found during
// discovery is a Python script, and whether an unlabeled Markdown code
// fence holds Python. Detection uses go-enry with a few high-signal
// patterns checked first.
package langdetect

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language tags returned by Detect.
const (
	Python = "python"
	SQL    = "sql"
	Shell  = "bash"
	Text   = "text"
)

const enryPython = "Python"

// pythonFenceTags are fence info words treated as Python. PySpark notebooks
// exported to Markdown commonly use pyspark.
var pythonFenceTags = []string{"python", "python3", "py", "py3", "pyspark", "ipython", "ipython3"}

// Detect returns a lowercase language tag for a code snippet, or Text when
// no confident guess exists.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return Text
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if looksLikePython(string(content)) {
		return Python
	}
	if looksLikeSQL(string(content)) {
		return SQL
	}

	candidates := []string{enryPython, "SQL", "Shell", "YAML", "JSON", "Scala", "R"}
	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe && lang != "" {
		return normalize(lang)
	}
	return Text
}

// IsPython reports whether a snippet is detected as Python.
func IsPython(content []byte) bool {
	return Detect(content) == Python
}

// IsPythonScript reports whether a file without a .py extension is a Python
// script, judging by its name and a shebang line.
func IsPythonScript(path string, content []byte) bool {
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return lang == enryPython
	}
	if lang, safe := enry.GetLanguageByFilename(filepath.Base(path)); safe {
		return lang == enryPython
	}
	return false
}

// IsPythonFence reports whether a fenced code block info string names
// Python. Only the first word of info is considered.
func IsPythonFence(info string) bool {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return false
	}
	tag := strings.ToLower(strings.Trim(fields[0], "{}."))
	if slices.Contains(pythonFenceTags, tag) {
		return true
	}
	lang, ok := enry.GetLanguageByAlias(tag)
	return ok && lang == enryPython
}

func looksLikePython(src string) bool {
	switch {
	case strings.Contains(src, "spark.sql("), strings.Contains(src, "from pyspark"):
		return true
	case strings.Contains(src, "def ") && strings.Contains(src, "):"):
		return true
	case strings.Contains(src, "__name__"):
		return true
	case strings.Contains(src, "import ") && !strings.Contains(src, "import ("):
		trimmed := strings.TrimSpace(src)
		return strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ")
	}
	return false
}

func looksLikeSQL(src string) bool {
	upper := strings.ToUpper(strings.TrimSpace(src))
	for _, kw := range []string{"SELECT ", "WITH ", "INSERT ", "UPDATE ", "DELETE ", "CREATE ", "MERGE "} {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

func normalize(lang string) string {
	if lang == "Shell" {
		return Shell
	}
	return strings.ToLower(lang)
}
