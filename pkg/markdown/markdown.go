// Package markdown formats Python code blocks inside Markdown documents.
//
// Fenced blocks labeled python, py, pyspark and similar are located with
// goldmark and their contents rewritten through a caller-supplied format
// function. Everything outside the block contents, including the fences,
// is preserved byte for byte.
package markdown

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/pysqlfmt/internal/logging"
	"github.com/yaklabco/pysqlfmt/pkg/langdetect"
	"github.com/yaklabco/pysqlfmt/pkg/splice"
)

// Markdown flavors.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Extensions lists the file extensions treated as Markdown.
func Extensions() []string {
	return []string{".md", ".markdown"}
}

// FormatFunc formats one block of Python source.
type FormatFunc func(ctx context.Context, src string) (string, error)

// Options controls block discovery.
type Options struct {
	// Flavor selects the Markdown dialect. Defaults to FlavorGFM.
	Flavor string

	// DetectUnlabeled also formats fences without an info string whose
	// content is detected as Python.
	DetectUnlabeled bool
}

// Block is a fenced Python code block.
type Block struct {
	// Start and End delimit the block content, fences excluded.
	Start int
	End   int

	// Line is the 1-based line of the first content line.
	Line int

	// Info is the fence info string.
	Info string
}

// FindBlocks returns the Python code blocks of src in document order.
// Blocks whose content lines are not contiguous in the source, such as
// fences nested in list items or block quotes, are not returned.
func FindBlocks(src string, opts Options) []Block {
	source := []byte(src)
	doc := newGoldmark(opts.Flavor).Parser().Parse(text.NewReader(source), parser.WithContext(parser.NewContext()))

	var blocks []Block
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		start, end, ok := contentSpan(source, fence.Lines())
		if !ok {
			return ast.WalkSkipChildren, nil
		}

		info := ""
		if fence.Info != nil {
			info = string(fence.Info.Value(source))
		}
		if !isPythonBlock(info, src[start:end], opts) {
			return ast.WalkSkipChildren, nil
		}

		blocks = append(blocks, Block{
			Start: start,
			End:   end,
			Line:  strings.Count(src[:start], "\n") + 1,
			Info:  info,
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// Format rewrites every Python block of src with format and returns the
// new document and the number of blocks visited. An error from any block
// fails the whole document.
func Format(ctx context.Context, src string, format FormatFunc, opts Options) (string, int, error) {
	blocks := FindBlocks(src, opts)
	logging.FromContext(ctx).Debug("markdown code blocks", logging.FieldBlocks, len(blocks))

	var b splice.Builder
	for _, block := range blocks {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		content := src[block.Start:block.End]
		if strings.TrimSpace(content) == "" {
			continue
		}

		out, err := format(ctx, content)
		if err != nil {
			return "", 0, fmt.Errorf("code block at line %d: %w", block.Line, err)
		}
		if !strings.HasSuffix(content, "\n") {
			out = strings.TrimSuffix(out, "\n")
		}
		if out != content {
			b.Replace(block.Start, block.End, out)
		}
	}

	edits, err := b.Build(len(src))
	if err != nil {
		return "", 0, fmt.Errorf("splice code blocks: %w", err)
	}
	return splice.Apply(src, edits), len(blocks), nil
}

func isPythonBlock(info, content string, opts Options) bool {
	if strings.TrimSpace(info) == "" {
		return opts.DetectUnlabeled && langdetect.IsPython([]byte(content))
	}
	return langdetect.IsPythonFence(info)
}

// contentSpan returns the byte range covered by lines when every line is
// copied verbatim from the source.
func contentSpan(source []byte, lines *text.Segments) (int, int, bool) {
	if lines.Len() == 0 {
		return 0, 0, false
	}
	start := lines.At(0).Start
	prev := start
	for i := range lines.Len() {
		seg := lines.At(i)
		if seg.Padding != 0 || seg.Start != prev {
			return 0, 0, false
		}
		if seg.Start > 0 && source[seg.Start-1] != '\n' {
			return 0, 0, false
		}
		prev = seg.Stop
	}
	return start, prev, true
}

//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmark(flavor string) goldmark.Markdown {
	if flavor == FlavorCommonMark {
		return goldmark.New()
	}
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
}
