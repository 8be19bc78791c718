// Package splice replaces byte ranges of a buffer in a single ordered pass.
package splice

// Edit replaces the half-open byte range [Start, End) of a buffer with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Len returns the number of bytes the edit replaces.
func (e Edit) Len() int {
	return e.End - e.Start
}

// Builder accumulates edits against one buffer.
type Builder struct {
	Edits []Edit
}

// Replace adds an edit that replaces [start, end) with text.
func (b *Builder) Replace(start, end int, text string) {
	b.Edits = append(b.Edits, Edit{Start: start, End: end, Text: text})
}

// Insert adds an edit that inserts text at offset.
func (b *Builder) Insert(offset int, text string) {
	b.Replace(offset, offset, text)
}

// Build validates the accumulated edits against a buffer of length n and
// returns them in application order.
func (b *Builder) Build(n int) ([]Edit, error) {
	return Prepare(b.Edits, n)
}
