package splice

import "strings"

// Apply applies prepared edits to src. The read cursor is local to the call:
// each step copies src[cursor:edit.Start] verbatim, writes the replacement
// and moves the cursor to edit.End, which never regresses for prepared edits.
func Apply(src string, edits []Edit) string {
	if len(edits) == 0 {
		return src
	}

	size := len(src)
	for _, e := range edits {
		size += len(e.Text) - e.Len()
	}

	var out strings.Builder
	out.Grow(max(size, 0))

	cursor := 0
	for _, e := range edits {
		out.WriteString(src[cursor:e.Start])
		out.WriteString(e.Text)
		cursor = e.End
	}
	out.WriteString(src[cursor:])

	return out.String()
}

// ApplyChecked prepares edits against src and applies them.
func ApplyChecked(src string, edits []Edit) (string, error) {
	prepared, err := Prepare(edits, len(src))
	if err != nil {
		return "", err
	}
	return Apply(src, prepared), nil
}
