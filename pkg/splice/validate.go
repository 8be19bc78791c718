package splice

import (
	"fmt"
	"slices"
)

// RangeError describes an edit whose range does not fit the buffer.
type RangeError struct {
	Edit   Edit
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.Start, e.Edit.End, e.Reason)
}

// OverlapError describes two edits that touch the same bytes.
type OverlapError struct {
	First  Edit
	Second Edit
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.First.Start, e.First.End, e.Second.Start, e.Second.End)
}

// Validate checks that every edit lies within a buffer of length n.
func Validate(edits []Edit, n int) error {
	for _, e := range edits {
		switch {
		case e.Start < 0:
			return &RangeError{Edit: e, Reason: "start is negative"}
		case e.End < e.Start:
			return &RangeError{Edit: e, Reason: "end is before start"}
		case e.End > n:
			return &RangeError{Edit: e, Reason: fmt.Sprintf("end %d exceeds length %d", e.End, n)}
		}
	}
	return nil
}

// Sort orders edits by start, then end.
func Sort(edits []Edit) {
	slices.SortStableFunc(edits, func(a, b Edit) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})
}

// CheckOverlaps returns an OverlapError for the first pair of sorted edits
// that overlap. Two insertions at the same offset also count as overlapping
// because their order would be ambiguous.
func CheckOverlaps(edits []Edit) error {
	for i := 1; i < len(edits); i++ {
		prev, curr := edits[i-1], edits[i]
		if curr.Start < prev.End || (curr.Start == prev.Start && prev.Len() == 0 && curr.Len() == 0) {
			return &OverlapError{First: prev, Second: curr}
		}
	}
	return nil
}

// Prepare validates edits against a buffer of length n and returns a sorted
// copy free of overlaps.
func Prepare(edits []Edit, n int) ([]Edit, error) {
	if len(edits) == 0 {
		return nil, nil
	}
	if err := Validate(edits, n); err != nil {
		return nil, err
	}

	sorted := slices.Clone(edits)
	Sort(sorted)
	if err := CheckOverlaps(sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}
