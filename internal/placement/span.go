package placement

import (
	"fmt"
	"math"
)

// Span is the closed range of rack units [Start, End] an item occupies.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewSpan returns the span of an item of size RU starting at position. End
// saturates at math.MaxInt instead of wrapping.
func NewSpan(position, size int) Span {
	if size > 1 && position > math.MaxInt-(size-1) {
		return Span{Start: position, End: math.MaxInt}
	}
	return Span{Start: position, End: position + size - 1}
}

// Size is the number of RUs in the span.
func (s Span) Size() int { return s.End - s.Start + 1 }

// Overlaps reports whether the two spans share at least one RU.
func (s Span) Overlaps(o Span) bool {
	return s.Start <= o.End && o.Start <= s.End
}

// Intersect returns the RUs shared by both spans. The result is only
// meaningful when Overlaps is true.
func (s Span) Intersect(o Span) Span {
	return Span{Start: max(s.Start, o.Start), End: min(s.End, o.End)}
}

func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("RU %d", s.Start)
	}
	return fmt.Sprintf("RU %d-%d", s.Start, s.End)
}
