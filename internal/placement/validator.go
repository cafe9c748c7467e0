package placement

import (
	"racksum-backend/internal/apperr"
)

// Kind distinguishes the two things that can occupy rack space.
type Kind string

const (
	KindDevice   Kind = "device"
	KindProvider Kind = "provider"
)

// Occupant is an item already holding space in a rack.
type Occupant struct {
	Kind     Kind
	ID       int64
	Name     string
	Position int
	Size     int
}

// Span returns the RUs held by the occupant.
func (o Occupant) Span() Span { return NewSpan(o.Position, o.Size) }

// Candidate is an item that wants to occupy rack space. ID is set when an
// existing placement or provider is being moved, so it does not collide with
// its own current span.
type Candidate struct {
	Kind     Kind
	ID       int64
	Position int
	Size     int
}

func (c Candidate) isSelf(o Occupant) bool {
	return c.ID != 0 && c.Kind == o.Kind && c.ID == o.ID
}

// Validate decides whether c may be placed into a rack of the given height
// that already holds occupants. It returns nil on success, or an *apperr.Error
// of kind ValidationError, OutOfBounds or PositionConflict. Devices and
// providers are checked against each other alike.
func Validate(height int, occupants []Occupant, c Candidate) error {
	if c.Size < 1 {
		return apperr.Validation("ru_size must be at least 1 to occupy rack space, got %d", c.Size)
	}
	if c.Position < 1 {
		return apperr.Validation("position must be at least 1, got %d", c.Position)
	}

	span := NewSpan(c.Position, c.Size)
	if c.Position > height || c.Size > height-c.Position+1 {
		return apperr.OutOfBounds(span.Start, span.End,
			"%s exceeds rack height of %dU", span, height)
	}

	for _, o := range occupants {
		if o.Size < 1 || c.isSelf(o) {
			continue
		}
		if taken := o.Span(); span.Overlaps(taken) {
			clash := span.Intersect(taken)
			return apperr.PositionConflict(clash.Start, clash.End,
				"%s conflicts with %s %q at %s", span, o.Kind, o.Name, taken)
		}
	}
	return nil
}

// Fits is Validate reduced to a boolean.
func Fits(height int, occupants []Occupant, c Candidate) bool {
	return Validate(height, occupants, c) == nil
}

// ValidateProviderRule checks the racking rule for providers: a zero-RU
// provider floats and must not name a rack or position, a racked provider
// names both. A sized provider with neither set is valid and unracked.
func ValidateProviderRule(ruSize int, rackID *int64, position *int) error {
	if ruSize < 0 {
		return apperr.Validation("ru_size must not be negative, got %d", ruSize)
	}
	if ruSize == 0 {
		if rackID != nil || position != nil {
			return apperr.InvalidPlacementRule("a provider with ru_size 0 cannot be assigned a rack or position")
		}
		return nil
	}
	if (rackID == nil) != (position == nil) {
		return apperr.InvalidPlacementRule("rack and position must be set together")
	}
	if position != nil && *position < 1 {
		return apperr.InvalidPlacementRule("position must be at least 1, got %d", *position)
	}
	return nil
}

// FreeRanges lists the maximal runs of unoccupied RUs in a rack, bottom up.
func FreeRanges(height int, occupants []Occupant) []Span {
	taken := make([]bool, height+2)
	for _, o := range occupants {
		if o.Size < 1 {
			continue
		}
		s := o.Span()
		for ru := max(s.Start, 1); ru <= min(s.End, height); ru++ {
			taken[ru] = true
		}
	}

	var free []Span
	start := 0
	for ru := 1; ru <= height+1; ru++ {
		switch {
		case ru <= height && !taken[ru] && start == 0:
			start = ru
		case (ru > height || taken[ru]) && start != 0:
			free = append(free, Span{Start: start, End: ru - 1})
			start = 0
		}
	}
	return free
}
