package placement

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racksum-backend/internal/apperr"
)

func ptr[T any](v T) *T { return &v }

func TestValidate(t *testing.T) {
	serverA := Occupant{Kind: KindDevice, ID: 1, Name: "A", Position: 1, Size: 2}
	pdu := Occupant{Kind: KindProvider, ID: 7, Name: "PDU-1", Position: 10, Size: 1}

	testCases := []struct {
		name      string
		height    int
		occupants []Occupant
		candidate Candidate
		wantKind  apperr.Kind
		wantStart int
		wantEnd   int
	}{
		{
			name:      "Empty rack accepts device at bottom",
			height:    42,
			candidate: Candidate{Kind: KindDevice, Position: 1, Size: 2},
		},
		{
			name:      "Overlapping start conflicts",
			height:    42,
			occupants: []Occupant{serverA},
			candidate: Candidate{Kind: KindDevice, Position: 2, Size: 1},
			wantKind:  apperr.KindPositionConflict,
			wantStart: 2,
			wantEnd:   2,
		},
		{
			name:      "Adjacent span is legal",
			height:    42,
			occupants: []Occupant{serverA},
			candidate: Candidate{Kind: KindDevice, Position: 3, Size: 1},
		},
		{
			name:      "Identical span conflicts",
			height:    42,
			occupants: []Occupant{serverA},
			candidate: Candidate{Kind: KindDevice, Position: 1, Size: 2},
			wantKind:  apperr.KindPositionConflict,
			wantStart: 1,
			wantEnd:   2,
		},
		{
			name:      "Device conflicts with racked provider",
			height:    42,
			occupants: []Occupant{pdu},
			candidate: Candidate{Kind: KindDevice, Position: 9, Size: 4},
			wantKind:  apperr.KindPositionConflict,
			wantStart: 10,
			wantEnd:   10,
		},
		{
			name:      "Provider conflicts with device",
			height:    42,
			occupants: []Occupant{serverA},
			candidate: Candidate{Kind: KindProvider, Position: 2, Size: 1},
			wantKind:  apperr.KindPositionConflict,
			wantStart: 2,
			wantEnd:   2,
		},
		{
			name:      "Span past the top is out of bounds",
			height:    42,
			occupants: []Occupant{{Kind: KindDevice, ID: 2, Name: "big", Position: 2, Size: 41}},
			candidate: Candidate{Kind: KindDevice, Position: 43, Size: 1},
			wantKind:  apperr.KindOutOfBounds,
			wantStart: 43,
			wantEnd:   43,
		},
		{
			name:      "Huge position does not wrap into the rack",
			height:    42,
			candidate: Candidate{Kind: KindDevice, Position: math.MaxInt, Size: 2},
			wantKind:  apperr.KindOutOfBounds,
			wantStart: math.MaxInt,
			wantEnd:   math.MaxInt,
		},
		{
			name:      "Huge position in a full rack is still out of bounds",
			height:    42,
			occupants: []Occupant{{Kind: KindDevice, ID: 3, Name: "full", Position: 1, Size: 42}},
			candidate: Candidate{Kind: KindProvider, Position: math.MaxInt - 1, Size: 3},
			wantKind:  apperr.KindOutOfBounds,
			wantStart: math.MaxInt - 1,
			wantEnd:   math.MaxInt,
		},
		{
			name:      "Huge size is out of bounds",
			height:    42,
			candidate: Candidate{Kind: KindDevice, Position: 2, Size: math.MaxInt},
			wantKind:  apperr.KindOutOfBounds,
			wantStart: 2,
			wantEnd:   math.MaxInt,
		},
		{
			name:      "Span ending exactly at the top fits",
			height:    42,
			candidate: Candidate{Kind: KindDevice, Position: 41, Size: 2},
		},
		{
			name:      "Moving an item over its own span is allowed",
			height:    42,
			occupants: []Occupant{serverA},
			candidate: Candidate{Kind: KindDevice, ID: 1, Position: 2, Size: 2},
		},
		{
			name:      "Same id of the other kind is not self",
			height:    42,
			occupants: []Occupant{serverA},
			candidate: Candidate{Kind: KindProvider, ID: 1, Position: 2, Size: 1},
			wantKind:  apperr.KindPositionConflict,
			wantStart: 2,
			wantEnd:   2,
		},
		{
			name:      "Zero size is a validation error",
			height:    42,
			candidate: Candidate{Kind: KindDevice, Position: 1, Size: 0},
			wantKind:  apperr.KindValidation,
		},
		{
			name:      "Zero position is a validation error",
			height:    42,
			candidate: Candidate{Kind: KindDevice, Position: 0, Size: 1},
			wantKind:  apperr.KindValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.height, tc.occupants, tc.candidate)
			if tc.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, apperr.KindOf(err))

			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tc.wantStart, appErr.Start)
			assert.Equal(t, tc.wantEnd, appErr.End)
		})
	}
}

// Exhaustively checks that Validate passes exactly when the candidate lies in
// [1, height] and misses every occupant, and that repeated calls agree.
func TestValidate_MatchesBruteForce(t *testing.T) {
	const height = 12
	occupants := []Occupant{
		{Kind: KindDevice, ID: 1, Name: "a", Position: 2, Size: 3},
		{Kind: KindProvider, ID: 2, Name: "b", Position: 7, Size: 1},
		{Kind: KindDevice, ID: 3, Name: "c", Position: 10, Size: 2},
	}

	for size := 1; size <= 4; size++ {
		for pos := 1; pos <= height+2; pos++ {
			c := Candidate{Kind: KindDevice, Position: pos, Size: size}

			want := pos+size-1 <= height
			for ru := pos; ru < pos+size && want; ru++ {
				for _, o := range occupants {
					if ru >= o.Position && ru < o.Position+o.Size {
						want = false
					}
				}
			}

			first := Validate(height, occupants, c)
			second := Validate(height, occupants, c)
			assert.Equal(t, want, first == nil, "size=%d pos=%d", size, pos)
			assert.Equal(t, first, second, "size=%d pos=%d", size, pos)
		}
	}
}

func TestValidateProviderRule(t *testing.T) {
	testCases := []struct {
		name     string
		ruSize   int
		rackID   *int64
		position *int
		wantKind apperr.Kind
	}{
		{name: "Floating provider", ruSize: 0},
		{name: "Zero RU with rack", ruSize: 0, rackID: ptr(int64(1)), wantKind: apperr.KindInvalidPlacementRule},
		{name: "Zero RU with position", ruSize: 0, position: ptr(3), wantKind: apperr.KindInvalidPlacementRule},
		{name: "Racked provider", ruSize: 2, rackID: ptr(int64(1)), position: ptr(3)},
		{name: "Sized but unracked", ruSize: 2},
		{name: "Rack without position", ruSize: 1, rackID: ptr(int64(1)), wantKind: apperr.KindInvalidPlacementRule},
		{name: "Position without rack", ruSize: 1, position: ptr(1), wantKind: apperr.KindInvalidPlacementRule},
		{name: "Position below one", ruSize: 1, rackID: ptr(int64(1)), position: ptr(0), wantKind: apperr.KindInvalidPlacementRule},
		{name: "Negative size", ruSize: -1, wantKind: apperr.KindValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateProviderRule(tc.ruSize, tc.rackID, tc.position)
			if tc.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.wantKind, apperr.KindOf(err))
		})
	}
}

func TestFreeRanges(t *testing.T) {
	occupants := []Occupant{
		{Kind: KindDevice, Position: 1, Size: 2},
		{Kind: KindProvider, Position: 5, Size: 1},
		{Kind: KindDevice, Position: 9, Size: 2},
	}

	assert.Equal(t, []Span{{3, 4}, {6, 8}}, FreeRanges(10, occupants))
	assert.Equal(t, []Span{{1, 42}}, FreeRanges(42, nil))
	assert.Empty(t, FreeRanges(2, []Occupant{{Position: 1, Size: 2}}))
}

func TestSpan(t *testing.T) {
	s := NewSpan(3, 2)
	assert.Equal(t, Span{Start: 3, End: 4}, s)
	assert.Equal(t, 2, s.Size())
	assert.Equal(t, "RU 3-4", s.String())
	assert.Equal(t, "RU 5", NewSpan(5, 1).String())
	assert.True(t, s.Overlaps(NewSpan(4, 1)))
	assert.False(t, s.Overlaps(NewSpan(5, 3)))
	assert.Equal(t, Span{Start: math.MaxInt, End: math.MaxInt}, NewSpan(math.MaxInt, 2))
}
