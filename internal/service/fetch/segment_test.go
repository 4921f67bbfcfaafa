package fetch

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villrein/internal/domain/fetch"
)

func year2023() fetch.DateRange {
	return fetch.DateRange{
		Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSegmentDepthZeroIsIdentity(t *testing.T) {
	ranges := []fetch.DateRange{year2023()}
	if diff := cmp.Diff(ranges, Segment(ranges, 0)); diff != "" {
		t.Errorf("Segment(ranges, 0) mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentYearIntoFour(t *testing.T) {
	whole := year2023()
	parts := Segment([]fetch.DateRange{whole}, 2)

	require.Len(t, parts, 4)
	assert.True(t, parts[0].Start.Equal(whole.Start))
	assert.True(t, parts[3].End.Equal(whole.End))

	width := whole.Duration() / 4
	for i, p := range parts {
		assert.Equal(t, width, p.Duration(), "part %d", i)
		if i > 0 {
			assert.True(t, parts[i-1].End.Equal(p.Start), "part %d must start where %d ends", i, i-1)
		}
	}
}

func TestSegmentSeveralRanges(t *testing.T) {
	a := year2023()
	b := fetch.DateRange{Start: a.End, End: a.End.Add(48 * time.Hour)}

	parts := Segment([]fetch.DateRange{a, b}, 1)

	want := []fetch.DateRange{
		{Start: a.Start, End: a.Start.Add(a.Duration() / 2)},
		{Start: a.Start.Add(a.Duration() / 2), End: a.End},
		{Start: b.Start, End: b.Start.Add(24 * time.Hour)},
		{Start: b.Start.Add(24 * time.Hour), End: b.End},
	}
	if diff := cmp.Diff(want, parts); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentsForDepth(t *testing.T) {
	assert.Equal(t, 1, SegmentsForDepth(0))
	assert.Equal(t, 8, SegmentsForDepth(3))
	assert.Len(t, Segment([]fetch.DateRange{year2023()}, 5), SegmentsForDepth(5))
}

func TestYearRange(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, loc)

	past := YearRange(2023, now, loc)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, loc), past.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, loc), past.End)

	current := YearRange(2025, now, loc)
	assert.Equal(t, now, current.End)

	future := YearRange(2026, now, loc)
	assert.Equal(t, now, future.Start)
	assert.Equal(t, now, future.End)
}
