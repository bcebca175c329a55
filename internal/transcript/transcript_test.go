package transcript

import (
	"strings"
	"testing"
)

func TestExcerptWindowsToLastSegments(t *testing.T) {
	snap := Snapshot{
		Text: "a b c",
		Segments: []Segment{
			{Start: 0, End: 1, Text: "a"},
			{Start: 1, End: 2, Text: "b"},
			{Start: 2, End: 3, Text: "c"},
		},
	}

	got := snap.Excerpt(2)
	want := "0:01 b\n0:02 c"
	if got != want {
		t.Errorf("Excerpt(2) = %q, want %q", got, want)
	}
}

func TestExcerptTimestampIsMidpointFloor(t *testing.T) {
	snap := Snapshot{
		Text:     "hello",
		Segments: []Segment{{Start: 119, End: 122, Text: "hello"}},
	}

	// midpoint 120.5 floors to 120 seconds -> "2:00"
	got := snap.Excerpt(10)
	if got != "2:00 hello" {
		t.Errorf("Excerpt = %q, want %q", got, "2:00 hello")
	}
}

func TestExcerptMaxSegmentsFloorsToOne(t *testing.T) {
	snap := Snapshot{
		Segments: []Segment{
			{Start: 0, End: 2, Text: "first"},
			{Start: 2, End: 4, Text: "second"},
		},
	}

	got := snap.Excerpt(0)
	if got != "0:03 second" {
		t.Errorf("Excerpt(0) = %q, want only the last segment, got %q", got, got)
	}
}

func TestExcerptFallsBackToRawText(t *testing.T) {
	snap := Snapshot{Text: "  raw only  "}
	if got := snap.Excerpt(5); got != "raw only" {
		t.Errorf("Excerpt = %q, want %q", got, "raw only")
	}

	blank := Snapshot{
		Text:     "raw",
		Segments: []Segment{{Start: 0, End: 1, Text: "   "}},
	}
	if got := blank.Excerpt(5); got != "raw" {
		t.Errorf("Excerpt with blank segments = %q, want %q", got, "raw")
	}
}

func TestExcerptDropsOldestLinesOverCap(t *testing.T) {
	long := strings.Repeat("x", 2500)
	snap := Snapshot{
		Segments: []Segment{
			{Start: 0, End: 2, Text: long},
			{Start: 2, End: 4, Text: long},
			{Start: 4, End: 6, Text: long},
		},
	}

	got := snap.Excerpt(10)
	if len(got) > excerptMaxChars {
		t.Fatalf("excerpt length = %d, want <= %d", len(got), excerptMaxChars)
	}
	if strings.Count(got, "\n") != 1 {
		t.Errorf("expected oldest line dropped leaving 2 lines, got %d lines", strings.Count(got, "\n")+1)
	}
	if !strings.HasPrefix(got, "0:03 ") {
		t.Errorf("expected excerpt to start with second segment, got prefix %q", got[:10])
	}
}

func TestExcerptKeepsSingleOversizeLine(t *testing.T) {
	long := strings.Repeat("y", excerptMaxChars+100)
	snap := Snapshot{
		Segments: []Segment{{Start: 0, End: 0, Text: long}},
	}

	got := snap.Excerpt(1)
	if !strings.Contains(got, long) {
		t.Error("single over-cap line must be kept, not dropped")
	}
}

func TestNormalizeDefaultsSegments(t *testing.T) {
	n := Normalize(Snapshot{Text: "hi"})
	if n.Segments == nil {
		t.Error("Normalize should replace nil segments with an empty slice")
	}
}

func TestEmpty(t *testing.T) {
	if !(Snapshot{Text: "   "}).Empty() {
		t.Error("whitespace-only snapshot should be empty")
	}
	if (Snapshot{Text: "words"}).Empty() {
		t.Error("non-empty snapshot reported empty")
	}
}
