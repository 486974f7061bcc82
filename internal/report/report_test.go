package report_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pulselog/pulselog/internal/report"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 24, hour, minute, 0, 0, time.UTC)
}

func TestCompress_NoData(t *testing.T) {
	t.Parallel()

	_, err := report.Compress(nil)
	if !errors.Is(err, report.ErrNoData) {
		t.Errorf("Compress(nil) error = %v, want ErrNoData", err)
	}
}

func TestCompress_SingleSample(t *testing.T) {
	t.Parallel()

	blocks, err := report.Compress([]report.Sample{{At: at(9, 0), Value: "coding"}})
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Value != "coding" || !b.Start.Equal(at(9, 0)) || !b.Open {
		t.Errorf("block = %+v, want open block for %q starting 09:00", b, "coding")
	}
}

func TestCompress_SeparatedEqualValuesStaySeparate(t *testing.T) {
	t.Parallel()

	samples := []report.Sample{
		{At: at(9, 0), Value: "coding"},
		{At: at(9, 30), Value: "coding"},
		{At: at(10, 0), Value: "meeting"},
		{At: at(10, 30), Value: "coding"},
	}

	blocks, err := report.Compress(samples)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("len(blocks) = %d, want 3", len(blocks))
	}

	want := []struct {
		value string
		start time.Time
		open  bool
	}{
		{"coding", at(9, 0), false},
		{"meeting", at(10, 0), false},
		{"coding", at(10, 30), true},
	}
	for i, w := range want {
		b := blocks[i]
		if b.Value != w.value || !b.Start.Equal(w.start) || b.Open != w.open {
			t.Errorf("blocks[%d] = %+v, want value=%q start=%v open=%v", i, b, w.value, w.start, w.open)
		}
	}

	// Closed blocks end exactly where the next block starts.
	for i := 0; i < len(blocks)-1; i++ {
		if !blocks[i].End.Equal(blocks[i+1].Start) {
			t.Errorf("blocks[%d].End = %v, want %v", i, blocks[i].End, blocks[i+1].Start)
		}
	}
}

func TestCompress_Idempotent(t *testing.T) {
	t.Parallel()

	samples := []report.Sample{
		{At: at(8, 0), Value: "a"},
		{At: at(8, 30), Value: "a"},
		{At: at(9, 0), Value: "b"},
	}

	first, err := report.Compress(samples)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	second, err := report.Compress(samples)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compress() not deterministic: %+v vs %+v", first, second)
	}
}

func TestCanonicalTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"empty set", nil, report.Untagged},
		{"single tag", []string{"focus"}, "focus"},
		{"sorted case-insensitively", []string{"Zebra", "apple", "Mango"}, "apple, Mango, Zebra"},
		{"order independent", []string{"b", "a"}, "a, b"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := report.CanonicalTags(tt.tags); got != tt.want {
				t.Errorf("CanonicalTags(%v) = %q, want %q", tt.tags, got, tt.want)
			}
		})
	}
}

func TestRenderLines(t *testing.T) {
	t.Parallel()

	blocks := []report.Block{
		{Value: "coding", Start: at(9, 0), End: at(10, 15)},
		{Value: "lunch", Start: at(10, 15), Open: true},
	}

	lines := report.RenderLines(blocks, time.UTC)
	want := []string{
		"09:00 - 10:15 - coding",
		"10:15 - --:-- - lunch",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("RenderLines() = %v, want %v", lines, want)
	}
}

func TestBuildDocument(t *testing.T) {
	t.Parallel()

	blocks := []report.Block{
		{Value: "coding", Start: at(9, 0), Open: true},
	}

	doc := report.BuildDocument("2026-08-24", blocks, time.UTC)
	wantLines := []string{
		"The Activity Log: 2026-08-24",
		strings.Repeat("=", 30),
		"09:00 - --:-- - coding",
		"",
	}
	if got := strings.Split(doc, "\n"); !reflect.DeepEqual(got, wantLines) {
		t.Errorf("BuildDocument() lines = %q, want %q", got, wantLines)
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()

	if got := report.Filename("2026-08-24"); got != "activity_report_2026-08-24.txt" {
		t.Errorf("Filename() = %q", got)
	}
}
