// Package report compresses chronological activity samples into contiguous
// time blocks and renders them as a daily report.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pulselog/pulselog/internal/localtime"
)

// ErrNoData indicates there were no samples for the requested day.
var ErrNoData = errors.New("no samples for the requested day")

// Untagged is the sentinel value contributed by activities without tags in a
// tag report.
const Untagged = "Untagged"

// openEndMarker renders in place of an end time for the final block of a day,
// which no later sample closes.
const openEndMarker = "--:--"

// Sample is one observed value at a point in time: a raw activity description
// or a canonicalized tag set.
type Sample struct {
	At    time.Time
	Value string
}

// Block is a contiguous time range during which the observed value did not
// change. End is the instant the next distinct value began; Open marks the
// final block of the day, whose End is unset.
type Block struct {
	Value string
	Start time.Time
	End   time.Time
	Open  bool
}

// Compress merges samples, ordered by timestamp, into minimal contiguous
// blocks. This is run-length encoding over a time-ordered stream: samples may
// be unevenly spaced, and equal values separated by a different value stay in
// separate blocks. The caller supplies samples for exactly one user-day.
func Compress(samples []Sample) ([]Block, error) {
	if len(samples) == 0 {
		return nil, ErrNoData
	}

	blocks := make([]Block, 0, len(samples))
	current := Block{Value: samples[0].Value, Start: samples[0].At}

	for _, s := range samples[1:] {
		if s.Value == current.Value {
			continue
		}
		// The block ends the moment the next distinct value began, not at
		// the last sample that shared its value.
		current.End = s.At
		blocks = append(blocks, current)
		current = Block{Value: s.Value, Start: s.At}
	}

	current.Open = true
	blocks = append(blocks, current)

	return blocks, nil
}

// CanonicalTags normalizes a tag set into a stable sample value: names sorted
// case-insensitively and comma-joined. An empty set yields the Untagged
// sentinel.
func CanonicalTags(names []string) string {
	if len(names) == 0 {
		return Untagged
	}
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i]) < strings.ToLower(sorted[j])
	})
	return strings.Join(sorted, ", ")
}

// RenderLines renders blocks as report lines with start and end times in the
// user's local timezone.
func RenderLines(blocks []Block, loc *time.Location) []string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		end := openEndMarker
		if !b.Open {
			end = localtime.FormatClock(b.End, loc)
		}
		lines = append(lines, fmt.Sprintf("%s - %s - %s", localtime.FormatClock(b.Start, loc), end, b.Value))
	}
	return lines
}

// BuildDocument renders the full report file for one day.
func BuildDocument(date string, blocks []Block, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString("The Activity Log: " + date + "\n")
	sb.WriteString(strings.Repeat("=", 30) + "\n")
	for _, line := range RenderLines(blocks, loc) {
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// Filename returns the attachment name for a day's report document.
func Filename(date string) string {
	return "activity_report_" + date + ".txt"
}
