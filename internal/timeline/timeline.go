package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wurt83ow/workreport/internal/models"
)

// minutesPerDay is the full scale of the projection.
const minutesPerDay = 1440

// defaultSpanMinutes is the duration offered for a freshly inserted entry.
const defaultSpanMinutes = 60

// Span is a normalized horizontal box on the 24h scale, both in percent.
type Span struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// SpanSuggestion is the default start/end pair for a new entry.
type SpanSuggestion struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Entry is one projected report item for the pending-work view.
type Entry struct {
	Kind  string  `json:"kind"` // "task" or "adhoc"
	RefID string  `json:"refId"`
	Label string  `json:"label"`
	Start string  `json:"start"`
	End   string  `json:"end"`
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// parseClock parses a strict 24-hour "HH:mm" value into minutes since
// midnight.
func parseClock(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time of day %q, want HH:mm", value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hours in %q", value)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minutes in %q", value)
	}

	return hours*60 + minutes, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ToPosition maps a time of day onto the linear 0..100 scale.
func ToPosition(timeOfDay string) (float64, error) {
	minutes, err := parseClock(timeOfDay)
	if err != nil {
		return 0, err
	}

	return float64(minutes) / minutesPerDay * 100, nil
}

// FromPointer is the inverse of ToPosition, rounded to the nearest minute.
// Positions outside [0, 100] are clamped onto the day.
func FromPointer(percent float64) string {
	minutes := int(math.Round(percent / 100 * minutesPerDay))

	if minutes < 0 {
		minutes = 0
	}

	if minutes > minutesPerDay-1 {
		minutes = minutesPerDay - 1
	}

	return formatClock(minutes)
}

// CalcSpan projects a start/end pair; width collapses to zero when the
// end does not lie strictly after the start, and such entries are not drawn.
// Overlap between independent spans is not detected here.
func CalcSpan(start, end string) (Span, error) {
	startMin, err := parseClock(start)
	if err != nil {
		return Span{}, err
	}

	endMin, err := parseClock(end)
	if err != nil {
		return Span{}, err
	}

	left := float64(startMin) / minutesPerDay * 100

	if endMin <= startMin {
		return Span{Left: left, Width: 0}, nil
	}

	return Span{
		Left:  left,
		Width: float64(endMin-startMin) / minutesPerDay * 100,
	}, nil
}

// SuggestSpan offers the default duration for a new entry inserted at the
// given start: one hour, capped at the end of the day.
func SuggestSpan(start string) (SpanSuggestion, error) {
	startMin, err := parseClock(start)
	if err != nil {
		return SpanSuggestion{}, err
	}

	endMin := startMin + defaultSpanMinutes
	if endMin > minutesPerDay-1 {
		endMin = minutesPerDay - 1
	}

	return SpanSuggestion{
		Start: formatClock(startMin),
		End:   formatClock(endMin),
	}, nil
}

// PendingView projects the entries of a report for the manager timeline.
// Only entries carrying both a start and an end time are projected; the rest
// are shown in tabular form elsewhere and omitted here.
func PendingView(r models.DailyReport) []Entry {
	entries := make([]Entry, 0, len(r.SelectedTasks)+len(r.AdHocTasks))

	for _, t := range r.SelectedTasks {
		if t.StartTime == "" || t.EndTime == "" {
			continue
		}

		span, err := CalcSpan(t.StartTime, t.EndTime)
		if err != nil {
			continue
		}

		entries = append(entries, Entry{
			Kind:  "task",
			RefID: strconv.Itoa(t.TaskID),
			Label: t.Title,
			Start: t.StartTime,
			End:   t.EndTime,
			Left:  span.Left,
			Width: span.Width,
		})
	}

	for _, a := range r.AdHocTasks {
		if a.StartTime == "" || a.EndTime == "" {
			continue
		}

		span, err := CalcSpan(a.StartTime, a.EndTime)
		if err != nil {
			continue
		}

		entries = append(entries, Entry{
			Kind:  "adhoc",
			RefID: a.ID,
			Label: a.Content,
			Start: a.StartTime,
			End:   a.EndTime,
			Left:  span.Left,
			Width: span.Width,
		})
	}

	return entries
}
