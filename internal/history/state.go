package history

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of picker dates.
const DateLayout = "2006-01-02"

var ErrUnknownGranularity = errors.New("unknown granularity")

// Granularity is the aggregation resolution of historical queries.
type Granularity string

const (
	Daily  Granularity = "daily"
	Hourly Granularity = "hourly"
)

// ParseGranularity accepts exactly "daily" or "hourly". Anything else is a
// caller bug and is reported, never defaulted.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.TrimSpace(s)); g {
	case Daily, Hourly:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// Label is the German radio button caption.
func (g Granularity) Label() string {
	switch g {
	case Daily:
		return "Täglich"
	case Hourly:
		return "Stündlich"
	default:
		panic(fmt.Sprintf("history: unknown granularity %q", string(g)))
	}
}

// presetDays is the length of the window a granularity switch resets to.
func (g Granularity) presetDays() int {
	switch g {
	case Daily:
		return 8
	case Hourly:
		return 1
	default:
		panic(fmt.Sprintf("history: unknown granularity %q", string(g)))
	}
}

// Granularities lists the closed set in display order.
func Granularities() []Granularity { return []Granularity{Daily, Hourly} }

// State is the selected historical window. From and To are calendar dates,
// both inclusive, stored as midnight UTC. A State is replaced on every edit.
type State struct {
	From        time.Time
	To          time.Time
	Granularity Granularity
}

func (s State) FromString() string { return s.From.Format(DateLayout) }

func (s State) ToString() string { return s.To.Format(DateLayout) }

// QueryWindow is the normalized range handed to the data layer.
type QueryWindow struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
}

// WindowFor widens the selected dates to full days: the window ends at
// 23:59 of the To day so the last, possibly partial, day is included.
func WindowFor(s State) QueryWindow {
	return QueryWindow{
		Start:       s.From,
		End:         s.To.AddDate(0, 0, 1).Add(-time.Minute),
		Granularity: s.Granularity,
	}
}

// ParseDate reads a picker date as a midnight UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
