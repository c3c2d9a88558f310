package registry

import (
	"strings"
)

// FormatterKind selects how a raw value is rendered on its tile.
type FormatterKind int

const (
	// Identity renders the value as-is.
	Identity FormatterKind = iota
	// CompassBearing renders degrees as "<compass point> - <degrees>".
	CompassBearing
	// Timestamp renders "Zeitpunkt der Daten: <value>".
	Timestamp
)

func (k FormatterKind) String() string {
	switch k {
	case Identity:
		return "identity"
	case CompassBearing:
		return "compass"
	case Timestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

func (k FormatterKind) valid() bool {
	return k >= Identity && k <= Timestamp
}

// Descriptor describes one displayable measurement: where it is read from,
// how it is labelled and how its value is rendered.
type Descriptor struct {
	Expression string        `json:"expression"`
	Label      string        `json:"label"`
	Category   string        `json:"category"`
	WidgetID   string        `json:"widget_id"`
	Unit       string        `json:"unit"`
	Formatter  FormatterKind `json:"-"`
}

// MetricOption adjusts a descriptor built by Metric.
type MetricOption func(*Descriptor)

func WithID(id string) MetricOption {
	return func(d *Descriptor) { d.WidgetID = id }
}

func WithUnit(unit string) MetricOption {
	return func(d *Descriptor) { d.Unit = unit }
}

func WithFormatter(kind FormatterKind) MetricOption {
	return func(d *Descriptor) { d.Formatter = kind }
}

// Metric builds a descriptor with an identity formatter and a widget id
// derived from the expression unless WithID is given.
func Metric(expression, label, category string, opts ...MetricOption) Descriptor {
	d := Descriptor{
		Expression: expression,
		Label:      label,
		Category:   category,
	}
	for _, opt := range opts {
		opt(&d)
	}
	if d.WidgetID == "" {
		d.WidgetID = DeriveWidgetID(expression)
	}
	return d
}

// Format renders a raw column value for the descriptor's tile.
func (d Descriptor) Format(raw any) string {
	switch d.Formatter {
	case Identity:
		return formatIdentity(raw)
	case CompassBearing:
		return formatCompass(raw)
	case Timestamp:
		return formatTimestamp(raw)
	default:
		panic("registry: unknown formatter kind " + d.Formatter.String())
	}
}

// DeriveWidgetID turns a source expression into a stable element id:
// "humidity_outdoor" becomes "current-humidity_outdoor",
// "ROUND(uv, 1)" becomes "current-round-uv-1".
func DeriveWidgetID(expression string) string {
	var b strings.Builder
	b.WriteString("current-")
	dash := true
	for _, r := range strings.ToLower(strings.TrimSpace(expression)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
