package history

import (
	"fmt"
	"time"
)

// Field names the picker input an edit came from.
type Field string

const (
	FieldFrom        Field = "from"
	FieldTo          Field = "to"
	FieldGranularity Field = "granularity"
	FieldTick        Field = "tick"
)

// ParseField maps a wire field name onto a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldFrom, FieldTo, FieldGranularity, FieldTick:
		return f, nil
	default:
		return "", fmt.Errorf("unknown edit field %q", s)
	}
}

// Edit is one user or clock input to the controller.
type Edit struct {
	Field       Field
	Value       string
	Granularity Granularity
}

func EditFrom(value string) Edit { return Edit{Field: FieldFrom, Value: value} }

func EditTo(value string) Edit { return Edit{Field: FieldTo, Value: value} }

func EditGranularity(g Granularity) Edit { return Edit{Field: FieldGranularity, Granularity: g} }

// Tick is the slow clock edit that refreshes the picker maximum.
func Tick() Edit { return Edit{Field: FieldTick} }

// ValidationError rejects a single edit. The caller keeps the prior state
// and shows Message to the user.
type ValidationError struct {
	Field   Field
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Message)
}

// Bounds are the picker limits.
type Bounds struct {
	Min time.Time
	Max time.Time
}

// Controller reconciles date-range edits. It holds no selection state of
// its own; every call maps a State and an Edit to the next State.
type Controller struct {
	earliest time.Time
	location *time.Location
	now      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a controller bounded below by earliest. "Today" is
// evaluated in loc.
func NewController(earliest time.Time, loc *time.Location, opts ...Option) *Controller {
	if loc == nil {
		loc = time.UTC
	}
	c := &Controller{
		earliest: DateOf(earliest),
		location: loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Today is the current calendar date in the display location.
func (c *Controller) Today() time.Time {
	return DateOf(c.now().In(c.location))
}

// Bounds recomputes the picker limits; Max moves with the clock.
func (c *Controller) Bounds() Bounds {
	return Bounds{Min: c.earliest, Max: c.Today()}
}

// Default is the initial selection: the last eight days, daily.
func (c *Controller) Default() State {
	return c.Preset(Daily)
}

// Restore rebuilds a State that a client held between edits. Dates are
// clamped to the picker bounds; an inverted range cannot be reconciled
// without knowing which bound was edited, so it is rejected.
func (c *Controller) Restore(from, to, granularity string) (State, error) {
	g, err := ParseGranularity(granularity)
	if err != nil {
		return State{}, err
	}
	f, err := c.parseDate(FieldFrom, from)
	if err != nil {
		return State{}, err
	}
	t, err := c.parseDate(FieldTo, to)
	if err != nil {
		return State{}, err
	}
	s := State{From: c.clamp(f), To: c.clamp(t), Granularity: g}
	if s.From.After(s.To) {
		return State{}, &ValidationError{
			Field:   FieldTo,
			Value:   to,
			Message: "Das Enddatum liegt vor dem Startdatum.",
		}
	}
	return s, nil
}

// Resolve restores a selection from loose query values. An empty
// granularity means daily; empty dates come from the preset of the
// requested granularity.
func (c *Controller) Resolve(from, to, granularity string) (State, error) {
	g := Daily
	if granularity != "" {
		parsed, err := ParseGranularity(granularity)
		if err != nil {
			return State{}, err
		}
		g = parsed
	}
	preset := c.Preset(g)
	if from == "" {
		from = preset.FromString()
	}
	if to == "" {
		to = preset.ToString()
	}
	return c.Restore(from, to, string(g))
}

// Apply reconciles one edit. On a validation error the prior state is
// returned unchanged together with a *ValidationError. The result always
// satisfies From <= To within the picker bounds.
func (c *Controller) Apply(s State, e Edit) (State, error) {
	switch e.Field {
	case FieldFrom:
		f, err := c.parseDate(FieldFrom, e.Value)
		if err != nil {
			return s, err
		}
		next := State{From: c.clamp(f), To: s.To, Granularity: s.Granularity}
		if next.From.After(next.To) {
			next.To = next.From
		}
		return next, nil

	case FieldTo:
		t, err := c.parseDate(FieldTo, e.Value)
		if err != nil {
			return s, err
		}
		next := State{From: s.From, To: c.clamp(t), Granularity: s.Granularity}
		if next.To.Before(next.From) {
			next.From = next.To
		}
		return next, nil

	case FieldGranularity:
		return c.Preset(e.Granularity), nil

	case FieldTick:
		today := c.Today()
		next := s
		if next.To.After(today) {
			next.To = today
		}
		if next.From.After(today) {
			next.From = today
		}
		return next, nil

	default:
		panic(fmt.Sprintf("history: unknown edit field %q", string(e.Field)))
	}
}

// Preset is the window a switch to g resets to, ending today.
func (c *Controller) Preset(g Granularity) State {
	today := c.Today()
	from := today.AddDate(0, 0, -g.presetDays())
	if from.Before(c.earliest) {
		from = c.earliest
	}
	return State{From: from, To: today, Granularity: g}
}

func (c *Controller) clamp(d time.Time) time.Time {
	if d.Before(c.earliest) {
		return c.earliest
	}
	if today := c.Today(); d.After(today) {
		return today
	}
	return d
}

func (c *Controller) parseDate(field Field, value string) (time.Time, error) {
	d, err := ParseDate(value)
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:   field,
			Value:   value,
			Message: "Ungültiges Datum, erwartet wird JJJJ-MM-TT.",
		}
	}
	return d, nil
}
