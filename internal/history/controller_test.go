package history

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	earliest = time.Date(2021, 7, 23, 0, 0, 0, 0, time.UTC)
	berlin   = mustLoadLocation("Europe/Berlin")
)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 3600)
	}
	return loc
}

func date(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestController(now time.Time) *Controller {
	return NewController(earliest, berlin, WithClock(func() time.Time { return now }))
}

func TestApply_FromAfterToDragsTo(t *testing.T) {
	c := newTestController(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	s := State{From: date("2024-01-01"), To: date("2024-01-05"), Granularity: Daily}

	next, err := c.Apply(s, EditFrom("2024-01-10"))
	require.NoError(t, err)

	assert.Equal(t, date("2024-01-10"), next.From)
	assert.Equal(t, date("2024-01-10"), next.To)
	assert.Equal(t, Daily, next.Granularity)
}

func TestApply_FromBeforeToLeavesTo(t *testing.T) {
	c := newTestController(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	s := State{From: date("2024-01-01"), To: date("2024-01-05"), Granularity: Daily}

	next, err := c.Apply(s, EditFrom("2024-01-03"))
	require.NoError(t, err)
	assert.Equal(t, State{From: date("2024-01-03"), To: date("2024-01-05"), Granularity: Daily}, next)
}

func TestApply_ToBeforeFromDragsFrom(t *testing.T) {
	c := newTestController(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	s := State{From: date("2024-01-10"), To: date("2024-01-20"), Granularity: Hourly}

	next, err := c.Apply(s, EditTo("2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, State{From: date("2024-01-02"), To: date("2024-01-02"), Granularity: Hourly}, next)
}

func TestApply_HourlyResetsToOneDayEndingToday(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	c := newTestController(now)
	s := State{From: date("2021-08-01"), To: date("2021-08-02"), Granularity: Daily}

	next, err := c.Apply(s, EditGranularity(Hourly))
	require.NoError(t, err)
	assert.Equal(t, State{From: date("2024-03-14"), To: date("2024-03-15"), Granularity: Hourly}, next)
}

func TestApply_DailyResetsToEightDaysEndingToday(t *testing.T) {
	c := newTestController(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	s := State{From: date("2024-03-14"), To: date("2024-03-15"), Granularity: Hourly}

	next, err := c.Apply(s, EditGranularity(Daily))
	require.NoError(t, err)
	assert.Equal(t, State{From: date("2024-03-07"), To: date("2024-03-15"), Granularity: Daily}, next)
}

func TestApply_TodayFollowsDisplayLocation(t *testing.T) {
	// 23:30 UTC is already the next day in Berlin.
	c := newTestController(time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, date("2024-03-16"), c.Today())
}

func TestApply_MalformedDateKeepsPriorState(t *testing.T) {
	c := newTestController(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	prior := State{From: date("2024-01-01"), To: date("2024-01-05"), Granularity: Daily}

	for _, e := range []Edit{EditFrom("01.02.2024"), EditTo(""), EditFrom("2024-02-30")} {
		next, err := c.Apply(prior, e)
		require.Error(t, err)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, e.Field, verr.Field)
		assert.NotEmpty(t, verr.Message)
		assert.Equal(t, prior, next)
	}
}

func TestApply_ClampsToPickerBounds(t *testing.T) {
	c := newTestController(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	s := c.Default()

	next, err := c.Apply(s, EditFrom("2019-01-01"))
	require.NoError(t, err)
	assert.Equal(t, earliest, next.From)

	next, err = c.Apply(s, EditTo("2030-01-01"))
	require.NoError(t, err)
	assert.Equal(t, date("2024-03-15"), next.To)

	next, err = c.Apply(s, EditFrom("2030-01-01"))
	require.NoError(t, err)
	assert.Equal(t, date("2024-03-15"), next.From)
	assert.Equal(t, date("2024-03-15"), next.To)
}

func TestApply_TickMovesMaxAndClamps(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	c := newTestController(now)
	s := State{From: date("2024-03-10"), To: date("2024-03-14"), Granularity: Daily}

	next, err := c.Apply(s, Tick())
	require.NoError(t, err)
	assert.Equal(t, s, next, "selection inside bounds is untouched")
	assert.Equal(t, date("2024-03-15"), c.Bounds().Max)

	// A state selected under a later clock is pulled back to today.
	future := State{From: date("2024-03-16"), To: date("2024-03-17"), Granularity: Daily}
	next, err = c.Apply(future, Tick())
	require.NoError(t, err)
	assert.Equal(t, State{From: date("2024-03-15"), To: date("2024-03-15"), Granularity: Daily}, next)
}

func TestApply_BoundsFollowTheClock(t *testing.T) {
	now := time.Date(2024, 3, 15, 22, 0, 0, 0, time.UTC)
	c := NewController(earliest, time.UTC, WithClock(func() time.Time { return now }))
	assert.Equal(t, date("2024-03-15"), c.Bounds().Max)

	now = now.Add(3 * time.Hour)
	assert.Equal(t, date("2024-03-16"), c.Bounds().Max)
	assert.Equal(t, earliest, c.Bounds().Min)
}

func TestApply_UnknownGranularityPanics(t *testing.T) {
	c := newTestController(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	assert.Panics(t, func() {
		_, _ = c.Apply(c.Default(), EditGranularity(Granularity("weekly")))
	})
	assert.Panics(t, func() {
		_, _ = c.Apply(c.Default(), Edit{Field: Field("zoom")})
	})
}

func TestApply_FromNeverAfterTo(t *testing.T) {
	c := newTestController(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	rng := rand.New(rand.NewSource(7))
	s := c.Default()

	span := int(date("2024-03-20").Sub(date("2021-07-01")).Hours() / 24)
	for i := 0; i < 2000; i++ {
		day := date("2021-07-01").AddDate(0, 0, rng.Intn(span)).Format(DateLayout)
		var e Edit
		switch rng.Intn(5) {
		case 0:
			e = EditFrom(day)
		case 1:
			e = EditTo(day)
		case 2:
			e = EditGranularity(Granularities()[rng.Intn(2)])
		case 3:
			e = Tick()
		default:
			e = EditFrom("kaputt")
		}

		next, err := c.Apply(s, e)
		if err != nil {
			assert.Equal(t, s, next)
		}
		require.False(t, next.From.After(next.To), "edit %+v produced %s > %s", e, next.FromString(), next.ToString())
		require.False(t, next.From.Before(earliest))
		require.False(t, next.To.After(c.Today()))
		s = next
	}
}

func TestRestore(t *testing.T) {
	c := newTestController(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	s, err := c.Restore("2024-03-01", "2024-03-05", "hourly")
	require.NoError(t, err)
	assert.Equal(t, State{From: date("2024-03-01"), To: date("2024-03-05"), Granularity: Hourly}, s)

	_, err = c.Restore("2024-03-05", "2024-03-01", "daily")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = c.Restore("2024-03-01", "2024-03-05", "weekly")
	assert.ErrorIs(t, err, ErrUnknownGranularity)

	_, err = c.Restore("gestern", "2024-03-05", "daily")
	assert.True(t, errors.As(err, &verr))
}

func TestResolve_FillsBlanksFromGranularityPreset(t *testing.T) {
	c := newTestController(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	s, err := c.Resolve("", "", "hourly")
	require.NoError(t, err)
	assert.Equal(t, State{From: date("2024-03-14"), To: date("2024-03-15"), Granularity: Hourly}, s)

	s, err = c.Resolve("", "", "")
	require.NoError(t, err)
	assert.Equal(t, c.Default(), s)

	s, err = c.Resolve("2024-03-10", "", "hourly")
	require.NoError(t, err)
	assert.Equal(t, State{From: date("2024-03-10"), To: date("2024-03-15"), Granularity: Hourly}, s)

	_, err = c.Resolve("", "", "weekly")
	assert.ErrorIs(t, err, ErrUnknownGranularity)
}

func TestWindowFor_EndsAtEndOfDay(t *testing.T) {
	s := State{From: date("2024-02-20"), To: date("2024-03-01"), Granularity: Daily}

	w := WindowFor(s)
	assert.Equal(t, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC), w.End)
	assert.Equal(t, Daily, w.Granularity)

	// the picker state is left alone
	assert.Equal(t, date("2024-03-01"), s.To)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("hourly")
	require.NoError(t, err)
	assert.Equal(t, Hourly, g)
	assert.Equal(t, "Stündlich", g.Label())

	_, err = ParseGranularity("Daily")
	assert.ErrorIs(t, err, ErrUnknownGranularity)
	_, err = ParseGranularity("")
	assert.ErrorIs(t, err, ErrUnknownGranularity)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("tick")
	require.NoError(t, err)
	assert.Equal(t, FieldTick, f)

	_, err = ParseField("date-from")
	assert.Error(t, err)
}
