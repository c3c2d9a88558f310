package weatherdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-wetta-dashboard/internal/history"
)

// Aggregate is one bucket of the pre-aggregated tables. Time is the local
// wall clock of the station stored in the *_tz columns, carried as UTC.
type Aggregate struct {
	Time    time.Time `json:"time"`
	TempAvg *float64  `json:"temp_avg"`
	TempMin *float64  `json:"temp_min"`
	TempMax *float64  `json:"temp_max"`
	RainMM  *float64  `json:"rain_mm"`
}

const dailyAggregatesSQL = `
SELECT date_tz, temp_outdoor_c_avg, temp_outdoor_c_min, temp_outdoor_c_max, rain_mm
FROM weather_data_daily
WHERE date_tz BETWEEN ? AND ?
ORDER BY date_tz;
`

const hourlyAggregatesSQL = `
SELECT timestamp_tz, temp_outdoor_c_avg, temp_outdoor_c_min, temp_outdoor_c_max, rain_mm
FROM weather_data_hourly
WHERE timestamp_tz BETWEEN ? AND ?
ORDER BY timestamp_tz;
`

// FetchDailyAggregates returns daily rows with start <= date_tz <= end.
func (s *Store) FetchDailyAggregates(ctx context.Context, start, end time.Time) ([]Aggregate, error) {
	return s.fetchAggregates(ctx, "daily_aggregates", dailyAggregatesSQL,
		start.Format(sqlDateLayout), end.Format(sqlDateTimeLayout))
}

// FetchHourlyAggregates returns hourly rows with start <= timestamp_tz <= end.
func (s *Store) FetchHourlyAggregates(ctx context.Context, start, end time.Time) ([]Aggregate, error) {
	return s.fetchAggregates(ctx, "hourly_aggregates", hourlyAggregatesSQL,
		start.Format(sqlDateTimeLayout), end.Format(sqlDateTimeLayout))
}

// FetchAggregates picks the table matching the window's granularity.
func (s *Store) FetchAggregates(ctx context.Context, w history.QueryWindow) ([]Aggregate, error) {
	switch w.Granularity {
	case history.Daily:
		return s.FetchDailyAggregates(ctx, w.Start, w.End)
	case history.Hourly:
		return s.FetchHourlyAggregates(ctx, w.Start, w.End)
	default:
		return nil, fmt.Errorf("%w: %q", history.ErrUnknownGranularity, string(w.Granularity))
	}
}

func (s *Store) fetchAggregates(ctx context.Context, name, query string, start, end string) (out []Aggregate, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	began := time.Now()
	defer func() { s.track(name, began, err) }()

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	out = make([]Aggregate, 0, 32)
	for rows.Next() {
		var (
			bucket                 any
			avg, low, high, rainMM sql.NullFloat64
		)
		if err := rows.Scan(&bucket, &avg, &low, &high, &rainMM); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		t, err := asTime(bucket)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		out = append(out, Aggregate{
			Time:    t,
			TempAvg: nullFloat(avg),
			TempMin: nullFloat(low),
			TempMax: nullFloat(high),
			RainMM:  nullFloat(rainMM),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	return out, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
