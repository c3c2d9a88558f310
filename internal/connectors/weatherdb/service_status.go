package weatherdb

import (
	"context"
	"time"
)

// ServiceStats contains lightweight DB health and volume counters.
type ServiceStats struct {
	Driver                  string     `json:"driver"`
	PingMS                  int64      `json:"ping_ms"`
	ReadingsTotal           int64      `json:"readings_total"`
	HourlyRows              int64      `json:"hourly_rows"`
	DailyRows               int64      `json:"daily_rows"`
	LatestReadingAt         *time.Time `json:"latest_reading_at"`
	LatestReadingAgeSeconds *int64     `json:"latest_reading_age_seconds"`
}

// ServiceStats returns database health and table counters.
func (s *Store) ServiceStats(ctx context.Context) (out *ServiceStats, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	defer func() { s.track("service_stats", start, err) }()

	if err := s.db.PingContext(ctx); err != nil {
		return nil, err
	}

	out = &ServiceStats{
		Driver: s.driver,
		PingMS: time.Since(start).Milliseconds(),
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weather_data;`).Scan(&out.ReadingsTotal); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weather_data_hourly;`).Scan(&out.HourlyRows); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weather_data_daily;`).Scan(&out.DailyRows); err != nil {
		return nil, err
	}

	var latest any
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(`timestamp`) FROM weather_data;").Scan(&latest); err != nil {
		return nil, err
	}
	if latest != nil {
		t, err := asTime(latest)
		if err != nil {
			return nil, err
		}
		t = t.In(s.location)
		age := int64(time.Since(t).Seconds())
		out.LatestReadingAt = &t
		out.LatestReadingAgeSeconds = &age
	}

	return out, nil
}
