package weatherdb

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNoReading = errors.New("no weather reading stored")

// Reading is the newest row of weather_data, one value per registry metric
// in registry order.
type Reading struct {
	Columns []string
	Values  []any
}

// FetchLatestReading reads the most recent station row. Timestamp columns
// are converted into the display location.
func (s *Store) FetchLatestReading(ctx context.Context) (Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	reading, err := s.fetchLatest(ctx)
	if errors.Is(err, ErrNoReading) {
		s.track("latest_reading", start, nil)
	} else {
		s.track("latest_reading", start, err)
	}
	return reading, err
}

func (s *Store) fetchLatest(ctx context.Context) (Reading, error) {
	rows, err := s.db.QueryContext(ctx, s.latestSQL)
	if err != nil {
		return Reading{}, fmt.Errorf("query latest reading: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Reading{}, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Reading{}, fmt.Errorf("query latest reading: %w", err)
		}
		return Reading{}, ErrNoReading
	}

	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return Reading{}, fmt.Errorf("scan latest reading: %w", err)
	}

	values := make([]any, len(raw))
	for i, v := range raw {
		v = normalize(v)
		if i < len(s.timestamps) && s.timestamps[i] && v != nil {
			t, err := asTime(v)
			if err != nil {
				return Reading{}, fmt.Errorf("latest reading column %q: %w", cols[i], err)
			}
			v = t.In(s.location)
		}
		values[i] = v
	}

	return Reading{Columns: s.columns, Values: values}, rows.Err()
}
