package weatherdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens a SQLite database file for local development and tests.
func OpenSQLite(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS weather_data (
  "timestamp" DATETIME NOT NULL PRIMARY KEY,
  temp_outdoor_c REAL,
  temp_indoor_c REAL,
  humidity_outdoor INTEGER,
  humidity_indoor INTEGER,
  barometer REAL,
  pressure REAL,
  wind_direction INTEGER,
  wind_speed_kmh REAL,
  wind_gust_kmh REAL,
  rain_rate_mmph REAL,
  rain_event_mm REAL,
  rain_hourly_mm REAL,
  rain_daily_mm REAL,
  rain_weekly_mm REAL,
  rain_monthly_mm REAL,
  radiation REAL,
  uv INTEGER
);`, `
CREATE TABLE IF NOT EXISTS weather_data_hourly (
  timestamp_tz DATETIME NOT NULL PRIMARY KEY,
  temp_outdoor_c_avg REAL,
  temp_outdoor_c_min REAL,
  temp_outdoor_c_max REAL,
  rain_mm REAL
);`, `
CREATE TABLE IF NOT EXISTS weather_data_daily (
  date_tz DATE NOT NULL PRIMARY KEY,
  temp_outdoor_c_avg REAL,
  temp_outdoor_c_min REAL,
  temp_outdoor_c_max REAL,
  rain_mm REAL
);`,
}

// EnsureSQLiteSchema creates the station tables if they are missing.
func EnsureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// SeedResult counts the rows written by SeedDemoData.
type SeedResult struct {
	Readings   int `json:"readings"`
	HourlyRows int `json:"hourly_rows"`
	DailyRows  int `json:"daily_rows"`
}

// SeedDemoData writes a deterministic synthetic history ending at end:
// ten-minute readings for the last day plus hourly and daily aggregates
// for the given number of days. Aggregates use the wall clock of loc.
// Seeding is idempotent per timestamp.
func SeedDemoData(ctx context.Context, db *sql.DB, end time.Time, days int, loc *time.Location) (SeedResult, error) {
	if days <= 0 {
		return SeedResult{}, fmt.Errorf("days must be > 0, got %d", days)
	}
	if loc == nil {
		loc = time.UTC
	}
	end = end.UTC().Truncate(10 * time.Minute)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return SeedResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var res SeedResult

	readings, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO weather_data ("timestamp", temp_outdoor_c, temp_indoor_c, humidity_outdoor, humidity_indoor,
  barometer, pressure, wind_direction, wind_speed_kmh, wind_gust_kmh, rain_rate_mmph, rain_event_mm,
  rain_hourly_mm, rain_daily_mm, rain_weekly_mm, rain_monthly_mm, radiation, uv)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return SeedResult{}, err
	}
	defer readings.Close()

	for t := end.Add(-24 * time.Hour); !t.After(end); t = t.Add(10 * time.Minute) {
		local := t.In(loc)
		temp := demoTemperature(local)
		rain := demoRain(local)
		speed := round(8+6*math.Sin(float64(t.Unix())/5400), 1)
		if _, err := readings.ExecContext(ctx,
			t.Format(sqlDateTimeLayout),
			temp, round(20.5+math.Sin(float64(local.Hour())/4), 1),
			int(70-temp), 45,
			round(29.92+0.1*math.Sin(float64(t.Unix())/86400), 3), 29.53,
			(local.Hour()*37+local.Minute())%360, speed, round(speed*1.6, 1),
			rain*6, rain, rain, rain*3, rain*5, rain*9,
			round(math.Max(0, 60*math.Sin(math.Pi*(float64(local.Hour())-6)/12)), 1),
			int(math.Max(0, 6*math.Sin(math.Pi*(float64(local.Hour())-6)/12))),
		); err != nil {
			return SeedResult{}, fmt.Errorf("seed reading %s: %w", t.Format(time.RFC3339), err)
		}
		res.Readings++
	}

	hourly, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO weather_data_hourly (timestamp_tz, temp_outdoor_c_avg, temp_outdoor_c_min, temp_outdoor_c_max, rain_mm)
VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return SeedResult{}, err
	}
	defer hourly.Close()

	daily, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO weather_data_daily (date_tz, temp_outdoor_c_avg, temp_outdoor_c_min, temp_outdoor_c_max, rain_mm)
VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return SeedResult{}, err
	}
	defer daily.Close()

	lastDay := end.In(loc)
	lastDay = time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day(), 0, 0, 0, 0, loc)
	for d := days - 1; d >= 0; d-- {
		day := lastDay.AddDate(0, 0, -d)
		var sum, low, high, rainSum float64
		low, high = math.Inf(1), math.Inf(-1)
		hours := 0
		for h := 0; h < 24; h++ {
			at := day.Add(time.Duration(h) * time.Hour)
			if at.After(end) {
				break
			}
			temp := demoTemperature(at)
			rain := demoRain(at)
			wall := time.Date(at.Year(), at.Month(), at.Day(), at.Hour(), 0, 0, 0, time.UTC)
			if _, err := hourly.ExecContext(ctx, wall.Format(sqlDateTimeLayout),
				temp, round(temp-0.4, 1), round(temp+0.4, 1), rain); err != nil {
				return SeedResult{}, fmt.Errorf("seed hourly %s: %w", wall.Format(sqlDateTimeLayout), err)
			}
			res.HourlyRows++
			sum += temp
			low = math.Min(low, temp-0.4)
			high = math.Max(high, temp+0.4)
			rainSum += rain
			hours++
		}
		if hours == 0 {
			continue
		}
		if _, err := daily.ExecContext(ctx, day.Format(sqlDateLayout),
			round(sum/float64(hours), 1), round(low, 1), round(high, 1), round(rainSum, 2)); err != nil {
			return SeedResult{}, fmt.Errorf("seed daily %s: %w", day.Format(sqlDateLayout), err)
		}
		res.DailyRows++
	}

	if err := tx.Commit(); err != nil {
		return SeedResult{}, err
	}
	return res, nil
}

// demoTemperature follows a daily cycle peaking mid afternoon and a yearly
// cycle peaking in July.
func demoTemperature(local time.Time) float64 {
	daily := 5 * math.Sin(2*math.Pi*(float64(local.Hour())-9)/24)
	yearly := 9 * math.Sin(2*math.Pi*(float64(local.YearDay())-110)/365)
	return round(10+daily+yearly, 1)
}

func demoRain(local time.Time) float64 {
	if (local.YearDay()*7+local.Hour())%11 != 0 {
		return 0
	}
	return round(0.2+float64(local.Hour()%5)*0.3, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
