package registry

// Section order of the current-conditions grid.
var wettaCategories = []string{
	"Temperatur",
	"Luftfeuchtigkeit",
	"Niederschlag",
	"Luftdruck",
	"Wind",
	"Sonne",
}

// The station reports pressure in inHg; 33.8639 converts to hPa.
var wettaMetrics = []Descriptor{
	Metric("ROUND(temp_outdoor_c, 1)", "Draußen", "Temperatur", WithID("current-temp-outdoor"), WithUnit("°C")),
	Metric("ROUND(temp_indoor_c, 1)", "Drinnen", "Temperatur", WithID("current-temp-indoor"), WithUnit("°C")),
	Metric("humidity_outdoor", "Draußen", "Luftfeuchtigkeit", WithUnit("%")),
	Metric("humidity_indoor", "Drinnen", "Luftfeuchtigkeit", WithUnit("%")),
	Metric("ROUND((barometer * 33.8639), 2)", "Relativ", "Luftdruck", WithID("current-pressure-relative"), WithUnit("hPa")),
	Metric("ROUND((pressure * 33.8639), 2)", "Absolut", "Luftdruck", WithID("current-pressure-absolut"), WithUnit("hPa")),
	Metric("wind_direction", "Richtung", "Wind", WithUnit("°"), WithFormatter(CompassBearing)),
	Metric("ROUND(wind_speed_kmh, 1)", "Geschwindigkeit", "Wind", WithID("current-wind-speed"), WithUnit("km/h")),
	Metric("ROUND(wind_gust_kmh, 1)", "Böe", "Wind", WithID("current-wind-gust"), WithUnit("km/h")),
	Metric("ROUND(rain_rate_mmph, 2)", "Rate", "Niederschlag", WithID("rain-rate"), WithUnit("mm/h")),
	Metric("ROUND(rain_event_mm, 2)", "Letztes Ereignis", "Niederschlag", WithID("rain-event"), WithUnit("mm")),
	Metric("ROUND(rain_hourly_mm, 2)", "Letzte Stunde", "Niederschlag", WithID("rain-hour"), WithUnit("mm")),
	Metric("ROUND(rain_daily_mm, 2)", "Dieser Tag", "Niederschlag", WithID("rain-day"), WithUnit("mm")),
	Metric("ROUND(rain_weekly_mm, 2)", "Diese Woche", "Niederschlag", WithID("rain-week"), WithUnit("mm")),
	Metric("ROUND(rain_monthly_mm, 2)", "Dieser Monat", "Niederschlag", WithID("rain-month"), WithUnit("mm")),
	Metric("radiation", "Sonnenstrahlung", "Sonne", WithUnit("kLux")),
	Metric("uv", "UV-Index", "Sonne"),
	Metric("`timestamp`", "Zeit", DefaultHeaderCategory, WithID("current-time"), WithFormatter(Timestamp)),
}

// Wetta returns the registry of the Wetta station in Wilsum.
func Wetta(opts ...Option) (*Registry, error) {
	return New(wettaCategories, wettaMetrics, opts...)
}
