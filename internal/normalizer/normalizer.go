// Package normalizer turns a parsed forecast feed into the collections the
// dashboard widgets consume.
package normalizer

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulettemal/dashboardFin/internal/model"
)

// NotAvailable marks a value the feed did not provide.
const NotAvailable = "N/A"

const kelvinOffset = 273.15

// Normalize returns the location indicators and the forecast intervals of doc.
func Normalize(doc *model.FeedDocument) ([]model.LocationIndicator, []model.ForecastInterval) {
	return Indicators(doc), Intervals(doc)
}

// Indicators extracts the city name and the coordinates of the location.
// The provider repeats the location element, with the coordinates on the
// nested (second) one, so the second position is used when there is more
// than one.
func Indicators(doc *model.FeedDocument) []model.LocationIndicator {
	if doc == nil {
		doc = &model.FeedDocument{}
	}
	pos := selectPosition(doc.Positions)

	return []model.LocationIndicator{
		{Title: "City", Subtitle: "ciudad", Value: doc.Name.Or("")},
		{Title: "Latitude", Subtitle: "latitud", Value: pos.Latitude.Or("")},
		{Title: "Longitude", Subtitle: "longitud", Value: pos.Longitude.Or("")},
		{Title: "Altitude", Subtitle: "altitud", Value: pos.Altitude.Or("")},
	}
}

func selectPosition(positions []model.FeedPosition) model.FeedPosition {
	switch len(positions) {
	case 0:
		return model.FeedPosition{}
	case 1:
		return positions[0]
	default:
		return positions[1]
	}
}

// Intervals converts every time block, in document order. A malformed block
// degrades field by field and is never dropped.
func Intervals(doc *model.FeedDocument) []model.ForecastInterval {
	if doc == nil {
		return []model.ForecastInterval{}
	}
	intervals := make([]model.ForecastInterval, 0, len(doc.Times))
	for _, t := range doc.Times {
		intervals = append(intervals, interval(t))
	}
	return intervals
}

func interval(t model.FeedTime) model.ForecastInterval {
	temp := first(t.Temperature)
	return model.ForecastInterval{
		DateStart:          FormatDateTime(t.From.Or(NotAvailable)),
		DateEnd:            FormatDateTime(t.To.Or(NotAvailable)),
		Precipitation:      first(t.Precipitation).Value.Or("0"),
		Humidity:           first(t.Humidity).Value.Or("0"),
		Clouds:             first(t.Clouds).All.Or("0"),
		Temperature:        KelvinToCelsius(temp.Value.Or(NotAvailable)),
		TempMin:            KelvinToCelsius(temp.Min.Or(NotAvailable)),
		TempMax:            KelvinToCelsius(temp.Max.Or(NotAvailable)),
		WindSpeed:          first(t.WindSpeed).Mps.Or(NotAvailable),
		WindDirection:      first(t.WindDirection).Name.Or(NotAvailable),
		Pressure:           first(t.Pressure).Value.Or(NotAvailable),
		WeatherDescription: first(t.Symbol).Name.Or(NotAvailable),
	}
}

// first returns the first element, or the zero value (all attributes missing).
func first[T any](elems []T) T {
	var zero T
	if len(elems) == 0 {
		return zero
	}
	return elems[0]
}

// KelvinToCelsius converts a Kelvin reading to Celsius with two decimals.
// Anything that is not a finite number, "N/A" included, yields "N/A".
func KelvinToCelsius(kelvin string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(kelvin), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(v-kelvinOffset, 'f', 2, 64)
}

// FormatDateTime turns "2024-01-01T03:00:00" into "2024-01-01\n03:00".
// A token without a time part keeps the date part and an empty time, so the
// "N/A" placeholder becomes "N/A\n".
func FormatDateTime(dateTime string) string {
	date, clock, _ := strings.Cut(dateTime, "T")
	if r := []rune(clock); len(r) > 5 {
		clock = string(r[:5])
	}
	return date + "\n" + clock
}
