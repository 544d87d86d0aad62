package dashboard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulettemal/dashboardFin/internal/model"
)

var ErrUnknownVariable = errors.New("unknown chart variable")

// Variables lists the interval fields the chart can plot, in selector order.
var Variables = []string{
	"precipitation",
	"humidity",
	"clouds",
	"temperature",
	"tempMin",
	"tempMax",
	"windSpeed",
	"pressure",
}

var fieldOf = map[string]func(model.ForecastInterval) string{
	"precipitation": func(i model.ForecastInterval) string { return i.Precipitation },
	"humidity":      func(i model.ForecastInterval) string { return i.Humidity },
	"clouds":        func(i model.ForecastInterval) string { return i.Clouds },
	"temperature":   func(i model.ForecastInterval) string { return i.Temperature },
	"tempMin":       func(i model.ForecastInterval) string { return i.TempMin },
	"tempMax":       func(i model.ForecastInterval) string { return i.TempMax },
	"windSpeed":     func(i model.ForecastInterval) string { return i.WindSpeed },
	"pressure":      func(i model.ForecastInterval) string { return i.Pressure },
}

// BuildSeries extracts one numeric field from every interval. Labels are the
// interval start; fields that do not parse as numbers become gaps.
func BuildSeries(intervals []model.ForecastInterval, variable string) (model.Series, error) {
	field, ok := fieldOf[variable]
	if !ok {
		return model.Series{}, fmt.Errorf("%w: %q", ErrUnknownVariable, variable)
	}

	points := make([]model.SeriesPoint, 0, len(intervals))
	for _, in := range intervals {
		points = append(points, model.SeriesPoint{
			Label: in.DateStart,
			Value: parseValue(field(in)),
		})
	}
	return model.Series{Variable: variable, Points: points}, nil
}

func parseValue(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
