package model

import "time"

// LocationIndicator is one labeled fact about the observed location.
type LocationIndicator struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Value    string `json:"value"`
}

// ForecastInterval is a single forecast window as shown by the dashboard
// widgets. Temperatures are Celsius strings with two decimals or "N/A".
type ForecastInterval struct {
	DateStart          string `json:"dateStart"`
	DateEnd            string `json:"dateEnd"`
	Precipitation      string `json:"precipitation"`
	Humidity           string `json:"humidity"`
	Clouds             string `json:"clouds"`
	Temperature        string `json:"temperature"`
	TempMin            string `json:"tempMin"`
	TempMax            string `json:"tempMax"`
	WindSpeed          string `json:"windSpeed"`
	WindDirection      string `json:"windDirection"`
	Pressure           string `json:"pressure"`
	WeatherDescription string `json:"weatherDescription"`
}

// Forecast is a normalized feed for one location.
type Forecast struct {
	Location   string              `json:"location"`
	Indicators []LocationIndicator `json:"indicators"`
	Intervals  []ForecastInterval  `json:"intervals"`
	Cached     bool                `json:"cached"`
	FetchedAt  time.Time           `json:"fetched_at"`
}

// SeriesPoint is one chart sample. Value is nil when the interval field is
// not numeric.
type SeriesPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// Series is the data the chart plots for a selected variable.
type Series struct {
	Variable string        `json:"variable"`
	Points   []SeriesPoint `json:"points"`
}
