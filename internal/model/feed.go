package model

// Attr is an optional XML attribute value. An absent attribute and an empty
// one are the same thing to the feed consumers.
type Attr string

// Or returns the attribute value, or fallback when it is missing.
func (a Attr) Or(fallback string) string {
	if a == "" {
		return fallback
	}
	return string(a)
}

// FeedDocument is the subset of an OpenWeatherMap XML forecast the dashboard reads.
type FeedDocument struct {
	// Name is the text of the first <name> element.
	Name Attr
	// Positions holds every <location> element in document order, nested ones included.
	Positions []FeedPosition
	// Times holds every <time> element in document order.
	Times []FeedTime
}

type FeedPosition struct {
	Latitude  Attr
	Longitude Attr
	Altitude  Attr
}

// FeedTime is one forecast window. Measurement elements are slices so that
// the first occurrence can win when the provider repeats an element.
type FeedTime struct {
	From          Attr                `xml:"from,attr"`
	To            Attr                `xml:"to,attr"`
	Symbol        []FeedSymbol        `xml:"symbol"`
	Precipitation []FeedValue         `xml:"precipitation"`
	WindDirection []FeedWindDirection `xml:"windDirection"`
	WindSpeed     []FeedWindSpeed     `xml:"windSpeed"`
	Temperature   []FeedTemperature   `xml:"temperature"`
	Pressure      []FeedValue         `xml:"pressure"`
	Humidity      []FeedValue         `xml:"humidity"`
	Clouds        []FeedClouds        `xml:"clouds"`
}

type FeedSymbol struct {
	Number Attr `xml:"number,attr"`
	Name   Attr `xml:"name,attr"`
}

// FeedValue covers the elements whose payload sits in a "value" attribute.
type FeedValue struct {
	Value Attr `xml:"value,attr"`
	Unit  Attr `xml:"unit,attr"`
}

type FeedWindDirection struct {
	Deg  Attr `xml:"deg,attr"`
	Code Attr `xml:"code,attr"`
	Name Attr `xml:"name,attr"`
}

type FeedWindSpeed struct {
	Mps  Attr `xml:"mps,attr"`
	Name Attr `xml:"name,attr"`
}

// FeedTemperature values are in Kelvin.
type FeedTemperature struct {
	Value Attr `xml:"value,attr"`
	Min   Attr `xml:"min,attr"`
	Max   Attr `xml:"max,attr"`
}

type FeedClouds struct {
	Value Attr `xml:"value,attr"`
	All   Attr `xml:"all,attr"`
}

// FeedPayload is a raw provider response as returned by the repository.
type FeedPayload struct {
	Location string
	Body     []byte
	Cached   bool
}
