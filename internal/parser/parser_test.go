package parser

import (
	"os"
	"strings"
	"testing"

	"github.com/paulettemal/dashboardFin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ProviderFeed(t *testing.T) {
	f, err := os.Open("testdata/guayaquil_forecast.xml")
	require.NoError(t, err)
	defer f.Close()

	doc, err := Parse(f)
	require.NoError(t, err)

	assert.Equal(t, model.Attr("Guayaquil"), doc.Name)
	require.Len(t, doc.Positions, 2)
	assert.Equal(t, model.FeedPosition{}, doc.Positions[0])
	assert.Equal(t, model.Attr("-2.1962"), doc.Positions[1].Latitude)
	assert.Equal(t, model.Attr("-79.8862"), doc.Positions[1].Longitude)
	assert.Equal(t, model.Attr("0"), doc.Positions[1].Altitude)

	require.Len(t, doc.Times, 3)
	first := doc.Times[0]
	assert.Equal(t, model.Attr("2024-01-01T03:00:00"), first.From)
	assert.Equal(t, model.Attr("2024-01-01T06:00:00"), first.To)
	require.Len(t, first.Temperature, 1)
	assert.Equal(t, model.Attr("299.35"), first.Temperature[0].Value)
	assert.Equal(t, model.Attr("298.12"), first.Temperature[0].Min)
	require.Len(t, first.Clouds, 1)
	assert.Equal(t, model.Attr("100"), first.Clouds[0].All)
	require.Len(t, first.WindDirection, 1)
	assert.Equal(t, model.Attr("Southwest"), first.WindDirection[0].Name)

	// Precipitation without a value attribute is still an element.
	require.Len(t, doc.Times[1].Precipitation, 1)
	assert.Equal(t, model.Attr(""), doc.Times[1].Precipitation[0].Value)

	last := doc.Times[2]
	assert.Empty(t, last.Precipitation)
	assert.Empty(t, last.Clouds)
	assert.Equal(t, model.Attr(""), last.Temperature[0].Min)
}

func TestParse_FirstNameWins(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<w><location><name>Quito</name></location><name>Other</name></w>`))
	require.NoError(t, err)
	assert.Equal(t, model.Attr("Quito"), doc.Name)
}

func TestParse_KeepsDocumentOrderAndRepeats(t *testing.T) {
	xml := `<w>
		<time from="b"><temperature value="1"/><temperature value="2"/></time>
		<time from="a"/>
	</w>`
	doc, err := Parse(strings.NewReader(xml))
	require.NoError(t, err)
	require.Len(t, doc.Times, 2)
	assert.Equal(t, model.Attr("b"), doc.Times[0].From)
	assert.Equal(t, model.Attr("a"), doc.Times[1].From)
	require.Len(t, doc.Times[0].Temperature, 2)
	assert.Equal(t, model.Attr("1"), doc.Times[0].Temperature[0].Value)
}

func TestParse_NoTimesNoPositions(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<weatherdata/>`))
	require.NoError(t, err)
	assert.Empty(t, doc.Times)
	assert.Empty(t, doc.Positions)
	assert.Equal(t, model.Attr(""), doc.Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "whitespace only", body: "  \n "},
		{name: "unclosed root", body: "<weatherdata><forecast>"},
		{name: "mismatched tags", body: "<a><b></a></b>"},
		{name: "json error body", body: `{"cod":"404","message":"city not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tt.body))
			assert.Error(t, err)
			assert.Nil(t, doc)
		})
	}
}

func TestParse_EmptyDocumentSentinel(t *testing.T) {
	_, err := Parse(strings.NewReader(`<?xml version="1.0" encoding="UTF-8"?>`))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}
