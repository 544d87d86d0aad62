// Package parser reads OpenWeatherMap XML forecast documents.
package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/paulettemal/dashboardFin/internal/model"
)

// ErrEmptyDocument is returned when the body holds no XML element at all.
var ErrEmptyDocument = errors.New("forecast feed has no root element")

// Parse streams an XML forecast document and extracts the name, every
// position element and every time block in document order. Elements are
// matched by local name at any depth.
func Parse(r io.Reader) (*model.FeedDocument, error) {
	dec := xml.NewDecoder(r)
	doc := &model.FeedDocument{}
	sawRoot := false
	nameSeen := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse forecast feed: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true

		switch start.Name.Local {
		case "name":
			if nameSeen {
				continue
			}
			var name string
			if err := dec.DecodeElement(&name, &start); err != nil {
				return nil, fmt.Errorf("parse forecast name: %w", err)
			}
			doc.Name = model.Attr(name)
			nameSeen = true
		case "location":
			// Not consumed: the provider nests the position element inside
			// the outer location block.
			doc.Positions = append(doc.Positions, positionFromAttrs(start.Attr))
		case "time":
			var block model.FeedTime
			if err := dec.DecodeElement(&block, &start); err != nil {
				return nil, fmt.Errorf("parse forecast time block %d: %w", len(doc.Times), err)
			}
			doc.Times = append(doc.Times, block)
		}
	}

	if !sawRoot {
		return nil, ErrEmptyDocument
	}
	return doc, nil
}

func positionFromAttrs(attrs []xml.Attr) model.FeedPosition {
	var pos model.FeedPosition
	for _, a := range attrs {
		switch a.Name.Local {
		case "latitude":
			pos.Latitude = model.Attr(a.Value)
		case "longitude":
			pos.Longitude = model.Attr(a.Value)
		case "altitude":
			pos.Altitude = model.Attr(a.Value)
		}
	}
	return pos
}
