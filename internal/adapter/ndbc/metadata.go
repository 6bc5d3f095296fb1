package ndbc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// MetadataRoot is the expected root element of the station metadata document.
const MetadataRoot = "stations"

// Metadata summarizes the station metadata document. It is used only to
// confirm the document is live and well formed.
type Metadata struct {
	Stations    int
	MetStations int
}

// ParseMetadata checks that data is well-formed XML rooted at <stations> and
// counts the stations whose history includes meteorological data (met="y").
// A document with no such station is rejected.
func ParseMetadata(data []byte) (Metadata, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		md        Metadata
		depth     int
		sawRoot   bool
		inStation bool
		hasMet    bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Metadata{}, fmt.Errorf("parse station metadata: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				if t.Name.Local != MetadataRoot {
					return Metadata{}, fmt.Errorf("unexpected metadata root <%s>, want <%s>", t.Name.Local, MetadataRoot)
				}
				sawRoot = true
				continue
			}
			switch {
			case depth == 2 && t.Name.Local == "station":
				inStation = true
				hasMet = false
				md.Stations++
			case inStation && t.Name.Local == "history" && attr(t, "met") == "y":
				hasMet = true
			}
		case xml.EndElement:
			if depth == 2 && inStation {
				if hasMet {
					md.MetStations++
				}
				inStation = false
			}
			depth--
		}
	}

	if !sawRoot {
		return Metadata{}, errors.New("station metadata is empty")
	}
	if md.MetStations == 0 {
		return md, errors.New("no stations with met data found in metadata")
	}
	return md, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
