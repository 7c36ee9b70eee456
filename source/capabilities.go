package source

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/viant/wfsync/layer"
)

type capabilitiesDoc struct {
	FeatureTypes []struct {
		Name string `xml:"Name"`
	} `xml:"FeatureTypeList>FeatureType"`
}

func parseCapabilities(body []byte) ([]layer.ID, error) {
	var doc capabilitiesDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing capabilities: %w", err)
	}
	out := make([]layer.ID, 0, len(doc.FeatureTypes))
	for _, ft := range doc.FeatureTypes {
		if name := strings.TrimSpace(ft.Name); name != "" {
			out = append(out, layer.ID(name))
		}
	}
	return out, nil
}

// parseHits reads the feature count from the root element of a hits
// response: numberOfFeatures in 1.x, numberMatched in 2.x.
func parseHits(body []byte) (int64, error) {
	root, err := rootElement(body)
	if err != nil {
		return 0, err
	}
	for _, name := range []string{"numberOfFeatures", "numberMatched"} {
		for _, a := range root.Attr {
			if a.Name.Local == name {
				n, err := strconv.ParseInt(a.Value, 10, 64)
				if err != nil {
					return 0, fmt.Errorf("parsing %s=%q: %w", name, a.Value, err)
				}
				return n, nil
			}
		}
	}
	return 0, errors.New("hits response carries no feature count")
}

// exceptionReport detects OGC exception documents, which some servers return
// with a 200 status.
func exceptionReport(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return "", false
	}
	dec := xml.NewDecoder(bytes.NewReader(trimmed))
	var inReport bool
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !inReport {
				if t.Name.Local != "ExceptionReport" && t.Name.Local != "ServiceExceptionReport" {
					return "", false
				}
				inReport = true
			}
		case xml.CharData:
			if s := strings.TrimSpace(string(t)); s != "" {
				if text.Len() > 0 {
					text.WriteString("; ")
				}
				text.WriteString(s)
			}
		}
	}
	if !inReport {
		return "", false
	}
	return text.String(), true
}

func rootElement(body []byte) (xml.StartElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, errors.New("empty document")
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

var typeNamePattern = regexp.MustCompile(`(?i)[?&]typeNames?=([^&]+)`)

func layerFromQuery(uri string) layer.ID {
	m := typeNamePattern.FindStringSubmatch(uri)
	if m == nil {
		return ""
	}
	if un, err := url.QueryUnescape(m[1]); err == nil {
		return layer.ID(un)
	}
	return layer.ID(m[1])
}
