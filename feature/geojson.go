package feature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ChangeColumn is the property marking the change kind of a changeset feature.
const ChangeColumn = "__change__"

// Change is the kind of change a changeset feature records.
type Change string

const (
	ChangeNone   Change = ""
	ChangeInsert Change = "INSERT"
	ChangeUpdate Change = "UPDATE"
	ChangeDelete Change = "DELETE"
)

// Feature is a decoded GeoJSON feature. Geometry and Properties keep their
// JSON encoding so stores can persist them without a geometry model.
type Feature struct {
	ID         string
	Geometry   json.RawMessage
	Properties map[string]any
	Change     Change
}

// Key returns the value of property pkey, or the feature id when pkey is empty
// or the property is missing.
func (f Feature) Key(pkey string) string {
	if pkey != "" {
		if v, ok := f.Properties[pkey]; ok && v != nil {
			return scalarString(v)
		}
	}
	return f.ID
}

// PropertiesJSON encodes the properties without the change column.
func (f Feature) PropertiesJSON() ([]byte, error) {
	if _, ok := f.Properties[ChangeColumn]; !ok {
		return json.Marshal(f.Properties)
	}
	props := make(map[string]any, len(f.Properties))
	for k, v := range f.Properties {
		if k != ChangeColumn {
			props[k] = v
		}
	}
	return json.Marshal(props)
}

type collectionDoc struct {
	Type     string       `json:"type"`
	Features []featureDoc `json:"features"`
}

type featureDoc struct {
	ID         json.RawMessage `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// DecodeCollection decodes a GeoJSON FeatureCollection.
func DecodeCollection(body []byte) ([]Feature, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc collectionDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("feature: decode collection: %w", err)
	}
	if doc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("feature: expected FeatureCollection, got %q", doc.Type)
	}
	out := make([]Feature, 0, len(doc.Features))
	for i, fd := range doc.Features {
		f := Feature{
			ID:         rawID(fd.ID),
			Geometry:   fd.Geometry,
			Properties: fd.Properties,
		}
		if f.Properties == nil {
			f.Properties = map[string]any{}
		}
		change, err := parseChange(f.Properties[ChangeColumn])
		if err != nil {
			return nil, fmt.Errorf("feature: features[%d]: %w", i, err)
		}
		f.Change = change
		out = append(out, f)
	}
	return out, nil
}

func parseChange(v any) (Change, error) {
	if v == nil {
		return ChangeNone, nil
	}
	s, ok := v.(string)
	if !ok {
		return ChangeNone, fmt.Errorf("%s must be a string, got %T", ChangeColumn, v)
	}
	switch c := Change(strings.ToUpper(strings.TrimSpace(s))); c {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return c, nil
	default:
		return ChangeNone, fmt.Errorf("unknown %s value %q", ChangeColumn, s)
	}
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
