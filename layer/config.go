package layer

import "strings"

// Config holds the destination-side settings of a single layer.
type Config struct {
	// ID is the layer identifier, usually in canonical form.
	ID ID
	// Name is the destination table name; empty means derive from ID.
	Name string
	// PKey is the feature property used as the row key; empty means use the
	// GeoJSON feature id.
	PKey string
	// CQL is the per-layer filter, the lowest precedence filter source.
	CQL string
	// Groups lists the layer groups this layer belongs to.
	Groups []string
}

// InGroup reports whether c is tagged with any of groups (case-insensitive).
func (c Config) InGroup(groups []string) bool {
	for _, want := range groups {
		want = strings.TrimSpace(want)
		for _, g := range c.Groups {
			if strings.EqualFold(g, want) {
				return true
			}
		}
	}
	return false
}

// IDs extracts the layer ids of cfgs.
func IDs(cfgs []Config) []ID {
	out := make([]ID, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, c.ID)
	}
	return out
}

// Lookup finds the config of id, matching on the normalised form.
func Lookup(cfgs []Config, id ID) (Config, bool) {
	for _, c := range cfgs {
		if Same(c.ID, id) {
			return c, true
		}
	}
	return Config{}, false
}
