package layer

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// Prefix is the namespace prefix the source advertises layers under.
	Prefix = "v:"
	// ChangesetSuffix turns a layer type name into its changeset type name.
	ChangesetSuffix = "-changeset"
)

var idPattern = regexp.MustCompile(`^(?i:v:)?x\d+$`)

// ID identifies a layer. It may be held in canonical ("v:x123"), normalised
// ("x123") or changeset ("v:x123-changeset") form; all three compare equal
// through Normalize.
type ID string

// Valid reports whether id, with any changeset suffix removed, has the
// "v:x<digits>" or "x<digits>" shape.
func (id ID) Valid() bool {
	return idPattern.MatchString(string(id.TrimChangeset()))
}

// Normalize strips the namespace prefix and the changeset suffix.
func (id ID) Normalize() ID {
	s := string(id.TrimChangeset())
	if len(s) >= len(Prefix) && strings.EqualFold(s[:len(Prefix)], Prefix) {
		s = s[len(Prefix):]
	}
	return ID(s)
}

// Canonical returns the "v:x<digits>" form.
func (id ID) Canonical() ID {
	return Prefix + id.Normalize()
}

// Changeset returns the changeset type name of the canonical layer.
func (id ID) Changeset() ID {
	return id.Canonical() + ChangesetSuffix
}

// TrimChangeset removes a trailing changeset suffix if present.
func (id ID) TrimChangeset() ID {
	return ID(strings.TrimSuffix(string(id), ChangesetSuffix))
}

// PathSegment renders the layer as the URL path fragment used by changeset
// endpoints, e.g. "/v/x123".
func (id ID) PathSegment() string {
	return "/" + strings.Replace(string(id.Canonical()), ":", "/", 1)
}

// Same reports whether a and b name the same logical layer.
func Same(a, b ID) bool {
	return a.Normalize() == b.Normalize()
}

func (id ID) String() string { return string(id) }

// Sort orders ids lexicographically in place.
func Sort(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
