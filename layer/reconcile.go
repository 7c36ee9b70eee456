package layer

// Intersect returns the layers present on both sides, in normalised form and
// sorted lexicographically. Duplicates collapse to a single entry.
func Intersect(source, destination []ID) []ID {
	configured := make(map[ID]struct{}, len(destination))
	for _, id := range destination {
		configured[id.Normalize()] = struct{}{}
	}

	seen := make(map[ID]struct{}, len(source))
	var out []ID
	for _, id := range source {
		n := id.Normalize()
		if _, ok := configured[n]; !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	Sort(out)
	return out
}
