// Package filter resolves which CQL filter applies to a layer query.
package filter

// Resolve returns the first non-empty filter in precedence order: command
// line, destination configuration, per-layer configuration. An empty string
// is treated as absent, never as an explicit empty filter.
func Resolve(cmdline, destination, layer string) (string, bool) {
	for _, cql := range [...]string{cmdline, destination, layer} {
		if cql != "" {
			return cql, true
		}
	}
	return "", false
}
