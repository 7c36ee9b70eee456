package request

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/viant/wfsync/syncerr"
)

// Grammar is the URI grammar family a protocol version maps to.
type Grammar int

const (
	// Grammar11 serves WFS 1.0.0 and 1.1.0.
	Grammar11 Grammar = iota + 1
	// Grammar20 serves WFS 2.0.0.
	Grammar20
)

func (g Grammar) String() string {
	switch g {
	case Grammar11:
		return "WFS-1.1.0"
	case Grammar20:
		return "WFS-2.0.0"
	default:
		return fmt.Sprintf("Grammar(%d)", int(g))
	}
}

// knownVersions lists the accepted version spellings. Anything else,
// including otherwise valid semver such as "1.1" or "v2.0.0", is rejected.
var knownVersions = map[string]Grammar{
	"1.0":   Grammar11,
	"1.0.0": Grammar11,
	"1.1.0": Grammar11,
	"2.0":   Grammar20,
	"2.0.0": Grammar20,
}

// Version is a parsed protocol version.
type Version struct {
	Grammar Grammar
	v       *semver.Version
}

// String returns the three-part version sent in the version parameter.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// ParseVersion maps a configured version string onto its grammar.
func ParseVersion(s string) (Version, error) {
	g, ok := knownVersions[s]
	if !ok {
		return Version{}, syncerr.Configf("request.parse_version", "version", s,
			"unrecognised WFS version (want 1.0.0, 1.1.0 or 2.0.0)")
	}
	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, syncerr.Config("request.parse_version", "version", s, err)
	}
	return Version{Grammar: g, v: sv}, nil
}
