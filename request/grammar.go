package request

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/syncerr"
)

const (
	// V1Host is the host serving the 1.x grammar.
	V1Host = "wfs.data.linz.govt.nz"
	// V2Host is the host serving the 2.x grammar.
	V2Host = "data.linz.govt.nz"
	// V2ServiceRoot prefixes the path of every 2.x request.
	V2ServiceRoot = "/services;key="
)

var (
	schemePattern  = regexp.MustCompile(`(?i)^https?://`)
	servicePattern = regexp.MustCompile(`(?i)wfs\?`)
	v1KeyPattern   = regexp.MustCompile(`(?i)/([a-f0-9]{32})/(v/x|wfs\?)`)
	v2KeyPattern   = regexp.MustCompile(`(?i);key=([a-f0-9]{32})/`)
)

// grammar is the per-version part of URI construction and validation.
type grammar interface {
	kind() Grammar
	// root returns the path prefix up to, not including, "/wfs".
	root(base, key string) string
	// changesetRoot is root for changeset (incremental) requests.
	changesetRoot(base, key string, id layer.ID) string
	capabilities(base, key, service string, v Version) string
	extractKey(cs string) (string, bool)
	validateHost(u *url.URL) error
	keyPattern() *regexp.Regexp
}

func grammarFor(g Grammar) grammar {
	if g == Grammar20 {
		return wfs20{}
	}
	return wfs11{}
}

type wfs11 struct{}

func (wfs11) kind() Grammar { return Grammar11 }

func (wfs11) root(base, key string) string { return base + key }

func (wfs11) changesetRoot(base, key string, id layer.ID) string {
	return base + key + id.PathSegment() + layer.ChangesetSuffix
}

func (w wfs11) capabilities(base, key, _ string, v Version) string {
	return w.root(base, key) + "/wfs?service=WFS&version=" + v.String() + "&request=GetCapabilities"
}

func (wfs11) extractKey(cs string) (string, bool) { return submatch(v1KeyPattern, cs) }

func (wfs11) validateHost(u *url.URL) error {
	if !strings.EqualFold(u.Hostname(), V1Host) {
		return errors.New("require '" + V1Host + "' in address string")
	}
	return nil
}

func (wfs11) keyPattern() *regexp.Regexp { return v1KeyPattern }

type wfs20 struct{}

func (wfs20) kind() Grammar { return Grammar20 }

func (wfs20) root(base, key string) string { return base + strings.TrimPrefix(V2ServiceRoot, "/") + key }

func (w wfs20) changesetRoot(base, key string, _ layer.ID) string { return w.root(base, key) }

func (w wfs20) capabilities(base, key, service string, _ Version) string {
	return w.root(base, key) + "/wfs?service=" + service + "&request=GetCapabilities"
}

func (wfs20) extractKey(cs string) (string, bool) { return submatch(v2KeyPattern, cs) }

func (wfs20) validateHost(u *url.URL) error {
	if !strings.EqualFold(u.Hostname(), V2Host) {
		return errors.New("require '" + V2Host + "' in address string")
	}
	if !strings.HasPrefix(strings.ToLower(u.EscapedPath()), V2ServiceRoot) {
		return errors.New("require '" + V2ServiceRoot + "<key>' service root")
	}
	return nil
}

func (wfs20) keyPattern() *regexp.Regexp { return v2KeyPattern }

func submatch(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// validate runs the structural checks of g against cs in order: scheme,
// host/service root, API key, service marker.
func validate(g grammar, cs string) error {
	const op = "request.validate_connection"
	if !schemePattern.MatchString(cs) {
		return syncerr.Protocol(op, "scheme", cs, errors.New("'http' or 'https' declaration required"))
	}
	u, err := url.Parse(cs)
	if err != nil {
		return syncerr.Protocol(op, "host", cs, err)
	}
	if err := g.validateHost(u); err != nil {
		return syncerr.Protocol(op, "host", cs, err)
	}
	if !g.keyPattern().MatchString(cs) {
		return syncerr.Protocol(op, "key", cs, errors.New("require API key (32 char hex) in address string"))
	}
	if !servicePattern.MatchString(cs) {
		return syncerr.Protocol(op, "service", cs, errors.New("need to specify 'wfs?' service"))
	}
	return nil
}

var typeNamePattern = regexp.MustCompile(`(?i)[?&]typeNames?=([^&]+)`)

// layerFromURI returns the typeName carried by a connection string.
func layerFromURI(cs string) layer.ID {
	m, ok := submatch(typeNamePattern, cs)
	if !ok {
		return ""
	}
	if un, err := url.QueryUnescape(m); err == nil {
		m = un
	}
	return layer.ID(m)
}

// baseOf returns "<scheme>://<host>/" of a connection string.
func baseOf(cs string) string {
	u, err := url.Parse(cs)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}
