package request

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/syncerr"
)

// DateLayout is the layout of every date boundary in a request.
const DateLayout = "2006-01-02"

// DefaultService is sent when no service name is configured.
const DefaultService = "WFS"

// SupportedFormats lists the output formats passed through to the server.
// Any other configured format is omitted so the server default applies.
var SupportedFormats = []string{"GML2", "GML3", "JSON"}

// Params describe the source endpoint.
type Params struct {
	// URL is the base address, e.g. "http://wfs.data.linz.govt.nz/".
	URL string
	// Key is the 32 hex character API key. Ignored when ConnString is set.
	Key string
	// Service is the service name; empty means DefaultService.
	Service string
	// Version selects the grammar; see ParseVersion.
	Version string
	// Format is the requested output format.
	Format string
	// ConnString is an optional pre-built GetFeature URI. When set it is
	// returned in place of synthesised feature URIs after validation.
	ConnString string
}

// Builder produces WFS query URIs for one endpoint.
type Builder interface {
	// Grammar reports the grammar family in use.
	Grammar() Grammar
	// CapabilitiesURI builds the GetCapabilities query.
	CapabilitiesURI() string
	// SourceURI builds a GetFeature query for the full current state of id.
	SourceURI(id layer.ID, cql string) (string, error)
	// SourceURIIncremental builds a GetFeature query against the changeset
	// type of id bounded by [from, to).
	SourceURIIncremental(id layer.ID, from, to time.Time, cql string) (string, error)
	// SourceURIFeatureCount builds a resultType=hits query for id.
	SourceURIFeatureCount(id layer.ID) string
	// ValidateConnectionString checks cs against the grammar and returns the
	// layer it names, if any.
	ValidateConnectionString(cs string) (layer.ID, error)
}

type builder struct {
	g       grammar
	version Version
	base    string
	key     string
	service string
	format  string
	conn    string
	logger  log.Logger
}

// New returns the Builder for p.Version. A connection string, when present,
// is validated here and supplies the API key and, if p.URL is empty, the
// base address.
func New(p Params, logger log.Logger) (Builder, error) {
	const op = "request.new"
	if logger == nil {
		logger = log.NewNopLogger()
	}
	v, err := ParseVersion(p.Version)
	if err != nil {
		return nil, err
	}
	b := &builder{
		g:       grammarFor(v.Grammar),
		version: v,
		base:    p.URL,
		key:     p.Key,
		service: p.Service,
		format:  p.Format,
		conn:    p.ConnString,
		logger:  log.With(logger, "component", "request", "grammar", v.Grammar),
	}
	if b.service == "" {
		b.service = DefaultService
	}

	if b.conn != "" {
		if _, err := b.ValidateConnectionString(b.conn); err != nil {
			return nil, err
		}
		key, ok := b.g.extractKey(b.conn)
		if !ok {
			return nil, syncerr.Config(op, "key", "", errors.New("cannot parse API key from connection string"))
		}
		b.key = key
		if b.base == "" {
			b.base = baseOf(b.conn)
		}
	}
	if err := ValidateAPIKey(b.key); err != nil {
		return nil, err
	}
	if b.base == "" {
		return nil, syncerr.Config(op, "url", "", errors.New("source URL is required"))
	}
	if _, err := url.Parse(b.base); err != nil {
		return nil, syncerr.Config(op, "url", b.base, err)
	}
	if !strings.HasSuffix(b.base, "/") {
		b.base += "/"
	}
	return b, nil
}

func (b *builder) Grammar() Grammar { return b.g.kind() }

func (b *builder) CapabilitiesURI() string {
	uri := b.g.capabilities(b.base, b.key, b.service, b.version)
	level.Debug(b.logger).Log("op", "capabilities", "uri", uri)
	return uri
}

func (b *builder) SourceURI(id layer.ID, cql string) (string, error) {
	if id == "" {
		return "", syncerr.Config("request.source_uri", "layer", "", errors.New("no layer name provided"))
	}
	if b.conn != "" {
		if err := b.checkPinned(id, time.Time{}, time.Time{}); err != nil {
			return "", err
		}
		// A changeset connection string read as a full layer would skip the
		// table replace yet still advance the watermark to now.
		uriLayer := layerFromURI(b.conn)
		if uriLayer != uriLayer.TrimChangeset() || strings.Contains(strings.ToLower(b.conn), "viewparams=") {
			return "", syncerr.Configf("request.source_uri", "layer", string(uriLayer),
				"connection string selects a changeset, a full replicate needs the layer itself")
		}
		return b.conn, nil
	}
	q := b.query(b.g.root(b.base, b.key))
	q.add("request", "GetFeature")
	q.add("typeName", string(id.Canonical()))
	b.tail(q, cql)
	uri := q.String()
	level.Debug(b.logger).Log("op", "source_uri", "layer", id, "uri", uri)
	return uri, nil
}

func (b *builder) SourceURIIncremental(id layer.ID, from, to time.Time, cql string) (string, error) {
	if id == "" {
		return "", syncerr.Config("request.source_uri_incremental", "layer", "", errors.New("no layer name provided"))
	}
	if b.conn != "" {
		if err := b.checkPinned(id, from, to); err != nil {
			return "", err
		}
		return b.conn, nil
	}
	q := b.query(b.g.changesetRoot(b.base, b.key, id))
	q.add("request", "GetFeature")
	q.add("typeName", string(id.Changeset()))
	q.add("viewparams", viewParams(from, to))
	b.tail(q, cql)
	uri := q.String()
	level.Debug(b.logger).Log("op", "source_uri_incremental", "layer", id, "uri", uri)
	return uri, nil
}

func (b *builder) SourceURIFeatureCount(id layer.ID) string {
	// outputFormat has no effect on a hits response and is omitted.
	q := b.query(b.g.root(b.base, b.key))
	q.add("request", "GetFeature")
	q.add("resultType", "hits")
	q.add("typeName", string(id.Canonical()))
	uri := q.String()
	level.Debug(b.logger).Log("op", "source_uri_feature_count", "layer", id, "uri", uri)
	return uri
}

func (b *builder) ValidateConnectionString(cs string) (layer.ID, error) {
	if err := validate(b.g, cs); err != nil {
		return "", err
	}
	return layerFromURI(cs), nil
}

// checkPinned confirms the connection string agrees with an explicit layer
// and with any non-zero date bound.
func (b *builder) checkPinned(id layer.ID, from, to time.Time) error {
	const op = "request.check_connection"
	uriLayer, err := b.ValidateConnectionString(b.conn)
	if err != nil {
		return err
	}
	if id != "" && !layer.Same(uriLayer, id) {
		return syncerr.Configf(op, "layer", string(id),
			"layer in connection string differs from selected layer: %q != %q", uriLayer, id)
	}
	if !from.IsZero() && !strings.Contains(b.conn, "from:"+from.Format(DateLayout)) {
		return syncerr.Configf(op, "fromdate", from.Format(DateLayout),
			"date in connection string does not match explicit from date")
	}
	if !to.IsZero() && !strings.Contains(b.conn, "to:"+to.Format(DateLayout)) {
		return syncerr.Configf(op, "todate", to.Format(DateLayout),
			"date in connection string does not match explicit to date")
	}
	return nil
}

func (b *builder) query(root string) *queryString {
	q := &queryString{path: root + "/wfs"}
	q.add("service", b.service)
	q.add("version", b.version.String())
	return q
}

// tail appends the output format, when supported, and the CQL filter.
func (b *builder) tail(q *queryString, cql string) {
	if isSupportedFormat(b.format) {
		q.add("outputFormat", b.format)
	}
	if cql != "" {
		q.add("cql_filter", url.QueryEscape(cql))
	}
}

func isSupportedFormat(f string) bool {
	for _, s := range SupportedFormats {
		if f == s {
			return true
		}
	}
	return false
}

func viewParams(from, to time.Time) string {
	return "from:" + from.Format(DateLayout) + ";to:" + to.Format(DateLayout)
}

// queryString keeps parameters in insertion order; url.Values would sort
// them and escape the viewparams separators.
type queryString struct {
	path   string
	params []string
}

func (q *queryString) add(k, v string) { q.params = append(q.params, k+"="+v) }

func (q *queryString) String() string {
	return q.path + "?" + strings.Join(q.params, "&")
}
