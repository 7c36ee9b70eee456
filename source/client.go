package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/viant/wfsync/feature"
	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/syncerr"
)

// Config holds HTTP transport settings.
type Config struct {
	// Timeout bounds a whole request including reading the body. Feature
	// downloads can be large, so the default is generous.
	Timeout         time.Duration
	DialTimeout     time.Duration
	KeepAlive       time.Duration
	TLSHandshake    time.Duration
	ResponseHeader  time.Duration
	IdleConnTimeout time.Duration
	MaxIdleConns    int
}

// DefaultConfig returns the transport settings used by NewClient.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Minute,
		DialTimeout:     10 * time.Second,
		KeepAlive:       30 * time.Second,
		TLSHandshake:    10 * time.Second,
		ResponseHeader:  5 * time.Minute,
		IdleConnTimeout: 90 * time.Second,
		MaxIdleConns:    16,
	}
}

// NewHTTPClient builds an *http.Client from cfg.
func NewHTTPClient(cfg Config) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshake,
		ResponseHeaderTimeout: cfg.ResponseHeader,
	}
	return &http.Client{Transport: tr, Timeout: cfg.Timeout}
}

// Client reads from a WFS endpoint.
type Client struct {
	http   *http.Client
	logger log.Logger
	now    func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(cl *Client) { cl.now = now }
}

// NewClient returns a Client with DefaultConfig transport settings.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:   NewHTTPClient(DefaultConfig()),
		logger: log.NewNopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.With(c.logger, "component", "source")
	return c
}

// Read fetches a GetFeature response. The payload is marked incremental when
// the query targets a changeset type.
func (c *Client) Read(ctx context.Context, uri string) (*feature.Payload, error) {
	level.Info(c.logger).Log("op", "read", "uri", uri)
	body, ctype, err := c.get(ctx, uri)
	if err != nil {
		return nil, syncerr.Transport("source.read", err)
	}
	id := layerFromQuery(uri)
	return &feature.Payload{
		URI:         uri,
		Layer:       id.TrimChangeset(),
		Incremental: id != "" && id != id.TrimChangeset(),
		ContentType: ctype,
		Body:        body,
		FetchedAt:   c.now(),
	}, nil
}

// LayerNames fetches the capabilities document and returns the advertised
// feature type names.
func (c *Client) LayerNames(ctx context.Context, capabilitiesURI string) ([]layer.ID, error) {
	body, _, err := c.get(ctx, capabilitiesURI)
	if err != nil {
		return nil, syncerr.Transport("source.capabilities", err)
	}
	names, err := parseCapabilities(body)
	if err != nil {
		return nil, syncerr.Transport("source.capabilities", err)
	}
	level.Debug(c.logger).Log("op", "capabilities", "layers", len(names))
	return names, nil
}

// Count runs a resultType=hits query and returns the number of matching
// features.
func (c *Client) Count(ctx context.Context, hitsURI string) (int64, error) {
	body, _, err := c.get(ctx, hitsURI)
	if err != nil {
		return 0, syncerr.Transport("source.count", err)
	}
	n, err := parseHits(body)
	if err != nil {
		return 0, syncerr.Transport("source.count", err)
	}
	return n, nil
}

func (c *Client) get(ctx context.Context, uri string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "building request")
	}
	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "reading response body")
	}
	level.Debug(c.logger).Log("op", "get", "status", resp.StatusCode, "bytes", len(body), "duration", c.now().Sub(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status %s: %s", resp.Status, snippet(body))
	}
	if msg, ok := exceptionReport(body); ok {
		return nil, "", errors.Errorf("service exception: %s", msg)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func snippet(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > 200 {
		b = append(b[:200:200], "..."...)
	}
	return string(b)
}
