package request

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/viant/wfsync/syncerr"
)

const testKey = "a3624a518c67440daf97789975cc7d23"

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newBuilder(t *testing.T, p Params) Builder {
	t.Helper()
	b, err := New(p, nil)
	if err != nil {
		t.Fatalf("New(%+v) failed: %v", p, err)
	}
	return b
}

func opError(t *testing.T, err error) *syncerr.OpError {
	t.Helper()
	var oe *syncerr.OpError
	if !errors.As(err, &oe) {
		t.Fatalf("expected *syncerr.OpError, got %T: %v", err, err)
	}
	return oe
}

func TestSourceURI_V11(t *testing.T) {
	b := newBuilder(t, Params{URL: "http://wfs.data.linz.govt.nz/", Key: testKey, Version: "1.1.0", Format: "GML2"})

	uri, err := b.SourceURI("v:x123", "")
	if err != nil {
		t.Fatalf("SourceURI failed: %v", err)
	}
	want := "http://wfs.data.linz.govt.nz/" + testKey +
		"/wfs?service=WFS&version=1.1.0&request=GetFeature&typeName=v:x123&outputFormat=GML2"
	if uri != want {
		t.Fatalf("SourceURI = %s\nwant %s", uri, want)
	}
	if strings.Count(uri, "?") != 1 {
		t.Fatalf("expected exactly one '?' in %s", uri)
	}
	if strings.Contains(uri, "cql_filter") {
		t.Fatalf("unexpected cql_filter in %s", uri)
	}
}

func TestSourceURI_ParameterOrder(t *testing.T) {
	b := newBuilder(t, Params{URL: "http://wfs.data.linz.govt.nz", Key: testKey, Version: "1.1.0", Format: "GML2"})
	uri, err := b.SourceURI("v:x123", "")
	if err != nil {
		t.Fatalf("SourceURI failed: %v", err)
	}
	last := -1
	for _, p := range []string{"service=WFS", "version=1.1.0", "request=GetFeature", "typeName=v:x123", "outputFormat=GML2"} {
		i := strings.Index(uri, p)
		if i < 0 {
			t.Fatalf("%s missing from %s", p, uri)
		}
		if i <= last {
			t.Fatalf("%s out of order in %s", p, uri)
		}
		last = i
	}
}

func TestSourceURI_FormatAndCQL(t *testing.T) {
	b := newBuilder(t, Params{URL: "http://wfs.data.linz.govt.nz/", Key: testKey, Version: "1.0.0", Format: "XML"})
	uri, err := b.SourceURI("x5", "id>5")
	if err != nil {
		t.Fatalf("SourceURI failed: %v", err)
	}
	if strings.Contains(uri, "outputFormat") {
		t.Fatalf("unsupported format must be omitted: %s", uri)
	}
	if !strings.HasSuffix(uri, "&typeName=v:x5&cql_filter=id%3E5") {
		t.Fatalf("unexpected tail: %s", uri)
	}
	if !strings.Contains(uri, "version=1.0.0") {
		t.Fatalf("1.0.0 alias must be sent as given: %s", uri)
	}
	if b.Grammar() != Grammar11 {
		t.Fatalf("1.0.0 must use the 1.1 grammar, got %v", b.Grammar())
	}
}

func TestSourceURIIncremental_V11(t *testing.T) {
	b := newBuilder(t, Params{URL: "http://wfs.data.linz.govt.nz/", Key: testKey, Version: "1.1.0", Format: "JSON"})
	uri, err := b.SourceURIIncremental("v:x772", date("2020-01-01"), date("2020-02-01"), "")
	if err != nil {
		t.Fatalf("SourceURIIncremental failed: %v", err)
	}
	want := "http://wfs.data.linz.govt.nz/" + testKey + "/v/x772-changeset" +
		"/wfs?service=WFS&version=1.1.0&request=GetFeature&typeName=v:x772-changeset" +
		"&viewparams=from:2020-01-01;to:2020-02-01&outputFormat=JSON"
	if uri != want {
		t.Fatalf("SourceURIIncremental = %s\nwant %s", uri, want)
	}
}

func TestURIs_V20(t *testing.T) {
	b := newBuilder(t, Params{URL: "http://data.linz.govt.nz/", Key: testKey, Version: "2.0", Format: "JSON"})

	caps := b.CapabilitiesURI()
	wantCaps := "http://data.linz.govt.nz/services;key=" + testKey + "/wfs?service=WFS&request=GetCapabilities"
	if caps != wantCaps {
		t.Fatalf("CapabilitiesURI = %s\nwant %s", caps, wantCaps)
	}

	uri, err := b.SourceURIIncremental("x9", date("2021-05-01"), date("2021-06-01"), "")
	if err != nil {
		t.Fatalf("SourceURIIncremental failed: %v", err)
	}
	wantInc := "http://data.linz.govt.nz/services;key=" + testKey +
		"/wfs?service=WFS&version=2.0.0&request=GetFeature&typeName=v:x9-changeset" +
		"&viewparams=from:2021-05-01;to:2021-06-01&outputFormat=JSON"
	if uri != wantInc {
		t.Fatalf("SourceURIIncremental = %s\nwant %s", uri, wantInc)
	}

	hits := b.SourceURIFeatureCount("v:x9")
	wantHits := "http://data.linz.govt.nz/services;key=" + testKey +
		"/wfs?service=WFS&version=2.0.0&request=GetFeature&resultType=hits&typeName=v:x9"
	if hits != wantHits {
		t.Fatalf("SourceURIFeatureCount = %s\nwant %s", hits, wantHits)
	}
}

func TestCapabilitiesURI_V11(t *testing.T) {
	b := newBuilder(t, Params{URL: "http://wfs.data.linz.govt.nz/", Key: testKey, Version: "1.1.0", Service: "wfs"})
	want := "http://wfs.data.linz.govt.nz/" + testKey + "/wfs?service=WFS&version=1.1.0&request=GetCapabilities"
	if got := b.CapabilitiesURI(); got != want {
		t.Fatalf("CapabilitiesURI = %s\nwant %s", got, want)
	}
}

func TestNew_Errors(t *testing.T) {
	cases := []struct {
		name  string
		p     Params
		kind  syncerr.Kind
		field string
	}{
		{"unknown version", Params{URL: "http://x/", Key: testKey, Version: "3.0"}, syncerr.KindConfig, "version"},
		{"semver spelling not accepted", Params{URL: "http://x/", Key: testKey, Version: "v2.0.0"}, syncerr.KindConfig, "version"},
		{"short key", Params{URL: "http://x/", Key: testKey[1:], Version: "1.1.0"}, syncerr.KindConfig, "key"},
		{"missing key", Params{URL: "http://x/", Version: "1.1.0"}, syncerr.KindConfig, "key"},
		{"missing url", Params{Key: testKey, Version: "1.1.0"}, syncerr.KindConfig, "url"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.p, nil)
			if err == nil {
				t.Fatalf("expected error")
			}
			oe := opError(t, err)
			if oe.Kind != c.kind || oe.Field != c.field {
				t.Fatalf("got kind=%s field=%s, want kind=%s field=%s (%v)", oe.Kind, oe.Field, c.kind, c.field, err)
			}
		})
	}
}

func TestSourceURI_NoLayer(t *testing.T) {
	b := newBuilder(t, Params{URL: "http://wfs.data.linz.govt.nz/", Key: testKey, Version: "1.1.0"})
	if _, err := b.SourceURI("", ""); !syncerr.IsKind(err, syncerr.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
