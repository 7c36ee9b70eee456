package transfer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/viant/wfsync/feature"
	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/request"
	"github.com/viant/wfsync/syncerr"
)

const testKey = "a3624a518c67440daf97789975cc7d23"

var destinationNow = time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := time.Parse(request.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestBuilder(t *testing.T) request.Builder {
	t.Helper()
	b, err := request.New(request.Params{URL: "https://wfs.data.linz.govt.nz/", Key: testKey, Version: "1.1.0", Format: "JSON"}, nil)
	if err != nil {
		t.Fatalf("request.New failed: %v", err)
	}
	return b
}

type fakeSource struct {
	mu        sync.Mutex
	layers    []layer.ID
	failOn    map[string]error // substring of uri -> error
	reads     []string
	counts    []string
	capCalls  int
	readDelay time.Duration
}

func (s *fakeSource) Read(ctx context.Context, uri string) (*feature.Payload, error) {
	if s.readDelay > 0 {
		time.Sleep(s.readDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, uri)
	for frag, err := range s.failOn {
		if strings.Contains(uri, frag) {
			return nil, err
		}
	}
	return &feature.Payload{URI: uri, Body: []byte(`{"type":"FeatureCollection","features":[]}`)}, nil
}

func (s *fakeSource) LayerNames(ctx context.Context, capabilitiesURI string) ([]layer.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capCalls++
	return s.layers, nil
}

func (s *fakeSource) Count(ctx context.Context, hitsURI string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = append(s.counts, hitsURI)
	return 42, nil
}

func (s *fakeSource) networkCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capCalls + len(s.reads) + len(s.counts)
}

type fakeDestination struct {
	mu      sync.Mutex
	configs []layer.Config
	marks   map[layer.ID]time.Time
	writes  []string
}

func newFakeDestination(cfgs ...layer.Config) *fakeDestination {
	return &fakeDestination{configs: cfgs, marks: map[layer.ID]time.Time{}}
}

func (d *fakeDestination) Write(ctx context.Context, p *feature.Payload, table string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes = append(d.writes, table)
	return 3, nil
}

func (d *fakeDestination) DestinationURI(ctx context.Context, id layer.ID) (string, error) {
	return "lds_" + string(id.Normalize()), nil
}

func (d *fakeDestination) Current(ctx context.Context, offset time.Duration) (time.Time, error) {
	return destinationNow.Add(offset), nil
}

func (d *fakeDestination) LastModified(ctx context.Context, id layer.ID) (time.Time, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ts, ok := d.marks[id.Normalize()]
	return ts, ok, nil
}

func (d *fakeDestination) SetLastModified(ctx context.Context, id layer.ID, ts time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.marks[id.Normalize()] = ts
	return nil
}

func (d *fakeDestination) Layers(ctx context.Context) ([]layer.Config, error) {
	return d.configs, nil
}

func (d *fakeDestination) mark(id layer.ID) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ts, ok := d.marks[id.Normalize()]
	return ts, ok
}

var errUnreachable = syncerr.Transport("source.read", errors.New("connection refused"))
