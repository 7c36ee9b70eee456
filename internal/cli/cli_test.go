package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/viant/wfsync/config"
	"github.com/viant/wfsync/engine"
	"github.com/viant/wfsync/syncerr"
)

const testKey = "a3624a518c67440daf97789975cc7d23"

const capabilitiesXML = `<?xml version="1.0" encoding="UTF-8"?>
<wfs:WFS_Capabilities version="1.1.0" xmlns:wfs="http://www.opengis.net/wfs">
  <FeatureTypeList>
    <FeatureType><Name>v:x1</Name></FeatureType>
    <FeatureType><Name>v:x2</Name></FeatureType>
    <FeatureType><Name>v:x3</Name></FeatureType>
  </FeatureTypeList>
</wfs:WFS_Capabilities>`

const x1Full = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"x1.1","geometry":null,"properties":{"id":1,"name":"a"}},
 {"type":"Feature","id":"x1.2","geometry":null,"properties":{"id":2,"name":"b"}}
]}`

const x1Changes = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"c.1","geometry":null,"properties":{"id":1,"name":"a2","__change__":"UPDATE"}},
 {"type":"Feature","id":"c.2","geometry":null,"properties":{"id":2,"__change__":"DELETE"}}
]}`

const x2Full = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"x2.7","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"road"}}
]}`

func newWFS(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.RawQuery
		switch {
		case strings.Contains(q, "request=GetCapabilities"):
			_, _ = w.Write([]byte(capabilitiesXML))
		case strings.Contains(q, "resultType=hits"):
			_, _ = w.Write([]byte(`<wfs:FeatureCollection xmlns:wfs="http://www.opengis.net/wfs" numberOfFeatures="2"/>`))
		case strings.Contains(q, "typeName=v:x1-changeset"):
			_, _ = w.Write([]byte(x1Changes))
		case strings.Contains(q, "typeName=v:x1"):
			_, _ = w.Write([]byte(x1Full))
		case strings.Contains(q, "typeName=v:x2"):
			_, _ = w.Write([]byte(x2Full))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type fixture struct {
	dir    string
	config string
	dbPath string
}

func newFixture(t *testing.T, srv *httptest.Server) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{dir: dir, config: filepath.Join(dir, "wfsync.yaml"), dbPath: filepath.Join(dir, "lds.sqlite")}
	yaml := `source:
  url: ` + srv.URL + `/
  key: ` + testKey + `
  version: "1.1.0"
  format: JSON
destination:
  type: sqlite
  path: ` + f.dbPath + `
layers:
  - id: v:x1
    pkey: id
  - id: v:x2
    name: roads
`
	if err := os.WriteFile(f.config, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return f
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func tableRows(t *testing.T, dbPath, table string) map[string]string {
	t.Helper()
	db, err := engine.Open(dbPath)
	if err != nil {
		t.Fatalf("engine.Open failed: %v", err)
	}
	defer db.Close()
	rows, err := db.Query(`SELECT fid, properties FROM "` + table + `" ORDER BY fid`)
	if err != nil {
		t.Fatalf("select %s failed: %v", table, err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var fid string
		var props sql.NullString
		if err := rows.Scan(&fid, &props); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		out[fid] = props.String
	}
	return out
}

func TestSync_EndToEnd(t *testing.T) {
	srv := newWFS(t)
	f := newFixture(t, srv)

	if _, err := execute(t, "sl", "init", "--config", f.config); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	out, err := execute(t, "--config", f.config, "-f", "ALL")
	if err != nil {
		t.Fatalf("full sync failed: %v\n%s", err, out)
	}
	for _, want := range []string{"[OK] x1 full", "[OK] x2 full", "Features:  3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "x3") {
		t.Fatalf("unconfigured layer x3 was synced:\n%s", out)
	}
	if diff := cmp.Diff(map[string]string{"1": `{"id":1,"name":"a"}`, "2": `{"id":2,"name":"b"}`}, tableRows(t, f.dbPath, "lds_x1")); diff != "" {
		t.Fatalf("lds_x1 after full sync (-want +got):\n%s", diff)
	}
	if got := tableRows(t, f.dbPath, "roads"); len(got) != 1 {
		t.Fatalf("roads rows = %v, want 1", got)
	}

	out, err = execute(t, "--config", f.config, "-l", "v:x1", "-f", "2020-01-01", "-t", "2020-02-01",
		"--metrics-file", filepath.Join(f.dir, "wfsync.prom"))
	if err != nil {
		t.Fatalf("incremental sync failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[OK] v:x1 incremental 2020-01-01..2020-02-01") {
		t.Fatalf("summary missing incremental line:\n%s", out)
	}
	if diff := cmp.Diff(map[string]string{"1": `{"id":1,"name":"a2"}`}, tableRows(t, f.dbPath, "lds_x1")); diff != "" {
		t.Fatalf("lds_x1 after changeset (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "wfsync.prom")); err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}

	out, err = execute(t, "status", "--config", f.config)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "2020-02-01") {
		t.Fatalf("status missing x1 watermark:\n%s", out)
	}

	if _, err := execute(t, "clean", "--config", f.config, "-l", "x1"); err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	out, err = execute(t, "status", "--config", f.config)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if strings.Contains(out, "x1 ") {
		t.Fatalf("x1 watermark survived clean:\n%s", out)
	}
}

func TestSync_NoopWindow(t *testing.T) {
	srv := newWFS(t)
	f := newFixture(t, srv)
	out, err := execute(t, "--config", f.config, "-l", "x1", "-f", "2020-02-01", "-t", "2020-02-01")
	if err != nil {
		t.Fatalf("noop sync failed: %v", err)
	}
	if !strings.Contains(out, "[NOOP] x1") {
		t.Fatalf("summary missing noop line:\n%s", out)
	}
}

func TestSync_Errors(t *testing.T) {
	srv := newWFS(t)
	f := newFixture(t, srv)

	_, err := execute(t, "--config", f.config, "-f", "01/02/2020")
	if !syncerr.IsKind(err, syncerr.KindConfig) || exitCode(err) != 2 {
		t.Fatalf("bad date error = %v, want config error", err)
	}
	_, err = execute(t, "pg", "--config", f.config)
	if !syncerr.IsKind(err, syncerr.KindConfig) || !strings.Contains(err.Error(), "not available") {
		t.Fatalf("pg error = %v, want unavailable output type", err)
	}
	_, err = execute(t, "shp", "--config", f.config)
	if !syncerr.IsKind(err, syncerr.KindConfig) || exitCode(err) != 2 {
		t.Fatalf("unknown output type error = %v (exit %d), want config error with exit 2", err, exitCode(err))
	}
	_, err = execute(t, "init", "clean", "--config", f.config)
	if exitCode(err) != 2 {
		t.Fatalf("init clean error = %v (exit %d), want exit 2", err, exitCode(err))
	}
}

func TestParseArgs(t *testing.T) {
	cases := []struct {
		args    []string
		want    positional
		wantErr bool
	}{
		{nil, positional{}, false},
		{[]string{"sl"}, positional{destination: config.DestinationSQLite}, false},
		{[]string{"spatialite", "init"}, positional{destination: config.DestinationSQLite, action: actionInit}, false},
		{[]string{"CLEAN"}, positional{action: actionClean}, false},
		{[]string{"init", "clean"}, positional{}, true},
		{[]string{"sl", "pg"}, positional{}, true},
		{[]string{"bogus"}, positional{}, true},
	}
	for _, c := range cases {
		got, err := parseArgs(c.args)
		if (err != nil) != c.wantErr {
			t.Errorf("parseArgs(%v) error = %v, wantErr %v", c.args, err, c.wantErr)
			continue
		}
		if err == nil && got != c.want {
			t.Errorf("parseArgs(%v) = %+v, want %+v", c.args, got, c.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(syncerr.Transport("source.read", errors.New("refused"))); got != 1 {
		t.Fatalf("exitCode(transport) = %d, want 1", got)
	}
	if got := exitCode(syncerr.Protocol("request.validate", "host", "example.com", errors.New("wrong host"))); got != 2 {
		t.Fatalf("exitCode(protocol) = %d, want 2", got)
	}
}
