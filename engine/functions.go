package engine

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"
	"time"

	sqlite "modernc.org/sqlite"

	"github.com/viant/wfsync/layer"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterFunctions registers wfs_layer and wfs_date with the driver so they
// are available on connections opened after this call. Open calls it; it is
// safe to call repeatedly.
//
//	wfs_layer(text)  normalised layer id: 'v:x12-changeset' -> 'x12'
//	wfs_date(text)   yyyy-mm-dd day of an RFC 3339 or yyyy-mm-dd timestamp
func RegisterFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("wfs_layer", 1, wfsLayerImpl); err != nil && !alreadyRegistered(err) {
			registerErr = err
			return
		}
		if err := sqlite.RegisterDeterministicScalarFunction("wfs_date", 1, wfsDateImpl); err != nil && !alreadyRegistered(err) {
			registerErr = err
		}
	})
	return registerErr
}

func alreadyRegistered(err error) bool {
	return strings.Contains(err.Error(), "already registered")
}

func asText(name string, arg driver.Value) (string, bool, error) {
	switch v := arg.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case []byte:
		return string(v), true, nil
	default:
		return "", false, fmt.Errorf("%s: unsupported argument type %T; want TEXT", name, arg)
	}
}

func wfsLayerImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("wfs_layer: expected 1 argument, got %d", len(args))
	}
	s, ok, err := asText("wfs_layer", args[0])
	if err != nil || !ok {
		return nil, err
	}
	return string(layer.ID(s).Normalize()), nil
}

func wfsDateImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("wfs_date: expected 1 argument, got %d", len(args))
	}
	s, ok, err := asText("wfs_date", args[0])
	if err != nil || !ok {
		return nil, err
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02"), nil
		}
	}
	return nil, fmt.Errorf("wfs_date: cannot parse %q", s)
}
