package transfer

import (
	"errors"
	"testing"
	"time"

	"github.com/viant/wfsync/syncerr"
)

func asOpError(err error, target **syncerr.OpError) bool {
	return errors.As(err, target)
}

func TestParseBound(t *testing.T) {
	cases := []struct {
		in   string
		kind BoundKind
		ok   bool
	}{
		{"", BoundAbsent, true},
		{"  ", BoundAbsent, true},
		{"ALL", BoundAll, true},
		{"all", 0, false},
		{"All", 0, false},
		{"2020-01-31", BoundDate, true},
		{"2020-1-31", 0, false},
		{"2020-02-30", 0, false},
		{"20200131", 0, false},
		{"2020-01-31T00:00:00Z", 0, false},
	}
	for _, c := range cases {
		b, err := ParseBound("fromdate", c.in)
		if c.ok != (err == nil) {
			t.Fatalf("ParseBound(%q) error = %v, want ok=%v", c.in, err, c.ok)
		}
		if err != nil {
			var oe *syncerr.OpError
			if !asOpError(err, &oe) || oe.Field != "fromdate" || oe.Value != c.in {
				t.Fatalf("ParseBound(%q) error = %v, want fromdate config error", c.in, err)
			}
			continue
		}
		if b.Kind != c.kind {
			t.Fatalf("ParseBound(%q) kind = %v, want %v", c.in, b.Kind, c.kind)
		}
	}
}

func TestDateRangeModes(t *testing.T) {
	r, err := ParseDateRange("2020-01-01", "ALL")
	if err != nil || !r.Full() || r.Defined() {
		t.Fatalf("ParseDateRange(date, ALL) = %+v, %v; want full", r, err)
	}
	r, err = ParseDateRange("2020-01-01", "2020-02-01")
	if err != nil || r.Full() || !r.Defined() {
		t.Fatalf("ParseDateRange(date, date) = %+v, %v; want defined", r, err)
	}
	r, err = ParseDateRange("", "2020-02-01")
	if err != nil || r.Full() || r.Defined() {
		t.Fatalf("ParseDateRange(absent, date) = %+v, %v; want auto", r, err)
	}
}

func TestAfterIsDayGranular(t *testing.T) {
	from := date("2020-01-01").Add(23 * time.Hour)
	to := date("2020-01-01").Add(time.Minute)
	if after(to, from) || after(from, to) {
		t.Fatalf("times on the same day must not compare as after")
	}
	if !after(date("2020-01-02"), from) {
		t.Fatalf("next day must compare as after")
	}
}
