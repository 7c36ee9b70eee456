package transfer

import (
	"strings"
	"time"

	"github.com/viant/wfsync/request"
	"github.com/viant/wfsync/syncerr"
)

// All is the date sentinel forcing a full replicate.
const All = "ALL"

// BoundKind classifies one end of a date range.
type BoundKind int

const (
	// BoundAbsent means derive the bound automatically.
	BoundAbsent BoundKind = iota
	// BoundAll is the ALL sentinel.
	BoundAll
	// BoundDate is a calendar date.
	BoundDate
)

// Bound is one end of a date range.
type Bound struct {
	Kind BoundKind
	Date time.Time
}

func (b Bound) String() string {
	switch b.Kind {
	case BoundAll:
		return All
	case BoundDate:
		return b.Date.Format(request.DateLayout)
	default:
		return ""
	}
}

// ParseBound parses s as yyyy-mm-dd or the literal ALL; empty means absent. field names
// the bound in the returned configuration error.
func ParseBound(field, s string) (Bound, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Bound{}, nil
	case s == All:
		return Bound{Kind: BoundAll}, nil
	}
	d, err := time.Parse(request.DateLayout, s)
	if err != nil {
		return Bound{}, syncerr.Config("transfer.parse_date", field, s, err)
	}
	return Bound{Kind: BoundDate, Date: d}, nil
}

// DateRange is the requested from/to pair.
type DateRange struct {
	From, To Bound
}

// ParseDateRange parses both bounds.
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := ParseBound("fromdate", from)
	if err != nil {
		return DateRange{}, err
	}
	t, err := ParseBound("todate", to)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{From: f, To: t}, nil
}

// Full reports whether either bound is ALL.
func (r DateRange) Full() bool {
	return r.From.Kind == BoundAll || r.To.Kind == BoundAll
}

// Defined reports whether both bounds are dates.
func (r DateRange) Defined() bool {
	return r.From.Kind == BoundDate && r.To.Kind == BoundDate
}

// day truncates t to its UTC calendar day.
func day(t time.Time) string {
	return t.UTC().Format(request.DateLayout)
}

// after reports whether to falls on a later day than from.
func after(to, from time.Time) bool {
	return day(to) > day(from)
}
