package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/viant/wfsync/request"
	"github.com/viant/wfsync/transfer"
)

func printSummary(w io.Writer, runID string, report *transfer.Report) {
	features, bytes := report.Totals()
	fmt.Fprintf(w, "Run:       %s\n", runID)
	fmt.Fprintf(w, "Begin:     %s\n", report.Started.Format(time.RFC3339))
	fmt.Fprintf(w, "Complete:  %s\n", report.Finished.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:  %s\n", report.Finished.Sub(report.Started).Round(time.Millisecond))
	fmt.Fprintf(w, "Features:  %s (%s)\n", humanize.Comma(int64(features)), humanize.Bytes(uint64(bytes)))
	fmt.Fprintln(w)

	for _, r := range report.Results {
		fmt.Fprintf(w, "- [%s] %s %s%s", statusLabel(r.Status), r.Layer, r.Mode, window(r))
		switch r.Status {
		case transfer.StatusOK:
			fmt.Fprintf(w, " %s features, %s, %s", humanize.Comma(int64(r.Features)),
				humanize.Bytes(uint64(r.Bytes)), r.Duration().Round(time.Millisecond))
		case transfer.StatusFailed:
			fmt.Fprintf(w, " error: %v", r.Err)
		}
		fmt.Fprintln(w)
	}
}

func statusLabel(s transfer.Status) string {
	switch s {
	case transfer.StatusOK:
		return "OK"
	case transfer.StatusNoop:
		return "NOOP"
	case transfer.StatusFailed:
		return "FAIL"
	default:
		return "SKIP"
	}
}

func window(r transfer.Result) string {
	if r.Full {
		return " (full)"
	}
	if r.From.IsZero() {
		return ""
	}
	return fmt.Sprintf(" %s..%s", r.From.UTC().Format(request.DateLayout), r.To.UTC().Format(request.DateLayout))
}
