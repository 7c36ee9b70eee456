// Package logging sets up structured logging in a uniform way.
package logging

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Init returns a logfmt logger writing to w, configured with timestamps and
// source code locations. Debug records are dropped unless debug is set.
func Init(w io.Writer, debug bool) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	if debug {
		l = level.NewFilter(l, level.AllowDebug())
	} else {
		l = level.NewFilter(l, level.AllowInfo())
	}
	return log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}
