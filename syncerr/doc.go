// Package syncerr classifies the errors produced while planning and running a
// layer transfer. Callers use IsKind to tell input problems (configuration,
// protocol) from problems worth retrying (transport, store).
package syncerr
