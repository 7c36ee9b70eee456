// Package store is a SQLite destination for replicated layers. It keeps one
// table per layer plus three bookkeeping tables:
//   - wfsync_watermark: last successful sync time per layer
//   - wfsync_layer_config: per-layer name, key, filter and groups
//   - wfsync_run: per-layer outcome of every run
//
// Feature payloads must be GeoJSON. Full payloads replace a layer table;
// changeset payloads are applied row by row according to their change column.
package store
