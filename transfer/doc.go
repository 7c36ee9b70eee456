// Package transfer decides, per layer, how to bring a destination up to date
// with a WFS source and drives the read/write/watermark cycle.
//
// A run is planned before anything is read from the source: dates and the
// layer selector are parsed, the layer set is resolved, every layer gets a
// mode and its request URI. Any configuration or protocol error surfaces at
// this point and no watermark is touched. The planned tasks then execute on a
// bounded worker pool; a layer's watermark advances only after its write
// succeeds.
//
// Modes:
//   - full: either date bound is ALL; the whole layer is replaced and the
//     watermark set to the destination clock sampled before the read.
//   - incremental: both bounds are dates; the changeset for [from, to) is
//     applied and the watermark set to to. When to is not after from (day
//     granularity) the layer is a no-op.
//   - auto: a bound is absent; from defaults to the watermark and to to the
//     destination clock, then as incremental. A layer with no watermark and
//     no explicit from is replicated in full.
package transfer
