// Package source reads layers from a WFS endpoint over HTTP: feature
// payloads, the advertised layer list and feature counts.
package source
