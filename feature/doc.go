// Package feature carries feature payloads between a WFS source and a
// destination store and decodes the GeoJSON form of them.
//
// Changeset payloads tag every feature with ChangeColumn, whose value is one
// of the Change constants; full payloads carry no such property.
package feature
