// Package layer models WFS layer identifiers and the per-layer settings a
// destination keeps for them. Identifiers have a canonical form "v:x<digits>";
// the changeset form appends ChangesetSuffix and names the same layer.
package layer
