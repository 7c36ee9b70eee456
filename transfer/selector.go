package transfer

import (
	"errors"
	"strings"

	"github.com/viant/wfsync/layer"
	"github.com/viant/wfsync/syncerr"
)

type selectorKind int

const (
	selectAll selectorKind = iota
	selectLayer
	selectGroup
)

type selector struct {
	kind   selectorKind
	layer  layer.ID
	groups []string
}

// parseSelector validates the layer and group arguments without touching the
// source or destination.
func parseSelector(layerArg, groupArg string) (selector, error) {
	const op = "transfer.select"
	layerArg = strings.TrimSpace(layerArg)
	groupArg = strings.TrimSpace(groupArg)
	if layerArg != "" && groupArg != "" && layerArg != All {
		return selector{}, syncerr.Config(op, "group", groupArg, errors.New("layer and group are mutually exclusive"))
	}
	if groupArg != "" {
		var groups []string
		for _, g := range strings.Split(groupArg, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
		if len(groups) == 0 {
			return selector{}, syncerr.Config(op, "group", groupArg, errors.New("empty layer group"))
		}
		return selector{kind: selectGroup, groups: groups}, nil
	}
	if layerArg == "" || layerArg == All {
		return selector{kind: selectAll}, nil
	}
	id := layer.ID(layerArg)
	if !id.Valid() || id != id.TrimChangeset() {
		return selector{}, syncerr.Configf(op, "layer", layerArg, "unrecognised layer, want v:x<digits> or x<digits>")
	}
	return selector{kind: selectLayer, layer: id}, nil
}
