package cli

import (
	"errors"
	"strings"

	"github.com/viant/wfsync/config"
	"github.com/viant/wfsync/syncerr"
)

type action int

const (
	actionSync action = iota
	actionInit
	actionClean
)

// positional is the parsed form of the positional arguments: an optional
// output type token and an optional init or clean pseudo-argument.
type positional struct {
	destination config.DestinationType
	action      action
}

var errInitClean = errors.New("init and clean are mutually exclusive")

func parseArgs(args []string) (positional, error) {
	const op = "cli.args"
	var p positional
	for _, a := range args {
		switch strings.ToLower(a) {
		case "init":
			if p.action != actionSync {
				return positional{}, syncerr.Config(op, "action", a, errInitClean)
			}
			p.action = actionInit
			continue
		case "clean":
			if p.action != actionSync {
				return positional{}, syncerr.Config(op, "action", a, errInitClean)
			}
			p.action = actionClean
			continue
		}
		t, err := config.ParseDestinationType(a)
		if err != nil {
			return positional{}, syncerr.Config(op, "output", a, err)
		}
		if p.destination != "" && p.destination != t {
			return positional{}, syncerr.Configf(op, "output", a, "conflicts with output type %q", p.destination)
		}
		p.destination = t
	}
	return p, nil
}
