package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/viant/wfsync/syncerr"
)

// Execute runs the wfsync command line. It exits with status 2 when the
// input (flags, dates, configuration, connection string) is at fault and
// with status 1 on any other failure.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case syncerr.IsInput(err):
		return 2
	default:
		return 1
	}
}

type options struct {
	layer           string
	group           string
	from            string
	to              string
	cql             string
	source          string
	destination     string
	userConfig      string
	configPath      string
	workers         int
	continueOnError bool
	metricsFile     string
	debug           bool
}

func newRootCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "wfsync [sl|pg|ms|fg] [init|clean]",
		Short: "Replicate WFS layers incrementally into a local store",
		Long: `wfsync copies vector layers from a WFS server into a destination, fetching
only the changes made since the last successful sync of each layer.

Dates are yyyy-mm-dd. ALL for either date forces a full replicate; leaving a
date out derives it from the stored watermark or the destination clock.`,
		SilenceUsage: true,
		Args:         cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.layer, "layer", "l", "", "Layer to sync (v:x<digits>), or ALL")
	f.StringVarP(&o.group, "group", "g", "", "Comma separated layer groups to sync")
	f.StringVarP(&o.from, "fromdate", "f", "", "Start date (yyyy-mm-dd) or ALL")
	f.StringVarP(&o.to, "todate", "t", "", "End date (yyyy-mm-dd) or ALL")
	f.StringVarP(&o.cql, "cql", "c", "", "CQL filter overriding configured filters")
	f.StringVarP(&o.source, "source", "s", "", "Raw WFS connection string")
	f.StringVarP(&o.destination, "destination", "d", "", "Destination database path")
	f.StringVarP(&o.userConfig, "userconf", "u", "", "User configuration file overriding the main file")
	f.IntVar(&o.workers, "workers", 1, "Number of layers transferred concurrently")
	f.BoolVar(&o.continueOnError, "continue-on-error", false, "Keep transferring other layers after a failure")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write run metrics to this Prometheus textfile")

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "wfsync.yaml", "Main configuration file")
	pf.BoolVar(&o.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(versionCmd())
	cmd.AddCommand(statusCmd(&o))
	return cmd
}
