package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func statusCmd(o *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "status",
		Short: "Show the stored watermark of every layer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			e, err := openEnv(ctx, cmd, *o, "")
			if err != nil {
				return err
			}
			defer e.close()

			marks, err := e.store.Watermarks(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(marks) == 0 {
				fmt.Fprintln(w, "no layer has been synced")
				return nil
			}
			for _, m := range marks {
				fmt.Fprintf(w, "%-10s %s  (synced %s)\n", m.Layer, m.Day, humanize.RelTime(m.UpdatedAt, time.Now(), "ago", "from now"))
			}
			return nil
		},
	}
	c.Flags().StringVarP(&o.destination, "destination", "d", "", "Destination database path")
	return c
}
