// Package cmd holds the cobra subcommands added to the CLI root.
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lslview/lslview/internal/logging"
	"github.com/lslview/lslview/internal/lsl/sim"
	"github.com/lslview/lslview/internal/streams"
)

// CreateResolveCmd returns the resolve command: discover streams and print
// their descriptors.
func CreateResolveCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Discover streams on the local network",
		Long:  `Runs one discovery pass and prints the descriptors of every stream found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := streams.NewResolver(sim.New(), logging.GetLogger("resolver"))
			descriptors, err := resolver.Resolve(cmd.Context(), timeout)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "UID\tNAME\tTYPE\tCHANNELS\tRATE\tFORMAT\tHOST")
			for _, d := range descriptors {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%s\t%s\n",
					d.UID, d.Name, d.Type, d.ChannelCount, d.NominalSrate, d.ChannelFormat, d.Hostname)
			}
			return w.Flush()
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "Discovery timeout")
	return cmd
}
