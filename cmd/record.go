package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lslview/lslview/internal/logging"
	"github.com/lslview/lslview/internal/lsl/sim"
	"github.com/lslview/lslview/internal/record"
	"github.com/lslview/lslview/internal/relay"
	"github.com/lslview/lslview/internal/streams"
)

// CreateRecordCmd returns the record command: a headless fixed-duration
// recording of one stream, without starting the API server.
func CreateRecordCmd() *cobra.Command {
	var (
		timeout    time.Duration
		duration   time.Duration
		label      string
		downsample int
		dir        string
	)

	cmd := &cobra.Command{
		Use:   "record <uid-or-name>",
		Short: "Record one stream to disk",
		Long: `Resolves streams, records the one matching the given uid or name for the
requested duration (or until interrupted), then finalizes the session
archive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("record")
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			resolver := streams.NewResolver(sim.New(), logging.GetLogger("resolver"))
			descriptors, err := resolver.Resolve(ctx, timeout)
			if err != nil {
				return err
			}

			var uid string
			for _, d := range descriptors {
				if d.UID == args[0] || d.Name == args[0] {
					uid = d.UID
					break
				}
			}
			if uid == "" {
				return fmt.Errorf("no stream matching %q found", args[0])
			}
			desc, _ := resolver.Descriptor(uid)
			src, _ := resolver.Source(uid)

			relayMgr := relay.NewManager(logging.GetLogger("relay"))
			recorder := record.NewManager(relayMgr, dir, logger)

			info, err := recorder.Start(ctx, src, desc, label, downsample)
			if err != nil {
				return err
			}
			logger.Info("Recording", "id", info.ID, "stream", desc.Name, "dir", info.Dir)

			select {
			case <-ctx.Done():
				logger.Info("Interrupted, stopping recording")
			case <-time.After(duration):
			}

			final, err := recorder.Stop(info.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded %d samples to %s\n", final.SampleCount, final.Archive)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "Discovery timeout")
	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "Recording duration")
	cmd.Flags().StringVar(&label, "label", "", "Session label")
	cmd.Flags().IntVar(&downsample, "downsample", 1, "Keep every Nth sample")
	cmd.Flags().StringVar(&dir, "dir", "recordings", "Recordings directory")
	return cmd
}
