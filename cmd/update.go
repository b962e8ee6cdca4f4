package cmd

import (
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/lslview/lslview/internal/version"
)

const repositorySlug = "lslview/lslview"

// CreateUpdateCmd returns the update command: replace the running binary
// with the latest released version.
func CreateUpdateCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update to the latest released version",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := selfupdate.ParseSlug(repositorySlug)
			latest, found, err := selfupdate.DetectLatest(cmd.Context(), repo)
			if err != nil {
				return fmt.Errorf("detect latest version: %w", err)
			}
			if !found || latest.LessOrEqual(version.String()) {
				fmt.Printf("Current version %s is up to date\n", version.String())
				return nil
			}
			if check {
				fmt.Printf("Version %s is available (current: %s)\n", latest.Version(), version.String())
				return nil
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			if err := selfupdate.UpdateTo(cmd.Context(), latest.AssetURL, latest.AssetName, exe); err != nil {
				return fmt.Errorf("update binary: %w", err)
			}
			fmt.Printf("Updated to version %s\n", latest.Version())
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Only check for a newer version")
	return cmd
}
