// Command launchgeist is the launchgeist client. It talks to launchgeistd
// over its control interface and can also prepare and launch applications
// in-process, without a daemon.
package main

import (
	"fmt"
	"os"

	"github.com/mfulz/launchgeist/cmd/launchgeist/cmd"
	"github.com/mfulz/launchgeist/internal/configcli"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/spf13/cobra"

	_ "github.com/mfulz/launchgeist/internal/runner"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "launchgeist",
	Short:        "Launch platform applications with a chosen JDK, userdir and plugins",
	Long:         `launchgeist starts platform applications either through the launchgeistd daemon or in-process.`,
	SilenceUsage: true,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		if _, err := configcli.LoadConfig(configPath); err != nil {
			return fmt.Errorf("[launchgeist] failed to load config: %w", err)
		}
		return nil
	},
}

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmd.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to launchgeist.yaml")

	rootCmd.AddCommand(cmd.SessionCmd)
	rootCmd.AddCommand(cmd.ResourcesCmd)
	rootCmd.AddCommand(cmd.PingCmd)
	rootCmd.AddCommand(cmd.RunCmd)
	rootCmd.AddCommand(cmd.PrepareCmd)
	rootCmd.AddCommand(cmd.DiscoverCmd)
}
