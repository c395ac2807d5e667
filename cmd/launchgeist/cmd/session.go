package cmd

import (
	"fmt"

	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/internal/resource"
	"github.com/mfulz/launchgeist/protocol"
	"github.com/spf13/cobra"
)

var (
	appLabel     string
	jdkLabel     string
	userdirLabel string
	pluginLabels []string
)

// selectionFlags adds the resource selection flags to c.
func selectionFlags(c *cobra.Command) {
	c.Flags().StringVarP(&appLabel, "app", "a", "", "Application label")
	c.Flags().StringVarP(&jdkLabel, "jdk", "j", "", "JDK label")
	c.Flags().StringVar(&userdirLabel, "userdir", resource.TempLabel, "Userdir label (--- for a temporary userdir)")
	c.Flags().StringArrayVarP(&pluginLabels, "plugin", "p", nil, "Plugin label, repeatable; installed in the given order")
	_ = c.MarkFlagRequired("app")
	_ = c.MarkFlagRequired("jdk")
}

func selection() resource.Selection {
	return resource.Selection{App: appLabel, Jdk: jdkLabel, UserDir: userdirLabel, Plugins: pluginLabels}
}

// SessionCmd is the root command for session-related subcommands.
var SessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Launch and inspect sessions on the daemon",
}

var sessionLaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch an application on the daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client()
		if err != nil {
			return err
		}
		sel := selection()
		info, err := c.Launch(protocol.LaunchRequest{App: sel.App, Jdk: sel.Jdk, UserDir: sel.UserDir, Plugins: sel.Plugins})
		if err != nil {
			return err
		}
		logging.Log.Infof("[launchgeist] launched session %s", info.ID)
		fmt.Fprintln(cmd.OutOrStdout(), info.ID)
		return nil
	},
}

var sessionRelaunchCmd = &cobra.Command{
	Use:   "relaunch <id>",
	Short: "Run a finished session again in its working directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client()
		if err != nil {
			return err
		}
		r, err := c.Relaunch(args[0])
		if err != nil {
			return err
		}
		if !r.Started {
			fmt.Fprintf(cmd.OutOrStdout(), "session %s is still running\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "session %s relaunched (run %d)\n", args[0], r.Session.Runs)
		return nil
	},
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Show one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client()
		if err != nil {
			return err
		}
		info, err := c.Status(args[0])
		if err != nil {
			return err
		}
		printSession(cmd.OutOrStdout(), *info)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions of the daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client()
		if err != nil {
			return err
		}
		list, err := c.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sessions.")
			return nil
		}
		printSessions(cmd.OutOrStdout(), list)
		return nil
	},
}

// sessionRunningCmd exits with status 3 when sessions are running, so scripts
// can gate on it.
var sessionRunningCmd = &cobra.Command{
	Use:   "running",
	Short: "Report whether any session is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client()
		if err != nil {
			return err
		}
		r, err := c.Running()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d session(s) running\n", r.Running, r.Total)
		if r.AnyRunning {
			return &exitError{code: 3, err: fmt.Errorf("sessions are running")}
		}
		return nil
	},
}

func init() {
	remoteFlags(SessionCmd)
	selectionFlags(sessionLaunchCmd)

	SessionCmd.AddCommand(sessionLaunchCmd)
	SessionCmd.AddCommand(sessionRelaunchCmd)
	SessionCmd.AddCommand(sessionStatusCmd)
	SessionCmd.AddCommand(sessionListCmd)
	SessionCmd.AddCommand(sessionRunningCmd)
}
