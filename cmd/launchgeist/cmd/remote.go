// Package cmd provides the subcommands of the launchgeist binary.
// This file holds the daemon connection flags and output helpers shared by
// the remote commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mfulz/launchgeist/internal/configcli"
	"github.com/mfulz/launchgeist/internal/configloader"
	"github.com/mfulz/launchgeist/internal/controlcli"
	"github.com/mfulz/launchgeist/protocol"
	"github.com/spf13/cobra"
)

var (
	daemonName    string
	controlUser   string
	overrideAddr  string
	overrideToken string
)

// remoteFlags adds the daemon connection flags to c.
func remoteFlags(c *cobra.Command) {
	c.PersistentFlags().StringVarP(&daemonName, "daemon", "d", "", "Daemon name from the client config")
	c.PersistentFlags().StringVarP(&controlUser, "user", "u", "", "Control user to authenticate as")
	c.PersistentFlags().StringVar(&overrideAddr, "addr", "", "Direct override address for daemon (unix socket or host:port)")
	c.PersistentFlags().StringVar(&overrideToken, "token", "", "Auth token for manually specified daemon")
}

// client returns a daemon client for the current flags and config.
func client() (*controlcli.Client, error) {
	cfg := configloader.MustGetConfig[*configcli.Config]()
	user := cfg.User(controlUser)
	if overrideAddr != "" {
		return controlcli.NewClient(controlcli.DirectTarget(overrideAddr, overrideToken, user)), nil
	}
	t, err := controlcli.TargetFor(cfg, daemonName, user)
	if err != nil {
		return nil, err
	}
	if overrideToken != "" {
		t.Token = overrideToken
	}
	return controlcli.NewClient(t), nil
}

// exitError carries a process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func printSession(w io.Writer, s protocol.SessionInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", s.ID)
	fmt.Fprintf(tw, "State:\t%s\n", s.State)
	fmt.Fprintf(tw, "App:\t%s\n", s.App)
	fmt.Fprintf(tw, "JDK:\t%s\n", s.Jdk)
	fmt.Fprintf(tw, "Userdir:\t%s\n", s.UserDir)
	if len(s.Plugins) > 0 {
		fmt.Fprintf(tw, "Plugins:\t%s\n", strings.Join(s.Plugins, ", "))
	}
	if s.WorkingDir != "" {
		fmt.Fprintf(tw, "Working dir:\t%s (ephemeral: %v)\n", s.WorkingDir, s.Ephemeral)
	}
	fmt.Fprintf(tw, "Runs:\t%d\n", s.Runs)
	if !s.StartedAt.IsZero() {
		fmt.Fprintf(tw, "Started:\t%s\n", s.StartedAt.Format(time.RFC3339))
	}
	if !s.EndedAt.IsZero() {
		fmt.Fprintf(tw, "Ended:\t%s\n", s.EndedAt.Format(time.RFC3339))
	}
	if s.LastError != "" {
		fmt.Fprintf(tw, "Last error:\t%s\n", s.LastError)
	}
	_ = tw.Flush()
}

func printSessions(w io.Writer, list []protocol.SessionInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATE\tAPP\tJDK\tUSERDIR\tRUNS\tERROR")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n", s.ID, s.State, s.App, s.Jdk, s.UserDir, s.Runs, s.ErrorCode)
	}
	_ = tw.Flush()
}
