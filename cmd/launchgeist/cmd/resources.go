package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mfulz/launchgeist/protocol"
	"github.com/spf13/cobra"
)

// ResourcesCmd lists the resources the daemon can launch with.
var ResourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List apps, JDKs, userdirs and plugins known to the daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client()
		if err != nil {
			return err
		}
		r, err := c.Resources()
		if err != nil {
			return err
		}
		printResources(cmd.OutOrStdout(), r)
		return nil
	},
}

// PingCmd checks that the daemon answers.
var PingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the daemon connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client()
		if err != nil {
			return err
		}
		pong, err := c.Ping()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "launchgeistd %s, up %s\n", pong.Version, pong.Uptime)
		return nil
	},
}

func printResources(w io.Writer, r *protocol.ResourceListResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	section := func(kind string, items []protocol.ResourceItem) {
		for _, it := range items {
			loc := it.Location
			if it.Clone {
				loc += " (clone)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", kind, it.Label, loc)
		}
	}
	fmt.Fprintln(tw, "KIND\tLABEL\tLOCATION")
	section("app", r.Apps)
	section("jdk", r.Jdks)
	section("userdir", r.UserDirs)
	section("plugin", r.Plugins)
	_ = tw.Flush()
}

func init() {
	remoteFlags(ResourcesCmd)
	remoteFlags(PingCmd)
}
