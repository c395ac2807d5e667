package cmd

import (
	"github.com/mfulz/launchgeist/internal/configcli"
	"github.com/mfulz/launchgeist/internal/configloader"
	"github.com/mfulz/launchgeist/internal/resource"
	"github.com/spf13/cobra"
)

var withEnv bool

// DiscoverCmd searches directories for apps, JDKs and plugins and prints
// the result as a resources file.
var DiscoverCmd = &cobra.Command{
	Use:   "discover [dir...]",
	Short: "Search directories for apps, JDKs and plugins",
	Long: `Walks the given directories (default: "discover" from the client config) and
prints the found resources in the resources file format, ready to be
edited and saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		roots := args
		if len(roots) == 0 {
			roots = configloader.MustGetConfig[*configcli.Config]().Discover
		}

		c := &resource.Catalog{}
		if len(roots) > 0 {
			found, err := resource.Discover(cmd.Context(), roots...)
			if err != nil {
				return err
			}
			c = found
		}
		if withEnv {
			if jdk, ok := resource.JdkFromEnvironment(); ok {
				c.Merge(&resource.Catalog{Jdks: []resource.JdkSpec{jdk}})
			}
		}

		out, err := c.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	DiscoverCmd.Flags().BoolVar(&withEnv, "java-home", true, "Include the JDK named by $JAVA_HOME")
}
