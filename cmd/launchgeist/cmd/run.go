package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mfulz/launchgeist/internal/configcli"
	"github.com/mfulz/launchgeist/internal/configloader"
	"github.com/mfulz/launchgeist/internal/launch"
	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/mfulz/launchgeist/internal/lifecycle"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/internal/manager"
	"github.com/mfulz/launchgeist/internal/resource"
	"github.com/spf13/cobra"
)

var (
	forceExit bool
	keepDir   bool
)

// localSetup builds the catalog and plan options from the client config.
func localSetup(ctx context.Context) (*resource.Catalog, launch.Options, error) {
	cfg := configloader.MustGetConfig[*configcli.Config]()
	catalog, err := resource.Build(ctx, cfg.Resources, cfg.Discover)
	if err != nil {
		return nil, launch.Options{}, fmt.Errorf("load resources: %w", err)
	}
	opts, err := cfg.Launch.Options(lifecycle.Default)
	if err != nil {
		return nil, launch.Options{}, err
	}
	return catalog, opts, nil
}

// RunCmd launches an application in-process and waits for it to exit.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch an application without the daemon and wait for it",
	Long: `Prepares the userdir, writes the platform config, installs the selected
plugins and starts the application, then waits until it exits. Temporary
userdirs are removed afterwards.

Examples:
  launchgeist run -a nbdemetra -j jdk-17
  launchgeist run -a nbdemetra -j jdk-17 --userdir work -p sa.nbm -p x13.nbm`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer lifecycle.Default.Run()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		catalog, opts, err := localSetup(ctx)
		if err != nil {
			return err
		}
		mgr := manager.New(catalog, opts, manager.WithContext(ctx))

		s, err := mgr.Launch(selection())
		if err != nil {
			return err
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)

		done := make(chan error, 1)
		go func() { done <- s.Wait(ctx) }()

		gate := &lifecycle.ShutdownGate{Busy: mgr.Running, Force: forceExit}
		for {
			select {
			case <-done:
				if err := s.LastError(); err != nil {
					code := 2
					if launcherr.Is(err, launcherr.CodeInvalidConfiguration) {
						code = 1
					}
					return &exitError{code: code, err: err}
				}
				logging.Log.Infof("[launchgeist] session %s finished", s.ID())
				return nil
			case sig := <-sigs:
				if gate.Signal(sig) {
					return &exitError{code: 130, err: fmt.Errorf("interrupted by %v", sig)}
				}
			}
		}
	},
}

// PrepareCmd builds a userdir without starting the application.
var PrepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Prepare a userdir (config and plugins) without launching",
	Long: `Provisions the selected userdir, writes the platform config file and installs
the selected plugins, then prints the directory. Temporary userdirs are
removed on exit unless --keep is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !keepDir {
			defer lifecycle.Default.Run()
		}

		catalog, opts, err := localSetup(cmd.Context())
		if err != nil {
			return err
		}
		conf, err := catalog.Resolve(selection())
		if err != nil {
			return err
		}
		plan, err := launch.NewPlan(conf, opts)
		if err != nil {
			return err
		}

		dir, err := plan.Init(cmd.Context())
		if dir.Path != "" {
			fmt.Fprintln(cmd.OutOrStdout(), dir.Path)
		}
		if err != nil {
			return err
		}
		logging.Log.Infof("[launchgeist] wrote %s", plan.ConfigPath(dir.Path))
		if dir.Ephemeral && !keepDir {
			logging.Log.Warnf("[launchgeist] %s is temporary and will be removed, use --keep to retain it", dir.Path)
		}
		return nil
	},
}

func init() {
	selectionFlags(RunCmd)
	RunCmd.Flags().BoolVar(&forceExit, "force", false, "Exit on the first signal even if the application is running")

	selectionFlags(PrepareCmd)
	PrepareCmd.Flags().BoolVar(&keepDir, "keep", false, "Keep a temporary userdir after exit")
}
