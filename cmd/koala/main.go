// Package main is koala, a command-line driver for Eucalyptus
// programs.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Comcast/koala/config"
	"github.com/Comcast/koala/util"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "koala",
		Short: "Eucalyptus interpreter",
		Long: `koala checks and runs Eucalyptus programs: guarded rules over
integers and lists with a constraint store.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				return util.SetLevel("debug")
			}
			return nil
		},
	}

	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	root.PersistentFlags().String("config", config.DefaultFilename, "config file")
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		newCheckCmd(),
		newRunCmd(),
		newGraphCmd(),
		newReportCmd(),
		newExpectCmd(),
		newWatchCmd(),
		newDebugCmd(),
		newConvertCmd(),
		newTraceCmd(),
	)

	return root
}

// loadConfig reads the config file and applies any flags that were
// given.  The default file doesn't have to exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	fs := cmd.Flags()
	filename, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	c, err := config.Load(filename, !fs.Changed("config"))
	if err != nil {
		return nil, err
	}
	if err = c.ApplyFlags(fs); err != nil {
		return nil, err
	}
	util.Logger().WithField("config", filename).Debugf("config %+v", c)
	return c, nil
}
