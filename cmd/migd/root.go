package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/commands/server"
)

// NewRootCmd returns the migd command tree. Log output goes to w.
func NewRootCmd(w io.Writer) *cobra.Command {
	var home string

	root := &cobra.Command{
		Use:           "migd",
		Short:         "Governed token ledgers served over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&home, server.FlagHome, server.DefaultHome(), "directory to store files under")

	// commands share the logger configured once the settings are read
	proxy := &loggerProxy{Logger: log.NewNopLogger()}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := server.SetupConfig(home); err != nil {
			return err
		}
		cfg, err := server.LoadConfig()
		if err != nil {
			return err
		}
		l, err := server.NewLogger(w, cfg.LogLevel)
		if err != nil {
			return err
		}
		proxy.Logger = l
		return nil
	}

	root.AddCommand(
		server.InitCmd(server.ExampleAppState, proxy),
		server.StartCmd(proxy),
		server.KeysCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the app version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), mig.Version())
		},
	}
}

// loggerProxy forwards to the logger set up from the configuration,
// which is only known once flags are parsed.
type loggerProxy struct {
	log.Logger
}
