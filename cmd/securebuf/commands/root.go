package commands

import (
	"github.com/spf13/cobra"

	"github.com/carved4/go-securebuf/internal/config"
)

func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "securebuf",
		Short: "Handle secrets in locked, wiped memory",
		Long: `securebuf keeps passwords and keys in memory that is locked against
swapping and zeroed as soon as it is no longer needed.

It can check how much memory this process may lock, derive keys from
passwords, keep secrets in the OS or kernel keyring and seal files with
keys that never leave locked memory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Init(cmd.ErrOrStderr(), cmd.Flags().Changed("config"))
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.reportMetrics()
		},
	}

	root.PersistentFlags().StringVar(&app.ConfigPath, "config", config.DefaultPath(), "Config file path")
	root.PersistentFlags().StringVar(&app.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		NewProbeCommand(app),
		NewDeriveCommand(app),
		NewKeyringCommand(app),
		NewFingerprintCommand(app),
		NewSealCommand(app),
		NewOpenCommand(app),
		NewExecCommand(app),
	)

	return root
}
