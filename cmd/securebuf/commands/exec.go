package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carved4/go-securebuf/internal/envinject"
)

func NewExecCommand(app *App) *cobra.Command {
	var (
		secrets  []string
		prefixes []string
		backend  string
	)

	cmd := &cobra.Command{
		Use:   "exec --secret VAR=name [flags] -- command [args...]",
		Short: "Run a command with stored secrets in its environment",
		Long: `Loads each --secret from the keyring into locked memory and runs the
command with them set as environment variables. Secrets stay locked until
the command starts and are wiped once it exits.

Example:
  securebuf exec --secret DB_PASSWORD=prod-db -- ./migrate up`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.SecretStore(backend)
			if err != nil {
				return err
			}

			in := envinject.New()
			defer in.Destroy()

			for _, pair := range secrets {
				variable, name, ok := strings.Cut(pair, "=")
				if !ok || name == "" {
					return fmt.Errorf("invalid --secret %q, want VAR=name", pair)
				}
				value, err := store.Load(name, app.Options...)
				if err != nil {
					return err
				}
				if err := in.Add(variable, value); err != nil {
					return err
				}
			}

			var filter *envinject.Filter
			if len(prefixes) > 0 {
				filter = envinject.NewFilter().AllowPrefix(prefixes...)
			}

			app.Logger.Debug("running command with injected secrets", "command", args[0], "secrets", in.Names())
			return in.Run(cmd.Context(), args, os.Environ(), filter, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringArrayVar(&secrets, "secret", nil, "VAR=name, may be repeated")
	cmd.Flags().StringSliceVar(&prefixes, "only-prefix", nil, "Only inject variables with these prefixes")
	addBackendFlag(cmd.Flags(), &backend)

	return cmd
}
