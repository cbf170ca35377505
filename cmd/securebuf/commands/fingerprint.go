package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carved4/go-securebuf/internal/fingerprint"
	"github.com/carved4/go-securebuf/internal/keysource"
)

func NewFingerprintCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <path|->",
		Short: "Print the fingerprint of a secret file",
		Long: `Reads a secret from a file, or the first line of stdin for -, into locked
memory and prints a short fingerprint that is safe to share. Surrounding
whitespace is ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := keysource.ReadFromPath(args[0], app.Options...)
			if err != nil {
				return err
			}
			defer secret.Destroy()

			fmt.Fprintln(cmd.OutOrStdout(), fingerprint.Of(secret))
			return nil
		},
	}
}
