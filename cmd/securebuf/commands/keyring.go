package commands

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/carved4/go-securebuf/internal/fingerprint"
	"github.com/carved4/go-securebuf/internal/keysource"
	"github.com/carved4/go-securebuf/internal/securebuf"
	"github.com/carved4/go-securebuf/internal/ui"
)

func NewKeyringCommand(app *App) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "keyring",
		Short: "Keep secrets in the OS or kernel keyring",
	}
	addBackendFlag(cmd.PersistentFlags(), &backend)

	cmd.AddCommand(
		newKeyringStoreCommand(app, &backend),
		newKeyringFingerprintCommand(app, &backend),
		newKeyringCopyCommand(app, &backend),
		newKeyringDeleteCommand(app, &backend),
	)
	return cmd
}

func newKeyringStoreCommand(app *App, backend *string) *cobra.Command {
	var (
		from     string
		generate int
	)

	cmd := &cobra.Command{
		Use:   "store <name>",
		Short: "Store a secret read from a file, stdin, or freshly generated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.SecretStore(*backend)
			if err != nil {
				return err
			}

			var secret *securebuf.Buffer
			if generate > 0 {
				secret, err = generateSecret(generate, app.Options...)
			} else {
				secret, err = keysource.ReadFromPath(from, app.Options...)
			}
			if err != nil {
				return err
			}
			defer secret.Destroy()

			if err := store.Store(args[0], secret); err != nil {
				return err
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			p.Success(fmt.Sprintf("stored '%s' (%d bytes)", args[0], secret.Len()))
			p.Field("fingerprint", fingerprint.Of(secret))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "-", "File to read the secret from, - for stdin")
	cmd.Flags().IntVar(&generate, "generate", 0, "Generate a random secret of this many bytes instead")

	return cmd
}

func newKeyringFingerprintCommand(app *App, backend *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <name>",
		Short: "Print the fingerprint of a stored secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := loadSecret(app, *backend, args[0])
			if err != nil {
				return err
			}
			defer secret.Destroy()

			fmt.Fprintln(cmd.OutOrStdout(), fingerprint.Of(secret))
			return nil
		},
	}
}

func newKeyringCopyCommand(app *App, backend *string) *cobra.Command {
	var clearAfter time.Duration

	cmd := &cobra.Command{
		Use:   "copy <name>",
		Short: "Copy a stored secret to the clipboard",
		Long: `Copies a stored secret to the clipboard and clears the clipboard again
after --clear-after. The clipboard only takes strings, so one copy of the
secret leaves locked memory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := loadSecret(app, *backend, args[0])
			if err != nil {
				return err
			}
			defer secret.Destroy()

			if err := clipboard.WriteAll(string(secret.Bytes())); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			p.Success(fmt.Sprintf("copied '%s' to clipboard", args[0]))
			if clearAfter <= 0 {
				return nil
			}

			p.Muted(fmt.Sprintf("  clipboard clears in %s", clearAfter))
			time.Sleep(clearAfter)
			if err := clipboard.WriteAll(""); err != nil {
				return fmt.Errorf("failed to clear clipboard: %w", err)
			}
			p.Success("clipboard cleared")
			return nil
		},
	}

	cmd.Flags().DurationVar(&clearAfter, "clear-after", 30*time.Second, "Clear the clipboard after this long, 0 to keep it")

	return cmd
}

func newKeyringDeleteCommand(app *App, backend *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.SecretStore(*backend)
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			ui.NewPrinter(cmd.OutOrStdout()).Success(fmt.Sprintf("deleted '%s'", args[0]))
			return nil
		},
	}
}

func loadSecret(app *App, backend, name string) (*securebuf.Buffer, error) {
	store, err := app.SecretStore(backend)
	if err != nil {
		return nil, err
	}
	return store.Load(name, app.Options...)
}

// generateSecret fills a new locked buffer with random bytes.
func generateSecret(size int, opts ...securebuf.Option) (*securebuf.Buffer, error) {
	buf, err := securebuf.New(size, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(rand.Reader, buf.Bytes()); err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	return buf, nil
}
