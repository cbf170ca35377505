package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carved4/go-securebuf/internal/keysource"
	"github.com/carved4/go-securebuf/internal/seal"
	"github.com/carved4/go-securebuf/internal/ui"
)

type sealOptions struct {
	key     string
	backend string
	alg     string
}

func addSealFlags(cmd *cobra.Command, opts *sealOptions) {
	cmd.Flags().StringVar(&opts.key, "key", "", "Name of the stored 32 byte key")
	cmd.Flags().Var(newChoiceValue(&opts.alg, string(seal.XChaCha20Poly1305), string(seal.XChaCha20Poly1305), string(seal.AESGCM)),
		"alg", "AEAD algorithm (xchacha20-poly1305, aes-gcm)")
	addBackendFlag(cmd.Flags(), &opts.backend)
	_ = cmd.MarkFlagRequired("key")
}

func NewSealCommand(app *App) *cobra.Command {
	var (
		opts sealOptions
		in   string
	)

	cmd := &cobra.Command{
		Use:   "seal <output>",
		Short: "Encrypt a secret with a stored key",
		Long: `Reads a secret from --in into locked memory and writes it, encrypted
and authenticated with a key from the keyring, to <output>. The key name is
bound into the ciphertext, so it only opens with the same --key.

Example:
  securebuf keyring store --generate 32 backup
  securebuf seal --key backup --in token.txt token.sealed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadSecret(app, opts.backend, opts.key)
			if err != nil {
				return err
			}
			defer key.Destroy()

			plaintext, err := keysource.ReadFromPath(in, app.Options...)
			if err != nil {
				return err
			}
			defer plaintext.Destroy()

			sealed, err := seal.Seal(seal.Algorithm(opts.alg), key, plaintext, []byte(opts.key))
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], sealed, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}

			ui.NewPrinter(cmd.OutOrStdout()).Success(fmt.Sprintf("sealed %d bytes to %s", plaintext.Len(), args[0]))
			return nil
		},
	}

	addSealFlags(cmd, &opts)
	cmd.Flags().StringVar(&in, "in", "-", "File holding the secret, - for stdin")

	return cmd
}

func NewOpenCommand(app *App) *cobra.Command {
	var opts sealOptions

	cmd := &cobra.Command{
		Use:   "open <sealed>",
		Short: "Decrypt a sealed secret to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sealed, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			key, err := loadSecret(app, opts.backend, opts.key)
			if err != nil {
				return err
			}
			defer key.Destroy()

			plaintext, err := seal.Open(seal.Algorithm(opts.alg), key, sealed, []byte(opts.key), app.Options...)
			if err != nil {
				return err
			}
			defer plaintext.Destroy()

			_, err = cmd.OutOrStdout().Write(plaintext.Bytes())
			return err
		},
	}

	addSealFlags(cmd, &opts)

	return cmd
}
