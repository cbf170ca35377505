package commands

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carved4/go-securebuf/internal/enclave"
	"github.com/carved4/go-securebuf/internal/fingerprint"
	"github.com/carved4/go-securebuf/internal/kdf"
	"github.com/carved4/go-securebuf/internal/keysource"
	"github.com/carved4/go-securebuf/internal/securebuf"
	"github.com/carved4/go-securebuf/internal/ui"
)

const (
	kdfPBKDF2 = "pbkdf2"
	kdfArgon2 = "argon2"
)

var errPasswordMismatch = errors.New("passwords do not match")

type deriveOptions struct {
	kdf     string
	saltHex string
	context string
	info    string
	confirm bool
	store   string
	backend string
}

func NewDeriveCommand(app *App) *cobra.Command {
	var opts deriveOptions

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a key from a password",
		Long: `Prompts for a password and derives a key from it into locked memory.
Only the salt and the key's fingerprint are printed.

Examples:
  securebuf derive                               # argon2id, random salt
  securebuf derive --kdf pbkdf2 --salt-hex 00ff  # reproduce an earlier key
  securebuf derive --confirm --store backup      # new password, keep the key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(app, ui.NewPrinter(cmd.OutOrStdout()), opts)
		},
	}

	cmd.Flags().Var(newChoiceValue(&opts.kdf, kdfArgon2, kdfArgon2, kdfPBKDF2), "kdf", "Key derivation function (argon2, pbkdf2)")
	cmd.Flags().StringVar(&opts.saltHex, "salt-hex", "", "Salt in hex (random when empty)")
	cmd.Flags().StringVar(&opts.context, "context", "", "Bind the key to a context string (pbkdf2 only)")
	cmd.Flags().StringVar(&opts.info, "info", "", "Expand the derived key with HKDF using this info string")
	cmd.Flags().BoolVar(&opts.confirm, "confirm", false, "Ask for the password twice and enforce the minimum length")
	cmd.Flags().StringVar(&opts.store, "store", "", "Store the derived key under this name")
	addBackendFlag(cmd.Flags(), &opts.backend)

	return cmd
}

func runDerive(app *App, p *ui.Printer, opts deriveOptions) error {
	if opts.context != "" && opts.kdf != kdfPBKDF2 {
		return errors.New("--context requires --kdf pbkdf2")
	}

	var salt []byte
	if opts.saltHex != "" {
		decoded, err := hex.DecodeString(opts.saltHex)
		if err != nil {
			return fmt.Errorf("invalid --salt-hex: %w", err)
		}
		salt = decoded
	} else {
		generated, err := kdf.NewSalt(kdf.SaltSize)
		if err != nil {
			return err
		}
		salt = generated
	}

	password, err := readPassword(app, opts.confirm)
	if err != nil {
		return err
	}
	defer password.Destroy()

	key, err := deriveKey(app, password, salt, opts)
	if err != nil {
		return err
	}
	defer key.Destroy()

	p.Title("derived key")
	p.Field("kdf", opts.kdf)
	p.Field("salt", hex.EncodeToString(salt))
	p.Field("key length", key.Len())
	p.Field("fingerprint", fingerprint.Of(key))

	if opts.store != "" {
		store, err := app.SecretStore(opts.backend)
		if err != nil {
			return err
		}
		if err := store.Store(opts.store, key); err != nil {
			return err
		}
		p.Success(fmt.Sprintf("stored as '%s' in the %s keyring", opts.store, opts.backend))
	}
	return nil
}

// readPassword prompts once, or twice when confirm is set. While the
// second prompt waits, the first answer is parked in an enclave.
func readPassword(app *App, confirm bool) (*securebuf.Buffer, error) {
	password, err := app.ReadPassword("password: ")
	if err != nil {
		return nil, err
	}
	if !confirm {
		return password, nil
	}

	if err := keysource.CheckLength(password, keysource.MinPasswordLength); err != nil {
		password.Destroy()
		return nil, err
	}

	parked := enclave.Park(password)

	again, err := app.ReadPassword("confirm password: ")
	if err != nil {
		return nil, err
	}
	defer again.Destroy()

	password, err = parked.Unpark(app.Options...)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare(password.Bytes(), again.Bytes()) != 1 {
		password.Destroy()
		return nil, errPasswordMismatch
	}
	return password, nil
}

func deriveKey(app *App, password *securebuf.Buffer, salt []byte, opts deriveOptions) (*securebuf.Buffer, error) {
	var (
		key *securebuf.Buffer
		err error
	)

	switch {
	case opts.context != "":
		key, err = kdf.WithContext(password, opts.context, salt, app.Config.PBKDF2Params(), app.Options...)
	case opts.kdf == kdfPBKDF2:
		key, err = kdf.PBKDF2(password, salt, app.Config.PBKDF2Params(), app.Options...)
	default:
		key, err = kdf.Argon2id(password, salt, app.Config.Argon2Params(), app.Options...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	if opts.info == "" {
		return key, nil
	}
	defer key.Destroy()

	return kdf.Expand(key, salt, []byte(opts.info), key.Len(), app.Options...)
}
