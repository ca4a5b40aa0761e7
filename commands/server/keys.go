package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iov-one/mig/crypto"
	"github.com/iov-one/mig/errors"
)

// AddressPrefix is the bech32 human readable part of printed addresses.
const AddressPrefix = "mig"

// KeyPath returns the location of the named key file.
func KeyPath(home, name string) string {
	return filepath.Join(home, "keys", name+".json")
}

// LoadOrGenerateKey reads the private key stored at path. If there is
// no file yet, a new ed25519 key is generated and saved there.
func LoadOrGenerateKey(path string) (*crypto.PrivateKey, bool, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		var key crypto.PrivateKey
		if err := json.Unmarshal(raw, &key); err != nil {
			return nil, false, errors.Wrapf(errors.ErrInvalidInput, "key %s: %s", path, err)
		}
		if key.PublicKey().Address() == nil {
			return nil, false, errors.Wrapf(errors.ErrInvalidInput, "key %s: empty", path)
		}
		return &key, false, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, errors.Wrapf(errors.ErrInvalidInput, "key %s: %s", path, err)
	}

	key := crypto.GenPrivKeyEd25519()
	raw, err = json.Marshal(key)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, false, errors.Wrapf(errors.ErrInvalidInput, "key dir: %s", err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return nil, false, errors.Wrapf(errors.ErrInvalidInput, "write key: %s", err)
	}
	return key, true, nil
}

// KeysCmd prints the address of a named key, generating the key first
// if it does not exist.
func KeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys [name]",
		Short: "Create or show an ed25519 key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "default"
			if len(args) == 1 {
				name = args[0]
			}
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			path := KeyPath(cfg.Home, name)
			key, created, err := LoadOrGenerateKey(path)
			if err != nil {
				return err
			}
			addr := key.PublicKey().Address()
			b32, err := addr.Bech32(AddressPrefix)
			if err != nil {
				return errors.Wrap(errors.ErrInvalidInput, err.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", addr, b32)
			if created {
				fmt.Fprintf(cmd.ErrOrStderr(), "key saved to %s\n", path)
			}
			return nil
		},
	}
}
