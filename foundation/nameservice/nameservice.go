// Package nameservice reads the accounts folder and creates a name service
// lookup for the accounts whose keys are kept there.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebchain/blockchain/foundation/blockchain/wallet"
)

// keyExt is the file extension of a stored private key.
const keyExt = ".ecdsa"

// NameService maintains a map of account addresses for name lookup.
type NameService struct {
	root     string
	accounts map[string]string
}

// New constructs a name service with the accounts found in the root folder.
// A missing folder yields an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		root:     root,
		accounts: make(map[string]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != keyExt {
			return nil
		}

		w, err := wallet.Load(fileName)
		if err != nil {
			return err
		}

		ns.accounts[w.Address()] = strings.TrimSuffix(filepath.Base(fileName), keyExt)

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ns, nil
		}
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address. Unknown addresses are
// returned as is.
func (ns *NameService) Lookup(address string) string {
	name, exists := ns.accounts[address]
	if !exists {
		return address
	}
	return name
}

// Copy returns a copy of the map of addresses and names.
func (ns *NameService) Copy() map[string]string {
	return maps.Clone(ns.accounts)
}

// Wallet loads the wallet stored under the name, creating and storing a new
// one when the name is not known yet.
func (ns *NameService) Wallet(name string) (*wallet.Wallet, error) {
	path := filepath.Join(ns.root, name+keyExt)

	if _, err := os.Stat(path); err == nil {
		return wallet.Load(path)
	}

	if err := os.MkdirAll(ns.root, 0o755); err != nil {
		return nil, fmt.Errorf("creating accounts folder: %w", err)
	}

	w, err := wallet.New()
	if err != nil {
		return nil, err
	}

	if err := w.Save(path); err != nil {
		return nil, err
	}

	ns.accounts[w.Address()] = name

	return w, nil
}
