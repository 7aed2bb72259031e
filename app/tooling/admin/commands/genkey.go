package commands

import (
	"fmt"

	"github.com/ebchain/blockchain/foundation/nameservice"
)

// GenKey creates the private key for the named account in the accounts
// folder. An existing key is kept.
func GenKey(accountsFolder string, name string) error {
	if name == "" {
		return fmt.Errorf("account name is required")
	}

	ns, err := nameservice.New(accountsFolder)
	if err != nil {
		return err
	}

	w, err := ns.Wallet(name)
	if err != nil {
		return err
	}

	fmt.Printf("account[%s] name[%s]\n", w.Address(), name)

	return nil
}
