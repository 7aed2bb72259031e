// Package wallet holds the key pair for an account and signs data on its
// behalf. The balance of a wallet is never stored; it is derived from the
// chain every time it is asked for.
package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
	"github.com/ebchain/blockchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet represents an account that can send money.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    string
	publicKey  string
}

// New constructs a wallet with a freshly generated key pair.
func New() (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	return FromPrivateKey(privateKey), nil
}

// FromPrivateKey constructs a wallet for an existing private key.
func FromPrivateKey(privateKey *ecdsa.PrivateKey) *Wallet {
	return &Wallet{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey).Hex(),
		publicKey:  signature.PublicKeyString(privateKey.PublicKey),
	}
}

// Load reads the private key from the hex encoded key file.
func Load(path string) (*Wallet, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("load key %q: %w", path, err)
	}

	return FromPrivateKey(privateKey), nil
}

// Save writes the private key to the file as hex.
func (w *Wallet) Save(path string) error {
	if err := crypto.SaveECDSA(path, w.privateKey); err != nil {
		return fmt.Errorf("save key %q: %w", path, err)
	}

	return nil
}

// Address returns the account address of the wallet.
func (w *Wallet) Address() string {
	return w.address
}

// PublicKey returns the hex encoded public key of the wallet.
func (w *Wallet) PublicKey() string {
	return w.publicKey
}

// Sign signs the value with the wallet's private key.
func (w *Wallet) Sign(value any) (string, error) {
	return signature.Sign(value, w.privateKey)
}

// Balance derives the balance of the wallet from the blocks.
func (w *Wallet) Balance(blocks []database.Block) uint64 {
	return database.Balance(blocks, w.address)
}

// NewTx constructs a transaction sending the amount to the recipient, using
// the balance the wallet holds on the specified blocks.
func (w *Wallet) NewTx(blocks []database.Block, recipient string, amount uint64) (database.Tx, error) {
	return database.NewTx(w, w.Balance(blocks), recipient, amount)
}
