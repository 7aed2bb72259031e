package database

import (
	"sort"

	"github.com/ebchain/blockchain/foundation/blockchain/genesis"
)

// Balance replays the transactions in the blocks to derive the balance of the
// address. Every address starts with the starting balance. When the address
// sent money its balance becomes what the transaction left it with, since the
// output already holds the full remainder. When it only received money the
// amount is added.
func Balance(blocks []Block, address string) uint64 {
	balance := genesis.StartingBalance

	for _, block := range blocks {
		for _, tx := range block.Data {
			if tx.Input.Address == address {
				balance = tx.Output[address]
				continue
			}

			if amount, exists := tx.Output[address]; exists {
				balance += amount
			}
		}
	}

	return balance
}

// KnownAddresses returns every address that has received money on the chain,
// sorted.
func KnownAddresses(blocks []Block) []string {
	known := make(map[string]struct{})
	for _, block := range blocks {
		for _, tx := range block.Data {
			for address := range tx.Output {
				known[address] = struct{}{}
			}
		}
	}

	addresses := make([]string, 0, len(known))
	for address := range known {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	return addresses
}

// =============================================================================

// IsAccountID verifies whether the string represents a valid hex-encoded
// account address.
func IsAccountID(a string) bool {
	const addressLength = 20

	if has0xPrefix(a) {
		a = a[2:]
	}

	return len(a) == 2*addressLength && isHex(a)
}

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(a string) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(a string) bool {
	if len(a)%2 != 0 {
		return false
	}

	for _, c := range []byte(a) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
