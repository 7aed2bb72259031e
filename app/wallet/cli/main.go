// This program is a wallet for sending money on the ledger.
package main

import "github.com/ebchain/blockchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
