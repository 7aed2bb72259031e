package public

import "github.com/ebchain/blockchain/foundation/blockchain/database"

// transact is the request to send money from the node's wallet.
type transact struct {
	Recipient string `json:"recipient" validate:"required"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
}

// account is an address known to the chain with its balance.
type account struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

// walletInfo describes the node's own wallet.
type walletInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

// mined is the response to a mining request.
type mined struct {
	Block  database.Block `json:"block"`
	Length int            `json:"length"`
}
