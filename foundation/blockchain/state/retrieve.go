package state

import (
	"slices"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
)

// WalletInfo describes the node's own wallet.
type WalletInfo struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// =============================================================================

// RetrieveChain returns a snapshot of the full chain.
func (s *State) RetrieveChain() []database.Block {
	return s.blockchain.Blocks()
}

// RetrieveChainRange returns the blocks between start and end, newest first.
// Out of range values are clamped to the chain.
func (s *State) RetrieveChainRange(start int, end int) []database.Block {
	blocks := slices.Clone(s.blockchain.Blocks())
	slices.Reverse(blocks)

	start = min(max(start, 0), len(blocks))
	end = min(max(end, start), len(blocks))

	return blocks[start:end]
}

// RetrieveChainLength returns the number of blocks in the chain.
func (s *State) RetrieveChainLength() int {
	return s.blockchain.Length()
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.blockchain.LatestBlock()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.PickBest(-1)
}

// RetrieveWalletInfo returns the address and balance of the node's wallet.
func (s *State) RetrieveWalletInfo() WalletInfo {
	return WalletInfo{
		Address: s.wallet.Address(),
		Balance: s.wallet.Balance(s.blockchain.Blocks()),
	}
}

// =============================================================================

// QueryBalance returns the balance of any address on the chain.
func (s *State) QueryBalance(address string) uint64 {
	return database.Balance(s.blockchain.Blocks(), address)
}

// QueryKnownAddresses returns every address that has received money.
func (s *State) QueryKnownAddresses() []string {
	return database.KnownAddresses(s.blockchain.Blocks())
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryTxProof returns the proof the transaction was mined on the chain.
func (s *State) QueryTxProof(txID string) (database.TxProof, error) {
	return database.FindTxProof(s.blockchain.Blocks(), txID)
}
