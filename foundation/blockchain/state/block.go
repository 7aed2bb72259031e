package state

import (
	"encoding/json"
	"fmt"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
)

// ProcessProposedBlock takes a block received from a peer and tries to extend
// the local chain with it. The whole candidate chain is validated again, the
// sender is never trusted.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.LastHash, block.Hash, len(block.Data))
	defer s.evHandler("state: ProcessProposedBlock: completed: newBlk[%s]", block.Hash)

	// Blocks returns a slice with no spare capacity, so append copies.
	candidate := append(s.blockchain.Blocks(), block)

	if err := s.ReplaceChain(candidate); err != nil {
		return err
	}

	s.blockEvent(block)

	return nil
}

// ReplaceChain replaces the local chain when the candidate is longer and valid.
// Transactions that are now on the chain are removed from the mempool.
func (s *State) ReplaceChain(candidate []database.Block) error {
	s.walletMu.Lock()
	defer s.walletMu.Unlock()

	if err := s.blockchain.ReplaceChain(candidate); err != nil {
		return err
	}

	removed := s.mempool.ClearBlockchainTransactions(candidate)
	s.evHandler("state: ReplaceChain: length[%d]: removed from mempool[%d]", len(candidate), removed)

	return nil
}

// =============================================================================

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: %s`, string(blockJSON))
}
