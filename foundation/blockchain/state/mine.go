package state

import (
	"context"
	"errors"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
)

// MineNewBlock attempts to create a new block with a proper hash that can become
// the next block in the chain. The block carries the pending transactions that
// are valid against the current chain and the reward for this node. If the
// chain is replaced while mining, the work is thrown away and started again on
// the new chain.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	for {
		s.evHandler("state: MineNewBlock: MINING: select transactions")

		data := s.selectTransactions(s.blockchain.Blocks())

		s.evHandler("state: MineNewBlock: MINING: perform POW: txs[%d]", len(data))

		block, err := s.blockchain.AddBlock(ctx, data)
		if err != nil {
			if errors.Is(err, database.ErrStaleBlock) && ctx.Err() == nil {
				s.evHandler("state: MineNewBlock: MINING: chain replaced, starting over")
				continue
			}
			return database.Block{}, err
		}

		s.evHandler("state: MineNewBlock: MINING: update mempool")

		s.mempool.ClearBlockchainTransactions([]database.Block{block})

		s.Worker.SignalShareBlock(block)
		s.blockEvent(block)

		return block, nil
	}
}

// =============================================================================

// selectTransactions picks the pending transactions that are valid on top of
// the specified chain, one per sender, and adds the reward for this node.
// Transactions that can never be mined on this chain are dropped from the pool.
func (s *State) selectTransactions(blocks []database.Block) []database.Tx {
	senders := make(map[string]struct{})
	data := make([]database.Tx, 0)

	for _, tx := range s.mempool.PickBest(s.transPerBlock) {
		if _, exists := senders[tx.Input.Address]; exists {
			continue
		}

		if err := validateAgainstChain(blocks, tx); err != nil {
			s.evHandler("state: selectTransactions: tx[%s]: dropped: %s", tx, err)
			s.mempool.Delete(tx.ID)
			continue
		}

		senders[tx.Input.Address] = struct{}{}
		data = append(data, tx)
	}

	return append(data, database.NewRewardTx(s.wallet.Address()))
}
