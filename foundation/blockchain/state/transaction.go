package state

import (
	"fmt"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
)

// SubmitWalletTransaction sends money from the node's wallet to the recipient.
// If the wallet already has a transaction waiting to be mined, the recipient is
// added to that transaction instead of creating a new one. The call waits for
// any block being mined to be written, so a transaction already sealed in that
// block is never updated.
func (s *State) SubmitWalletTransaction(recipient string, amount uint64) (database.Tx, error) {
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	s.walletMu.Lock()
	defer s.walletMu.Unlock()

	tx, exists := s.mempool.ExistingTx(s.wallet.Address())
	switch {
	case exists:
		if err := tx.Update(s.wallet, recipient, amount); err != nil {
			return database.Tx{}, err
		}

	default:
		var err error
		tx, err = s.wallet.NewTx(s.blockchain.Blocks(), recipient, amount)
		if err != nil {
			return database.Tx{}, err
		}
	}

	s.mempool.Upsert(tx)
	s.evHandler("state: SubmitWalletTransaction: tx[%s]: pool[%d]", tx, s.mempool.Count())

	s.Worker.SignalShareTx(tx)
	s.Worker.SignalStartMining()

	return tx, nil
}

// UpsertWalletTransaction accepts a transaction signed by an external wallet
// for inclusion.
func (s *State) UpsertWalletTransaction(tx database.Tx) error {
	if err := validateAgainstChain(s.blockchain.Blocks(), tx); err != nil {
		return err
	}

	s.mempool.Upsert(tx)
	s.evHandler("state: UpsertWalletTransaction: tx[%s]: pool[%d]", tx, s.mempool.Count())

	s.Worker.SignalShareTx(tx)
	s.Worker.SignalStartMining()

	return nil
}

// UpsertNodeTransaction accepts a transaction from a node for inclusion.
func (s *State) UpsertNodeTransaction(tx database.Tx) error {
	if err := validateAgainstChain(s.blockchain.Blocks(), tx); err != nil {
		return err
	}

	s.mempool.Upsert(tx)
	s.evHandler("state: UpsertNodeTransaction: tx[%s]: pool[%d]", tx, s.mempool.Count())

	s.Worker.SignalStartMining()

	return nil
}

// =============================================================================

// validateAgainstChain checks a pending transaction could be mined on top of
// the blocks. Rewards are only ever created by a miner for its own block.
func validateAgainstChain(blocks []database.Block, tx database.Tx) error {
	if tx.IsReward() {
		return fmt.Errorf("%w: tx[%s]: rewards can't be submitted", database.ErrInvalidReward, tx.ID)
	}

	for _, block := range blocks {
		for _, mined := range block.Data {
			if mined.ID == tx.ID {
				return fmt.Errorf("%w: tx[%s]", database.ErrDuplicateTransaction, tx.ID)
			}
		}
	}

	if balance := database.Balance(blocks, tx.Input.Address); balance != tx.Input.Amount {
		return fmt.Errorf("%w: tx[%s]: input %d, balance %d", database.ErrInvalidInputAmount, tx.ID, tx.Input.Amount, balance)
	}

	return database.ValidateTx(tx)
}
