// Package mempool maintains the mempool for the blockchain: the transactions
// waiting to be mined, keyed by transaction id.
package mempool

import (
	"sync"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
)

// Mempool represents a cache of pending transactions organized by id.
type Mempool struct {
	mu   sync.RWMutex
	pool map[string]database.Tx
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Tx),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool.
func (mp *Mempool) Upsert(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.ID] = tx.Clone()

	return len(mp.pool)
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(txID string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, txID)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Tx)
}

// ExistingTx returns the pending transaction sent by the address, if any.
func (mp *Mempool) ExistingTx(address string) (database.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	for _, tx := range mp.pool {
		if tx.Input.Address == address {
			return tx.Clone(), true
		}
	}

	return database.Tx{}, false
}

// ClearBlockchainTransactions removes every transaction whose id appears in
// any of the blocks. It returns the number of transactions removed.
func (mp *Mempool) ClearBlockchainTransactions(blocks []database.Block) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for _, block := range blocks {
		for _, tx := range block.Data {
			if _, exists := mp.pool[tx.ID]; exists {
				delete(mp.pool, tx.ID)
				removed++
			}
		}
	}

	return removed
}

// PickBest returns the transactions for the next block, oldest first. The
// caller specifies how many transactions they want. Pass -1 for all the
// transactions.
func (mp *Mempool) PickBest(howMany int) []database.Tx {
	mp.mu.RLock()
	txs := make([]database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		txs = append(txs, tx.Clone())
	}
	mp.mu.RUnlock()

	sortByTimestamp(txs)

	if howMany >= 0 && howMany < len(txs) {
		txs = txs[:howMany]
	}

	return txs
}
