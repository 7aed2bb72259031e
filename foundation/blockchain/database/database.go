// Package database handles the in memory ledger: the ordered list of blocks,
// the rules for validating blocks and their transaction history, and the
// replacement of the ledger by a longer valid chain.
package database

import (
	"context"
	"fmt"
	"sync"
)

// Blockchain manages the ordered list of blocks that make up the ledger. It
// always starts with the genesis block.
type Blockchain struct {
	mu sync.RWMutex

	blocks    []Block
	replaced  chan struct{}
	evHandler func(v string, args ...any)
}

// NewBlockchain constructs a ledger that holds only the genesis block.
func NewBlockchain(evHandler func(v string, args ...any)) *Blockchain {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	return &Blockchain{
		blocks:    []Block{Genesis()},
		replaced:  make(chan struct{}),
		evHandler: evHandler,
	}
}

// Blocks returns a snapshot of the chain. The returned slice can't grow into
// the ledger's storage, so it is safe to read while blocks are added. The
// blocks still share their data with the ledger and must not be modified:
// clone the slice and the transactions before changing them.
func (bc *Blockchain) Blocks() []Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	return bc.blocks[:len(bc.blocks):len(bc.blocks)]
}

// LatestBlock returns the tail of the chain.
func (bc *Blockchain) LatestBlock() Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	return bc.blocks[len(bc.blocks)-1]
}

// Length returns the number of blocks in the chain, genesis included.
func (bc *Blockchain) Length() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	return len(bc.blocks)
}

// AddBlock mines a new block with the specified data on top of the current
// tail and appends it. Mining is aborted if the chain is replaced while the
// work is being done, and the tail is checked again before the block is
// written. In both cases ErrStaleBlock is returned and the block is thrown
// away so the caller can rebuild the data and try again.
func (bc *Blockchain) AddBlock(ctx context.Context, data []Tx) (Block, error) {
	bc.mu.RLock()
	tail := bc.blocks[len(bc.blocks)-1]
	replaced := bc.replaced
	bc.mu.RUnlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-replaced:
			cancel()
		case <-ctx.Done():
		}
	}()

	block, err := POW(ctx, tail, data, bc.evHandler)
	if err != nil {
		select {
		case <-replaced:
			return Block{}, ErrStaleBlock
		default:
			return Block{}, err
		}
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	if latest := bc.blocks[len(bc.blocks)-1]; latest.Hash != block.LastHash {
		bc.evHandler("database: AddBlock: STALE: prevBlk[%s]: tail[%s]", block.LastHash, latest.Hash)
		return Block{}, ErrStaleBlock
	}

	bc.blocks = append(bc.blocks, block)

	bc.evHandler("database: AddBlock: blk[%s]: length[%d]", block.Hash, len(bc.blocks))

	return block, nil
}

// ReplaceChain swaps the ledger for the candidate chain when the candidate is
// longer and valid from the genesis block onwards. Ties keep the current
// chain. On failure the current chain is left untouched.
func (bc *Blockchain) ReplaceChain(candidate []Block) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if len(candidate) <= len(bc.blocks) {
		return fmt.Errorf("%w: candidate %d, current %d", ErrChainNotLonger, len(candidate), len(bc.blocks))
	}

	if err := ValidateChain(candidate, bc.evHandler); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChain, err)
	}

	blocks := make([]Block, len(candidate))
	copy(blocks, candidate)
	bc.blocks = blocks

	// Abort any mining that is building on the old tail.
	close(bc.replaced)
	bc.replaced = make(chan struct{})

	bc.evHandler("database: ReplaceChain: replaced: length[%d]: tail[%s]", len(blocks), blocks[len(blocks)-1].Hash)

	return nil
}

// =============================================================================

// ValidateChain checks the chain starts with the genesis block, every block is
// valid against its parent, and the transaction history is sound.
func ValidateChain(blocks []Block, evHandler func(v string, args ...any)) error {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	if len(blocks) == 0 || !blocks[0].Equal(Genesis()) {
		return ErrInvalidGenesis
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], evHandler); err != nil {
			return fmt.Errorf("blk[%d]: %w", i, err)
		}
	}

	return ValidateTransactionChain(blocks)
}

// ValidateTransactionChain walks every transaction in chain order. A
// transaction id may appear only once in the whole chain and a block may hold
// only one reward. The input amount of every other transaction must match the
// balance of the sender derived from the blocks before the one holding it.
func ValidateTransactionChain(blocks []Block) error {
	seen := make(map[string]struct{})

	for i, block := range blocks {
		var rewarded bool

		for _, tx := range block.Data {
			if _, exists := seen[tx.ID]; exists {
				return fmt.Errorf("%w: blk[%d]: tx[%s]", ErrDuplicateTransaction, i, tx.ID)
			}
			seen[tx.ID] = struct{}{}

			switch {
			case tx.IsReward():
				if rewarded {
					return fmt.Errorf("%w: blk[%d]: tx[%s]", ErrMultipleRewards, i, tx.ID)
				}
				rewarded = true

			default:
				historic := Balance(blocks[:i], tx.Input.Address)
				if historic != tx.Input.Amount {
					return fmt.Errorf("%w: blk[%d]: tx[%s]: input %d, historic balance %d", ErrInvalidInputAmount, i, tx.ID, tx.Input.Amount, historic)
				}
			}

			if err := ValidateTx(tx); err != nil {
				return fmt.Errorf("blk[%d]: %w", i, err)
			}
		}
	}

	return nil
}
