package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ebchain/blockchain/foundation/blockchain/genesis"
	"github.com/ebchain/blockchain/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together and linked to the
// block before it.
type Block struct {
	Timestamp  int64  `json:"timestamp"`  // Time the block was mined in nanoseconds.
	LastHash   string `json:"last_hash"`  // Hash of the previous block in the chain.
	Hash       string `json:"hash"`       // Hash of the fields of this block.
	Data       []Tx   `json:"data"`       // Transactions carried by this block.
	Nonce      uint64 `json:"nonce"`      // Value identified to solve the hash solution.
	Difficulty uint   `json:"difficulty"` // Number of leading zero bits needed in the hash.
}

// Genesis returns the first block of every chain.
func Genesis() Block {
	return Block{
		Timestamp:  genesis.Timestamp,
		LastHash:   genesis.LastHash,
		Hash:       genesis.Hash,
		Data:       []Tx{},
		Nonce:      genesis.Nonce,
		Difficulty: genesis.Difficulty,
	}
}

// POW constructs a new Block on top of the last block and performs the work to
// find a nonce that solves the cryptographic POW puzzle. The timestamp and the
// difficulty are recalculated on every attempt. Only a cancelled context stops
// the search early.
func POW(ctx context.Context, lastBlock Block, data []Tx, evHandler func(v string, args ...any)) (Block, error) {
	evHandler("database: POW: MINING: started: prevBlk[%s]: txs[%d]", lastBlock.Hash, len(data))
	defer evHandler("database: POW: MINING: completed")

	nb := Block{
		LastHash: lastBlock.Hash,
		Data:     data,
	}

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			evHandler("database: POW: MINING: attempts[%d]", attempts)
		}

		// Did another node replace the chain or did we run out of time.
		if err := ctx.Err(); err != nil {
			evHandler("database: POW: MINING: CANCELLED")
			return Block{}, err
		}

		nb.Timestamp = time.Now().UnixNano()
		nb.Difficulty = AdjustDifficulty(lastBlock, nb.Timestamp)
		nb.Hash = nb.calculateHash()

		if isHashSolved(nb.Difficulty, nb.Hash) {
			evHandler("database: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: difficulty[%d]: attempts[%d]", nb.LastHash, nb.Hash, nb.Difficulty, attempts)
			return nb, nil
		}

		nb.Nonce++
	}
}

// AdjustDifficulty calculates the difficulty for a block mined at the specified
// time on top of the last block. The difficulty never drops below 1.
func AdjustDifficulty(lastBlock Block, newTimestamp int64) uint {
	if newTimestamp-lastBlock.Timestamp < genesis.MineRate.Nanoseconds() {
		return lastBlock.Difficulty + 1
	}

	if lastBlock.Difficulty <= 1 {
		return 1
	}

	return lastBlock.Difficulty - 1
}

// ValidateBlock takes a block and validates it against the block it claims to
// follow. The checks run in a fixed order and the first failure is returned.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%s]: check: last hash does match parent block", b.Hash)

	if b.LastHash != previousBlock.Hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrChainLinkage, b.LastHash, previousBlock.Hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: block hash has been solved", b.Hash)

	if !isHashSolved(b.Difficulty, b.Hash) {
		return fmt.Errorf("%w: hash %s, difficulty %d", ErrProofOfWork, b.Hash, b.Difficulty)
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: difficulty is within 1 of the parent block", b.Hash)

	if absDiff(b.Difficulty, previousBlock.Difficulty) > 1 {
		return fmt.Errorf("%w: parent %d, block %d", ErrDifficultyJump, previousBlock.Difficulty, b.Difficulty)
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: hash does match block fields", b.Hash)

	if hash := b.calculateHash(); hash != b.Hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrHashMismatch, b.Hash, hash)
	}

	return nil
}

// Equal reports whether the two blocks carry the same field values.
func (b Block) Equal(other Block) bool {
	switch {
	case b.Timestamp != other.Timestamp,
		b.LastHash != other.LastHash,
		b.Hash != other.Hash,
		b.Nonce != other.Nonce,
		b.Difficulty != other.Difficulty:
		return false
	}

	return signature.Hash(b.txs()) == signature.Hash(other.txs())
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%s:%d", b.Hash, len(b.Data))
}

// =============================================================================

// calculateHash returns the hash of the fields that make up the block.
func (b Block) calculateHash() string {
	return signature.Hash(b.Timestamp, b.LastHash, b.txs(), b.Difficulty, b.Nonce)
}

// txs returns the block data with a nil list treated as empty, so a block
// decoded from JSON hashes the same as the block that was mined.
func (b Block) txs() []Tx {
	if b.Data == nil {
		return []Tx{}
	}
	return b.Data
}

// isHashSolved checks the hash to make sure it complies with the POW rules.
// The binary form of the hash needs a difficulty number of leading 0 bits.
func isHashSolved(difficulty uint, hash string) bool {
	if difficulty < 1 {
		return false
	}

	zeros, err := signature.LeadingZeroBits(hash)
	if err != nil {
		return false
	}

	return uint(zeros) >= difficulty
}

// absDiff returns the distance between two difficulties.
func absDiff(a, b uint) uint {
	if a > b {
		return a - b
	}
	return b - a
}
