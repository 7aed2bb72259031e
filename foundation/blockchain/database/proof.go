package database

import (
	"errors"
	"fmt"

	"github.com/ebchain/blockchain/foundation/blockchain/merkle"
	"github.com/ebchain/blockchain/foundation/blockchain/signature"
)

// Set of errors returned when proving a transaction was mined.
var (
	ErrTxNotFound    = errors.New("transaction not found")
	ErrProofMismatch = errors.New("proof does not belong to the block")
)

// TxProof proves a transaction is part of the merkle tree with the specified
// root. On its own the proof says nothing about the block: use VerifyBlock to
// tie the root to the block named by BlockHash.
type TxProof struct {
	BlockHash string        `json:"block_hash"`
	Tx        Tx            `json:"tx"`
	Root      string        `json:"root"`
	Proof     []merkle.Step `json:"proof"`
}

// Verify checks the proof against its root.
func (p TxProof) Verify() error {
	leaf, err := signature.Canonical(p.Tx)
	if err != nil {
		return err
	}

	return merkle.Verify(leaf, p.Proof, p.Root)
}

// VerifyBlock checks the proof against the block it claims to come from. The
// block's hash must match its fields and the proof's block hash, and the root
// must be the one rebuilt from the block's transactions.
func (p TxProof) VerifyBlock(b Block) error {
	if b.Hash != p.BlockHash {
		return fmt.Errorf("%w: block %s, proof names %s", ErrProofMismatch, b.Hash, p.BlockHash)
	}

	if hash := b.calculateHash(); hash != b.Hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrHashMismatch, b.Hash, hash)
	}

	tree, err := b.merkleTree()
	if err != nil {
		return err
	}

	if root := tree.Root(); root != p.Root {
		return fmt.Errorf("%w: root %s, block root %s", ErrProofMismatch, p.Root, root)
	}

	return p.Verify()
}

// FindTxProof searches the chain for the transaction and builds the proof of
// its inclusion.
func FindTxProof(blocks []Block, txID string) (TxProof, error) {
	for _, block := range blocks {
		for _, tx := range block.Data {
			if tx.ID != txID {
				continue
			}

			return block.txProof(tx)
		}
	}

	return TxProof{}, fmt.Errorf("%w: %s", ErrTxNotFound, txID)
}

// txProof builds the merkle tree over the block's transactions and proves
// the transaction is one of them.
func (b Block) txProof(tx Tx) (TxProof, error) {
	tree, err := b.merkleTree()
	if err != nil {
		return TxProof{}, err
	}

	leaf, err := signature.Canonical(tx)
	if err != nil {
		return TxProof{}, err
	}

	proof, err := tree.Proof(leaf)
	if err != nil {
		return TxProof{}, err
	}

	return TxProof{
		BlockHash: b.Hash,
		Tx:        tx,
		Root:      tree.Root(),
		Proof:     proof,
	}, nil
}

// merkleTree builds the tree over the canonical form of the block's
// transactions.
func (b Block) merkleTree() (*merkle.Tree, error) {
	leaves := make([][]byte, len(b.Data))
	for i, data := range b.Data {
		leaf, err := signature.Canonical(data)
		if err != nil {
			return nil, fmt.Errorf("tx[%s]: %w", data.ID, err)
		}
		leaves[i] = leaf
	}

	return merkle.NewTree(leaves)
}
