// Package merkle builds merkle trees over the transactions of a block so a
// client can prove a transaction was mined without downloading the block.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrNotFound is returned when the leaf is not part of the tree.
var ErrNotFound = errors.New("leaf not found in tree")

// Side says where a proof hash is placed when it is combined with the running
// hash.
type Side int

// Set of sides for a proof hash.
const (
	Left  Side = 0
	Right Side = 1
)

// Step is one level of an inclusion proof.
type Step struct {
	Hash string `json:"hash"`
	Side Side   `json:"side"`
}

// =============================================================================

// Tree is a merkle tree built bottom up from the leaf hashes. An odd level
// duplicates its last node.
type Tree struct {
	levels [][][]byte
}

// NewTree constructs a tree over the leaves. Every leaf is hashed before it
// is placed in the tree.
func NewTree(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, errors.New("cannot construct tree with no content")
	}

	level := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		level[i] = hash(leaf)
	}

	t := Tree{
		levels: [][][]byte{level},
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
			t.levels[len(t.levels)-1] = level
		}

		next := make([][]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hash(level[i], level[i+1]))
		}

		t.levels = append(t.levels, next)
		level = next
	}

	return &t, nil
}

// Root returns the hex encoded root hash of the tree.
func (t *Tree) Root() string {
	return hexutil.Encode(t.levels[len(t.levels)-1][0])
}

// Proof returns the hashes needed to rebuild the root from the leaf.
func (t *Tree) Proof(leaf []byte) ([]Step, error) {
	target := hash(leaf)

	index := -1
	for i, h := range t.levels[0] {
		if bytes.Equal(h, target) {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, ErrNotFound
	}

	var proof []Step
	for _, level := range t.levels[:len(t.levels)-1] {
		switch index % 2 {
		case 0:
			proof = append(proof, Step{Hash: hexutil.Encode(level[index+1]), Side: Right})
		default:
			proof = append(proof, Step{Hash: hexutil.Encode(level[index-1]), Side: Left})
		}
		index /= 2
	}

	return proof, nil
}

// Verify rebuilds the root from the leaf and the proof and compares it with
// the hex encoded root.
func Verify(leaf []byte, proof []Step, root string) error {
	h := hash(leaf)

	for _, step := range proof {
		sibling, err := hexutil.Decode(step.Hash)
		if err != nil {
			return fmt.Errorf("proof hash: %w", err)
		}

		switch step.Side {
		case Left:
			h = hash(sibling, h)
		case Right:
			h = hash(h, sibling)
		default:
			return fmt.Errorf("proof side %d unknown", step.Side)
		}
	}

	if hexutil.Encode(h) != root {
		return errors.New("merkle root does not match")
	}

	return nil
}

// =============================================================================

// hash is sha256 over the concatenation of the parts.
func hash(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
