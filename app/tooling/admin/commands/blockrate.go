// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
	"github.com/ebchain/blockchain/foundation/blockchain/genesis"
)

// BlockRate mines the number of empty blocks on a fresh chain and reports
// the average time between blocks as the difficulty settles.
func BlockRate(ctx context.Context, blocks int) error {
	if blocks <= 0 {
		return fmt.Errorf("number of blocks must be positive: %d", blocks)
	}

	bc := database.NewBlockchain(nil)

	var total time.Duration
	for i := range blocks {
		last := bc.LatestBlock()

		block, err := bc.AddBlock(ctx, nil)
		if err != nil {
			return fmt.Errorf("mining block %d: %w", i+1, err)
		}

		// The genesis timestamp is fixed so the first gap is not measured.
		if i == 0 {
			fmt.Printf("block[%d] difficulty[%d]\n", bc.Length()-1, block.Difficulty)
			continue
		}

		gap := time.Duration(block.Timestamp - last.Timestamp)
		total += gap

		fmt.Printf("block[%d] time[%s] difficulty[%d] average[%s]\n", bc.Length()-1, gap, block.Difficulty, total/time.Duration(i))
	}

	fmt.Printf("target mine rate[%s]\n", genesis.MineRate)

	return nil
}
