package database_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
	"github.com/ebchain/blockchain/foundation/blockchain/genesis"
)

// addBlock mines the data onto the chain and fails the test on error.
func addBlock(t *testing.T, bc *database.Blockchain, data ...database.Tx) database.Block {
	t.Helper()

	block, err := bc.AddBlock(context.Background(), data)
	if err != nil {
		t.Fatalf("Should be able to add a block: %s", err)
	}

	return block
}

// validChain returns a chain of three mined blocks on top of genesis, each
// carrying a transfer and a reward.
func validChain(t *testing.T) *database.Blockchain {
	t.Helper()

	bc := database.NewBlockchain(noopEvHandler)
	sender := newWallet(t)
	miner := newWallet(t)

	for range 3 {
		tx, err := sender.NewTx(bc.Blocks(), "bob", 10)
		if err != nil {
			t.Fatalf("Should be able to create a transaction: %s", err)
		}
		addBlock(t, bc, tx, database.NewRewardTx(miner.Address()))
	}

	return bc
}

// =============================================================================

func Test_AddBlock(t *testing.T) {
	t.Log("Given the need to append mined blocks to the chain.")
	{
		bc := database.NewBlockchain(nil)

		if bc.Length() != 1 || !bc.LatestBlock().Equal(database.Genesis()) {
			t.Fatalf("\t%s\tShould start with the genesis block.", failed)
		}
		t.Logf("\t%s\tShould start with the genesis block.", success)

		snapshot := bc.Blocks()

		block := addBlock(t, bc, database.NewRewardTx("miner"))

		if bc.Length() != 2 || !bc.LatestBlock().Equal(block) {
			t.Fatalf("\t%s\tShould append the block to the chain.", failed)
		}
		t.Logf("\t%s\tShould append the block to the chain.", success)

		if len(snapshot) != 1 {
			t.Fatalf("\t%s\tShould not change a snapshot taken earlier.", failed)
		}
		t.Logf("\t%s\tShould not change a snapshot taken earlier.", success)

		if err := database.ValidateChain(bc.Blocks(), noopEvHandler); err != nil {
			t.Fatalf("\t%s\tShould build a valid chain: %s", failed, err)
		}
		t.Logf("\t%s\tShould build a valid chain.", success)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := bc.AddBlock(ctx, nil); !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould stop mining when the context is cancelled, got %v.", failed, err)
		}
		if bc.Length() != 2 {
			t.Fatalf("\t%s\tShould not append a block when mining stops.", failed)
		}
		t.Logf("\t%s\tShould stop mining when the context is cancelled.", success)
	}
}

func Test_ReplaceChain(t *testing.T) {
	type table struct {
		name  string
		chain func(t *testing.T) []database.Block
		exp   []error
	}

	tt := []table{
		{
			name: "shorter",
			chain: func(t *testing.T) []database.Block {
				return []database.Block{database.Genesis()}
			},
			exp: []error{database.ErrChainNotLonger},
		},
		{
			name: "genesis",
			chain: func(t *testing.T) []database.Block {
				blocks := slices.Clone(validChain(t).Blocks())
				blocks[0].Hash = "evil_genesis_hash"
				return blocks
			},
			exp: []error{database.ErrInvalidChain, database.ErrInvalidGenesis},
		},
		{
			name: "tampered",
			chain: func(t *testing.T) []database.Block {
				blocks := slices.Clone(validChain(t).Blocks())
				blocks[2].Data = []database.Tx{database.NewRewardTx("evil")}
				return blocks
			},
			exp: []error{database.ErrInvalidChain, database.ErrHashMismatch},
		},
		{
			name: "duplicate",
			chain: func(t *testing.T) []database.Block {
				bc := database.NewBlockchain(noopEvHandler)
				tx, err := newWallet(t).NewTx(bc.Blocks(), "bob", 10)
				if err != nil {
					t.Fatalf("Should be able to create a transaction: %s", err)
				}
				addBlock(t, bc, tx)
				addBlock(t, bc, tx)
				return bc.Blocks()
			},
			exp: []error{database.ErrInvalidChain, database.ErrDuplicateTransaction},
		},
		{
			name: "rewards",
			chain: func(t *testing.T) []database.Block {
				bc := database.NewBlockchain(noopEvHandler)
				addBlock(t, bc, database.NewRewardTx("miner"), database.NewRewardTx("miner"))
				addBlock(t, bc)
				return bc.Blocks()
			},
			exp: []error{database.ErrInvalidChain, database.ErrMultipleRewards},
		},
		{
			name: "input",
			chain: func(t *testing.T) []database.Block {
				bc := database.NewBlockchain(noopEvHandler)
				tx, err := database.NewTx(newWallet(t), 9000, "bob", 10)
				if err != nil {
					t.Fatalf("Should be able to create a transaction: %s", err)
				}
				addBlock(t, bc, tx)
				addBlock(t, bc)
				return bc.Blocks()
			},
			exp: []error{database.ErrInvalidChain, database.ErrInvalidInputAmount},
		},
		{
			name: "reward",
			chain: func(t *testing.T) []database.Block {
				bc := database.NewBlockchain(noopEvHandler)
				tx := database.NewRewardTx("miner")
				tx.Output["miner"] = 9000
				addBlock(t, bc, tx)
				addBlock(t, bc)
				return bc.Blocks()
			},
			exp: []error{database.ErrInvalidChain, database.ErrInvalidReward},
		},
	}

	t.Log("Given the need to replace the chain only with a longer valid chain.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen the candidate fails the %s check.", testID, tst.name)
				{
					bc := database.NewBlockchain(noopEvHandler)
					addBlock(t, bc, database.NewRewardTx("miner"))
					current := bc.Blocks()

					err := bc.ReplaceChain(tst.chain(t))
					for _, exp := range tst.exp {
						if !errors.Is(err, exp) {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, exp)
							t.Fatalf("\t%s\tTest %d:\tShould get back the right error.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right error.", success, testID)

					blocks := bc.Blocks()
					if len(blocks) != len(current) || !blocks[1].Equal(current[1]) {
						t.Fatalf("\t%s\tTest %d:\tShould keep the current chain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould keep the current chain.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}

		t.Logf("\tTest %d:\tWhen the candidate is longer and valid.", len(tt))
		{
			bc := database.NewBlockchain(noopEvHandler)
			candidate := validChain(t).Blocks()

			if err := bc.ReplaceChain(candidate); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to replace the chain: %s", failed, len(tt), err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to replace the chain.", success, len(tt))

			blocks := bc.Blocks()
			if len(blocks) != len(candidate) {
				t.Fatalf("\t%s\tTest %d:\tShould have the candidate length.", failed, len(tt))
			}
			for i := range blocks {
				if !blocks[i].Equal(candidate[i]) {
					t.Fatalf("\t%s\tTest %d:\tShould hold the candidate block %d.", failed, len(tt), i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould hold the candidate blocks.", success, len(tt))

			if err := bc.ReplaceChain(candidate); !errors.Is(err, database.ErrChainNotLonger) {
				t.Fatalf("\t%s\tTest %d:\tShould keep the incumbent on a tie, got %v.", failed, len(tt), err)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the incumbent on a tie.", success, len(tt))

			addBlock(t, bc, database.NewRewardTx("miner"))
			if err := database.ValidateChain(bc.Blocks(), noopEvHandler); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine on the new chain: %s", failed, len(tt), err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine on the new chain.", success, len(tt))
		}
	}
}

func Test_StaleBlock(t *testing.T) {
	t.Log("Given the need to throw away a block mined on a replaced chain.")
	{
		started := make(chan struct{}, 1)
		ev := func(v string, args ...any) {
			if strings.HasPrefix(v, "database: POW: MINING: started") {
				select {
				case started <- struct{}{}:
				default:
				}
			}
		}

		bc := database.NewBlockchain(ev)
		for bc.LatestBlock().Difficulty < 17 {
			addBlock(t, bc)
		}
		<-started

		// A longer fork of cheap blocks that shares only the genesis block.
		candidate := []database.Block{database.Genesis()}
		for i := 0; len(candidate) <= bc.Length()+1; i++ {
			difficulty := uint(2)
			if i > 0 {
				difficulty = 1
			}
			candidate = append(candidate, solve(t, candidate[len(candidate)-1], difficulty))
		}

		t.Logf("\tTest 0:\tWhen the chain is replaced while a block is mined.")
		{
			errCh := make(chan error, 1)
			go func() {
				_, err := bc.AddBlock(context.Background(), []database.Tx{database.NewRewardTx("miner")})
				errCh <- err
			}()
			<-started

			if err := bc.ReplaceChain(candidate); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to replace the chain: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to replace the chain.", success)

			if err := <-errCh; !errors.Is(err, database.ErrStaleBlock) {
				t.Fatalf("\t%s\tTest 0:\tShould get back a stale block error, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get back a stale block error.", success)

			if bc.Length() != len(candidate) || bc.LatestBlock().Hash != candidate[len(candidate)-1].Hash {
				t.Fatalf("\t%s\tTest 0:\tShould hold only the candidate blocks.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hold only the candidate blocks.", success)

			if err := database.ValidateChain(bc.Blocks(), noopEvHandler); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould keep a valid chain: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould keep a valid chain.", success)
		}

		t.Logf("\tTest 1:\tWhen mining again after the replace.")
		{
			block := addBlock(t, bc)

			if block.LastHash != candidate[len(candidate)-1].Hash {
				t.Fatalf("\t%s\tTest 1:\tShould build on the new tail.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould build on the new tail.", success)
		}
	}
}

func Test_Balance(t *testing.T) {
	t.Log("Given the need to derive balances from the chain.")
	{
		bc := database.NewBlockchain(noopEvHandler)
		sender := newWallet(t)
		friend := newWallet(t)

		if b := sender.Balance(bc.Blocks()); b != genesis.StartingBalance {
			t.Fatalf("\t%s\tShould start with the starting balance, got %d.", failed, b)
		}
		t.Logf("\t%s\tShould start with the starting balance.", success)

		tx, err := sender.NewTx(bc.Blocks(), "bob", 50)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}
		addBlock(t, bc, tx)

		if b := sender.Balance(bc.Blocks()); b != 950 {
			t.Fatalf("\t%s\tShould have 950 after sending 50, got %d.", failed, b)
		}
		t.Logf("\t%s\tShould have 950 after sending 50.", success)

		if b := database.Balance(bc.Blocks(), "bob"); b != genesis.StartingBalance+50 {
			t.Fatalf("\t%s\tShould credit the recipient, got %d.", failed, b)
		}
		t.Logf("\t%s\tShould credit the recipient.", success)

		received1, err := friend.NewTx(bc.Blocks(), sender.Address(), 25)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}
		received2, err := database.NewTx(newWallet(t), genesis.StartingBalance, sender.Address(), 43)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
		}
		addBlock(t, bc, received1, received2)

		exp := genesis.StartingBalance - 50 + 25 + 43
		for range 2 {
			if b := sender.Balance(bc.Blocks()); b != exp {
				t.Fatalf("\t%s\tShould add what was received, got %d, exp %d.", failed, b, exp)
			}
		}
		t.Logf("\t%s\tShould add what was received every time it is derived.", success)

		if err := database.ValidateChain(bc.Blocks(), noopEvHandler); err != nil {
			t.Fatalf("\t%s\tShould build a valid chain: %s", failed, err)
		}
		t.Logf("\t%s\tShould build a valid chain.", success)

		known := database.KnownAddresses(bc.Blocks())
		if len(known) != 4 {
			t.Fatalf("\t%s\tShould know every address paid on the chain, got %v.", failed, known)
		}
		t.Logf("\t%s\tShould know every address paid on the chain.", success)
	}
}
