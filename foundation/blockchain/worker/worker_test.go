package worker_test

import (
	"testing"
	"time"

	"github.com/ebchain/blockchain/foundation/blockchain/state"
	"github.com/ebchain/blockchain/foundation/blockchain/wallet"
	"github.com/ebchain/blockchain/foundation/blockchain/worker"
	"github.com/ebchain/blockchain/foundation/pubsub/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// newNode starts a node with a worker attached to the broker.
func newNode(t *testing.T, broker *memory.Broker, autoMine bool) *state.State {
	t.Helper()

	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	st, err := state.New(state.Config{Wallet: w})
	if err != nil {
		t.Fatalf("Should be able to create the state: %s", err)
	}

	cfg := worker.Config{
		Broker:    broker,
		AutoMine:  autoMine,
		EvHandler: func(v string, args ...any) { t.Logf(v, args...) },
	}
	if err := worker.Run(st, cfg); err != nil {
		t.Fatalf("Should be able to run the worker: %s", err)
	}
	t.Cleanup(func() { st.Shutdown() })

	return st
}

// eventually polls the condition until it holds or the time runs out.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// =============================================================================

func Test_ShareTransaction(t *testing.T) {
	t.Log("Given the need to share transactions between nodes.")
	{
		broker := memory.New()
		defer broker.Close()

		node1 := newNode(t, broker, false)
		node2 := newNode(t, broker, false)

		tx, err := node1.SubmitWalletTransaction("bob", 10)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to submit a transaction: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to submit a transaction.", success)

		shared := eventually(func() bool {
			pool := node2.RetrieveMempool()
			return len(pool) == 1 && pool[0].ID == tx.ID
		})
		if !shared {
			t.Fatalf("\t%s\tShould see the transaction on the other node.", failed)
		}
		t.Logf("\t%s\tShould see the transaction on the other node.", success)

		if node1.QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould not add its own transaction twice.", failed)
		}
		t.Logf("\t%s\tShould not add its own transaction twice.", success)
	}
}

func Test_ShareBlock(t *testing.T) {
	t.Log("Given the need to share mined blocks between nodes.")
	{
		broker := memory.New()
		defer broker.Close()

		miner := newNode(t, broker, true)
		peer := newNode(t, broker, false)

		if _, err := peer.SubmitWalletTransaction("bob", 10); err != nil {
			t.Fatalf("\t%s\tShould be able to submit a transaction: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to submit a transaction.", success)

		mined := eventually(func() bool {
			return miner.RetrieveChainLength() == 2
		})
		if !mined {
			t.Fatalf("\t%s\tShould mine the shared transaction on its own.", failed)
		}
		t.Logf("\t%s\tShould mine the shared transaction on its own.", success)

		synced := eventually(func() bool {
			return peer.RetrieveChainLength() == 2 && peer.QueryMempoolLength() == 0
		})
		if !synced {
			t.Fatalf("\t%s\tShould replace the chain of the other node.", failed)
		}
		t.Logf("\t%s\tShould replace the chain of the other node.", success)

		if peer.QueryBalance("bob") != miner.QueryBalance("bob") {
			t.Fatalf("\t%s\tShould agree on the balances.", failed)
		}
		t.Logf("\t%s\tShould agree on the balances.", success)
	}
}
