// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
	"github.com/ebchain/blockchain/foundation/blockchain/mempool"
	"github.com/ebchain/blockchain/foundation/blockchain/wallet"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for sharing blocks and transactions with the
// rest of the network.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalShareTx(tx database.Tx)
	SignalShareBlock(block database.Block)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Wallet        *wallet.Wallet
	TransPerBlock int
	EvHandler     EventHandler
}

// State manages the blockchain and the transactions waiting to be mined.
type State struct {
	wallet        *wallet.Wallet
	transPerBlock int
	evHandler     EventHandler

	blockchain *database.Blockchain
	mempool    *mempool.Mempool

	// miningMu is always taken before walletMu.
	miningMu sync.Mutex
	walletMu sync.Mutex

	Worker Worker
}

// New constructs a new blockchain node holding only the genesis block.
func New(cfg Config) (*State, error) {
	if cfg.Wallet == nil {
		return nil, errors.New("a wallet is required for the node")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// A negative or zero value means no limit.
	transPerBlock := cfg.TransPerBlock
	if transPerBlock <= 0 {
		transPerBlock = -1
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		wallet:        cfg.Wallet,
		transPerBlock: transPerBlock,
		evHandler:     ev,

		blockchain: database.NewBlockchain(ev),
		mempool:    mempool.New(),

		Worker: noopWorker{},
	}

	// The Worker is set to a value that shares nothing. The call to
	// worker.Run will assign itself and start everything up and running
	// for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain sharing activity.
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// noopWorker is used until a real worker registers itself.
type noopWorker struct{}

func (noopWorker) Shutdown()                       {}
func (noopWorker) SignalStartMining()              {}
func (noopWorker) SignalShareTx(database.Tx)       {}
func (noopWorker) SignalShareBlock(database.Block) {}
