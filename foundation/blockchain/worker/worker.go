// Package worker implements mining and the sharing of blocks and transactions
// over the message bus for the blockchain.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
	"github.com/ebchain/blockchain/foundation/blockchain/state"
	"github.com/ebchain/blockchain/foundation/pubsub"
	"github.com/google/uuid"
)

// publishTimeout is how long a single publish to the message bus may take.
const publishTimeout = 5 * time.Second

// =============================================================================

// Config represents the settings for the worker.
type Config struct {
	Broker    pubsub.Broker
	AutoMine  bool
	EvHandler state.EventHandler
}

// Worker manages the mining and sharing workflows for the blockchain.
type Worker struct {
	state     *state.State
	broker    pubsub.Broker
	origin    string
	autoMine  bool
	evHandler state.EventHandler

	wg           sync.WaitGroup
	shut         chan struct{}
	cancelSub    context.CancelFunc
	messages     <-chan pubsub.Message
	startMining  chan bool
	txSharing    chan database.Tx
	blockSharing chan database.Block
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, cfg Config) error {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// The subscription lives until the worker is shutdown.
	ctx, cancel := context.WithCancel(context.Background())

	messages, err := cfg.Broker.Subscribe(ctx, pubsub.ChannelBlock, pubsub.ChannelTransaction)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe: %w", err)
	}

	w := Worker{
		state:        st,
		broker:       cfg.Broker,
		origin:       uuid.NewString(),
		autoMine:     cfg.AutoMine,
		evHandler:    ev,
		shut:         make(chan struct{}),
		cancelSub:    cancel,
		messages:     messages,
		startMining:  make(chan bool, 1),
		txSharing:    make(chan database.Tx, maxTxShareRequests),
		blockSharing: make(chan database.Block, maxBlockShareRequests),
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.subscribeOperations,
		w.miningOperations,
		w.shareTxOperations,
		w.shareBlockOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	return nil
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: cancel subscription")
	w.cancelSub()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation when the node mines on its own.
// If there is already a signal pending in the channel, just return since a
// mining operation will start.
func (w *Worker) SignalStartMining() {
	if !w.autoMine {
		return
	}

	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalShareTx signals a share transaction operation. If
// maxTxShareRequests signals exist in the channel, we won't send these.
func (w *Worker) SignalShareTx(tx database.Tx) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share Tx signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, transactions won't be shared.")
	}
}

// SignalShareBlock signals a share block operation. If
// maxBlockShareRequests signals exist in the channel, we won't send these.
func (w *Worker) SignalShareBlock(block database.Block) {
	select {
	case w.blockSharing <- block:
		w.evHandler("worker: SignalShareBlock: share block signaled")
	default:
		w.evHandler("worker: SignalShareBlock: queue full, block won't be shared.")
	}
}

// =============================================================================

// envelope wraps everything published so a node can recognize and skip its
// own messages when they come back from the bus.
type envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// publish sends the value on the channel wrapped in an envelope.
func (w *Worker) publish(channel string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope{Origin: w.origin, Payload: payload})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	return w.broker.Publish(ctx, channel, data)
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
