package worker

import (
	"encoding/json"
	"errors"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
	"github.com/ebchain/blockchain/foundation/pubsub"
)

// subscribeOperations handles the blocks and transactions published by the
// other nodes.
func (w *Worker) subscribeOperations() {
	w.evHandler("worker: subscribeOperations: G started")
	defer w.evHandler("worker: subscribeOperations: G completed")

	for {
		select {
		case msg, ok := <-w.messages:
			if !ok {
				w.evHandler("worker: subscribeOperations: subscription closed")
				return
			}
			if !w.isShutdown() {
				w.runMessageOperation(msg)
			}
		case <-w.shut:
			w.evHandler("worker: subscribeOperations: received shut signal")
			return
		}
	}
}

// runMessageOperation applies a single message from the bus to the state.
func (w *Worker) runMessageOperation(msg pubsub.Message) {
	var env envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		w.evHandler("worker: runMessageOperation: channel[%s]: WARNING: bad envelope: %s", msg.Channel, err)
		return
	}

	// Our own messages come back to us from the bus.
	if env.Origin == w.origin {
		return
	}

	switch msg.Channel {
	case pubsub.ChannelBlock:
		var block database.Block
		if err := json.Unmarshal(env.Payload, &block); err != nil {
			w.evHandler("worker: runMessageOperation: WARNING: bad block: %s", err)
			return
		}

		w.evHandler("worker: runMessageOperation: block received: blk[%s]", block.Hash)

		if err := w.state.ProcessProposedBlock(block); err != nil {
			switch {
			case errors.Is(err, database.ErrChainNotLonger):
				w.evHandler("worker: runMessageOperation: block ignored: %s", err)
			default:
				w.evHandler("worker: runMessageOperation: WARNING: block rejected: %s", err)
			}
		}

	case pubsub.ChannelTransaction:
		var tx database.Tx
		if err := json.Unmarshal(env.Payload, &tx); err != nil {
			w.evHandler("worker: runMessageOperation: WARNING: bad transaction: %s", err)
			return
		}

		w.evHandler("worker: runMessageOperation: transaction received: tx[%s]", tx)

		if err := w.state.UpsertNodeTransaction(tx); err != nil {
			w.evHandler("worker: runMessageOperation: WARNING: transaction rejected: %s", err)
		}

	default:
		w.evHandler("worker: runMessageOperation: WARNING: unknown channel[%s]", msg.Channel)
	}
}
