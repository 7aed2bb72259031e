package worker

import (
	"github.com/ebchain/blockchain/foundation/blockchain/database"
	"github.com/ebchain/blockchain/foundation/pubsub"
)

// maxBlockShareRequests represents the max number of mined blocks waiting to
// be published before share requests are dropped.
const maxBlockShareRequests = 10

// =============================================================================

// shareBlockOperations handles sharing newly mined blocks.
func (w *Worker) shareBlockOperations() {
	w.evHandler("worker: shareBlockOperations: G started")
	defer w.evHandler("worker: shareBlockOperations: G completed")

	for {
		select {
		case block := <-w.blockSharing:
			if !w.isShutdown() {
				w.runShareBlockOperation(block)
			}
		case <-w.shut:
			w.evHandler("worker: shareBlockOperations: received shut signal")
			return
		}
	}
}

// runShareBlockOperation publishes a mined block to the other nodes.
func (w *Worker) runShareBlockOperation(block database.Block) {
	w.evHandler("worker: runShareBlockOperation: started: blk[%s]", block.Hash)
	defer w.evHandler("worker: runShareBlockOperation: completed")

	if err := w.publish(pubsub.ChannelBlock, block); err != nil {
		w.evHandler("worker: runShareBlockOperation: WARNING: %s", err)
	}
}
