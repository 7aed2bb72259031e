// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ebchain/blockchain/business/web/errs"
	"github.com/ebchain/blockchain/foundation/blockchain/database"
	"github.com/ebchain/blockchain/foundation/blockchain/state"
	"github.com/ebchain/blockchain/foundation/events"
	"github.com/ebchain/blockchain/foundation/nameservice"
	"github.com/ebchain/blockchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Blockchain returns the full chain, genesis first.
func (h Handlers) Blockchain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// BlockchainRange returns a page of the chain, newest block first.
func (h Handlers) BlockchainRange(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	start, err := queryInt(r, "start", 0)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	end, err := queryInt(r, "end", h.State.RetrieveChainLength())
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.State.RetrieveChainRange(start, end), http.StatusOK)
}

// BlockchainLength returns the number of blocks in the chain.
func (h Handlers) BlockchainLength(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChainLength(), http.StatusOK)
}

// Mine mines the pending transactions and the node's reward into a new block.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		return fmt.Errorf("mining: %w", err)
	}

	resp := mined{
		Block:  block,
		Length: h.State.RetrieveChainLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transact sends money from the node's wallet.
func (h Handlers) Transact(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req transact
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("wallet transact", "traceid", v.TraceID, "to", req.Recipient, "amount", req.Amount)

	tx, err := h.State.SubmitWalletTransaction(req.Recipient, req.Amount)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// WalletInfo returns the address and balance of the node's wallet.
func (h Handlers) WalletInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	info := h.State.RetrieveWalletInfo()

	resp := walletInfo{
		Address: info.Address,
		Name:    h.NS.Lookup(info.Address),
		Balance: info.Balance,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of transactions waiting to be mined.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// KnownAddresses returns every address paid on the chain.
func (h Handlers) KnownAddresses(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addresses := h.State.QueryKnownAddresses()

	accounts := make([]account, len(addresses))
	for i, address := range addresses {
		accounts[i] = account{
			Address: address,
			Name:    h.NS.Lookup(address),
			Balance: h.State.QueryBalance(address),
		}
	}

	return web.Respond(ctx, w, accounts, http.StatusOK)
}

// Balance returns the balance of the address on the current chain.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	resp := account{
		Address: address,
		Name:    h.NS.Lookup(address),
		Balance: h.State.QueryBalance(address),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitWalletTransaction adds a transaction signed by an external wallet to
// the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("add user tran", "traceid", v.TraceID, "tx", tx)

	if err := h.State.UpsertWalletTransaction(tx); err != nil {
		return errs.FromLedger(err)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transactions added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// TxProof returns the proof a transaction was mined on the chain.
func (h Handlers) TxProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	proof, err := h.State.QueryTxProof(web.Param(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrTxNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, proof, http.StatusOK)
}

// =============================================================================

// queryInt reads an integer query parameter, returning the fallback when the
// parameter is not present.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", key, err)
	}

	return n, nil
}
