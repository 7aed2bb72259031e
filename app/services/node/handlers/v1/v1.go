// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ebchain/blockchain/app/services/node/handlers/v1/public"
	"github.com/ebchain/blockchain/foundation/blockchain/state"
	"github.com/ebchain/blockchain/foundation/events"
	"github.com/ebchain/blockchain/foundation/nameservice"
	"github.com/ebchain/blockchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/blockchain", pbl.Blockchain)
	app.Handle(http.MethodGet, version, "/blockchain/range", pbl.BlockchainRange)
	app.Handle(http.MethodGet, version, "/blockchain/length", pbl.BlockchainLength)
	app.Handle(http.MethodPost, version, "/blockchain/mine", pbl.Mine)
	app.Handle(http.MethodPost, version, "/wallet/transact", pbl.Transact)
	app.Handle(http.MethodGet, version, "/wallet/info", pbl.WalletInfo)
	app.Handle(http.MethodGet, version, "/transactions", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/known-addresses", pbl.KnownAddresses)
	app.Handle(http.MethodGet, version, "/balance/:address", pbl.Balance)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitWalletTransaction)
	app.Handle(http.MethodGet, version, "/tx/proof/:id", pbl.TxProof)
}
