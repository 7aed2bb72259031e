// This program performs administrative tasks for the ledger.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ardanlabs/conf/v3"
	"github.com/ebchain/blockchain/app/tooling/admin/commands"
	"github.com/ebchain/blockchain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

type config struct {
	conf.Version
	Args           conf.Args
	AccountsFolder string `conf:"default:zblock/accounts/"`
}

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "ledger administration",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	return processCommands(cfg.Args, cfg)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, cfg config) error {
	switch args.Num(0) {
	case "blockrate":
		n, err := strconv.Atoi(args.Num(1))
		if err != nil {
			return fmt.Errorf("number of blocks: %w", err)
		}
		if err := commands.BlockRate(context.Background(), n); err != nil {
			return fmt.Errorf("measuring block rate: %w", err)
		}

	case "genkey":
		if err := commands.GenKey(cfg.AccountsFolder, args.Num(1)); err != nil {
			return fmt.Errorf("key generation: %w", err)
		}

	default:
		fmt.Println("blockrate N: mine N blocks and report the average block time")
		fmt.Println("genkey NAME: create the private key for the named account")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}
