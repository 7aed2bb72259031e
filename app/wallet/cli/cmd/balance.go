package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ebchain/blockchain/foundation/blockchain/wallet"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type balance struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	w, err := wallet.Load(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("For Account:", w.Address())

	resp, err := http.Get(fmt.Sprintf("%s/v1/balance/%s", url, w.Address()))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var bal balance
	if err := json.NewDecoder(resp.Body).Decode(&bal); err != nil {
		log.Fatal(err)
	}

	color.Green("%d", bal.Balance)
}
