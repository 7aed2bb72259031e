package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
	"github.com/ebchain/blockchain/foundation/blockchain/wallet"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount uint64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send money to an address",
	Run: func(cmd *cobra.Command, args []string) {
		w, err := wallet.Load(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		sendWithDetails(w)
	},
}

func sendWithDetails(w *wallet.Wallet) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/blockchain", url))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var blocks []database.Block
	if err := json.NewDecoder(resp.Body).Decode(&blocks); err != nil {
		log.Fatal(err)
	}

	tx, err := w.NewTx(blocks, to, amount)
	if err != nil {
		log.Fatal(err)
	}

	data, err := json.Marshal(tx)
	if err != nil {
		log.Fatal(err)
	}

	resp, err = http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		color.Red("transaction rejected: %s", msg)
		return
	}

	color.Green("transaction %s sent: %d to %s", tx.ID, amount, to)
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the recipient.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "m", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}
