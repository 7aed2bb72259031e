package cmd

import (
	"log"
	"os"

	"github.com/ebchain/blockchain/foundation/blockchain/wallet"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	w, err := wallet.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(accountPath, 0o755); err != nil {
		log.Fatal(err)
	}

	path := getPrivateKeyPath()
	if err := w.Save(path); err != nil {
		log.Fatal(err)
	}

	color.Green("key saved to %s", path)
	color.Cyan("account %s", w.Address())
}
