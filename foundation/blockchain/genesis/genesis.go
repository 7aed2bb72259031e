// Package genesis maintains the fixed values every node on the chain must agree
// on, starting with the genesis block itself.
package genesis

import "time"

// Values that describe the genesis block. Every valid chain starts with a block
// built from exactly these values.
const (
	Timestamp  int64  = 1
	LastHash   string = "genesis_last_hash"
	Hash       string = "genesis_hash"
	Nonce      uint64 = 0
	Difficulty uint   = 3
)

// MineRate is the target time between blocks. Blocks mined faster than this
// raise the difficulty, blocks mined slower lower it.
const MineRate = 4 * time.Second

// StartingBalance is the balance every address has before it shows up in any
// transaction on the chain.
const StartingBalance uint64 = 1000

// Reward settings.
const (
	MiningReward  uint64 = 50
	RewardAddress string = "*--official-mining-reward-address--*"
)
