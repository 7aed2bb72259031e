package database

import "errors"

// Set of errors returned when a block fails validation against its parent.
var (
	ErrChainLinkage   = errors.New("block last hash does not match the parent hash")
	ErrProofOfWork    = errors.New("block hash does not meet the proof of work requirement")
	ErrDifficultyJump = errors.New("block difficulty changed by more than 1")
	ErrHashMismatch   = errors.New("block hash does not match the block fields")
)

// Set of errors returned when the transaction history of a chain is invalid.
var (
	ErrDuplicateTransaction = errors.New("transaction appears more than once in the chain")
	ErrMultipleRewards      = errors.New("block contains more than one mining reward")
	ErrInvalidInputAmount   = errors.New("transaction input amount does not match the historic balance")
)

// Set of errors returned when a single transaction is invalid.
var (
	ErrOutputMismatch      = errors.New("transaction outputs do not add up to the input amount")
	ErrInvalidSignature    = errors.New("transaction signature is invalid")
	ErrAddressMismatch     = errors.New("public key does not belong to the input address")
	ErrInvalidReward       = errors.New("mining reward transaction is invalid")
	ErrInsufficientBalance = errors.New("amount exceeds the balance")
	ErrSelfTransfer        = errors.New("sender and recipient are the same address")
)

// Set of errors returned by the ledger when accepting or replacing blocks.
var (
	ErrChainNotLonger = errors.New("incoming chain must be longer")
	ErrInvalidChain   = errors.New("incoming chain is invalid")
	ErrInvalidGenesis = errors.New("chain does not start with the genesis block")
	ErrStaleBlock     = errors.New("chain changed while the block was being mined")
)
