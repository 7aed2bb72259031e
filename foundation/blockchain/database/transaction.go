package database

import (
	"fmt"
	"maps"
	"math"
	"time"

	"github.com/ebchain/blockchain/foundation/blockchain/genesis"
	"github.com/ebchain/blockchain/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// Signer represents the behavior a wallet needs to provide for creating and
// updating transactions. The private key never leaves the signer.
type Signer interface {
	Address() string
	PublicKey() string
	Sign(value any) (string, error)
}

// =============================================================================

// Input describes who is sending money and proves it. A mining reward carries
// only the reward address.
type Input struct {
	Timestamp int64  `json:"timestamp,omitempty"`  // Time the input was signed in nanoseconds.
	Amount    uint64 `json:"amount,omitempty"`     // Balance of the sender when the transaction was created.
	Address   string `json:"address"`              // Account sending the money.
	PublicKey string `json:"public_key,omitempty"` // Public key used to verify the signature.
	Signature string `json:"signature,omitempty"`  // Signature over the outputs.
}

// Tx is the transactional information between a sender and the recipients.
// Output maps every address to the amount it ends up with from this
// transaction, the sender included.
type Tx struct {
	ID     string            `json:"id"`
	Output map[string]uint64 `json:"output"`
	Input  Input             `json:"input"`
}

// NewTx constructs a transaction that sends the amount from the sender to the
// recipient. The balance is the sender's current balance on the chain.
func NewTx(sender Signer, balance uint64, recipient string, amount uint64) (Tx, error) {
	if amount > balance {
		return Tx{}, fmt.Errorf("%w: amount %d, balance %d", ErrInsufficientBalance, amount, balance)
	}

	if recipient == sender.Address() {
		return Tx{}, fmt.Errorf("%w: %s", ErrSelfTransfer, recipient)
	}

	tx := Tx{
		ID: newTxID(),
		Output: map[string]uint64{
			recipient:        amount,
			sender.Address(): balance - amount,
		},
	}

	input, err := newInput(sender, balance, tx.Output)
	if err != nil {
		return Tx{}, err
	}
	tx.Input = input

	return tx, nil
}

// NewRewardTx constructs the transaction that pays the miner for a block.
// Reward transactions are never signed.
func NewRewardTx(minerAddress string) Tx {
	return Tx{
		ID: newTxID(),
		Output: map[string]uint64{
			minerAddress: genesis.MiningReward,
		},
		Input: Input{
			Address: genesis.RewardAddress,
		},
	}
}

// Update sends an additional amount to the recipient inside an existing
// transaction. The amount is limited by what the sender still holds in the
// transaction, not by the original balance. The input is signed again.
func (tx *Tx) Update(sender Signer, recipient string, amount uint64) error {
	if tx.Input.Address != sender.Address() {
		return fmt.Errorf("%w: transaction belongs to %s", ErrAddressMismatch, tx.Input.Address)
	}

	remaining := tx.Output[sender.Address()]
	if amount > remaining {
		return fmt.Errorf("%w: amount %d, remaining %d", ErrInsufficientBalance, amount, remaining)
	}

	if recipient == sender.Address() {
		return fmt.Errorf("%w: %s", ErrSelfTransfer, recipient)
	}

	output := maps.Clone(tx.Output)
	output[recipient] += amount
	output[sender.Address()] = remaining - amount

	input, err := newInput(sender, tx.Input.Amount, output)
	if err != nil {
		return err
	}

	tx.Output = output
	tx.Input = input

	return nil
}

// IsReward reports whether this is a mining reward transaction.
func (tx Tx) IsReward() bool {
	return tx.Input == Input{Address: genesis.RewardAddress}
}

// Clone returns a copy of the transaction that shares no memory with the
// original.
func (tx Tx) Clone() Tx {
	tx.Output = maps.Clone(tx.Output)
	return tx
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s", tx.ID, tx.Input.Address)
}

// =============================================================================

// ValidateTx checks a single transaction in isolation. A reward must pay
// exactly one address the mining reward. Any other transaction must have
// outputs that add up to the input amount and a valid signature from the
// sender over the outputs.
func ValidateTx(tx Tx) error {
	if tx.IsReward() {
		if len(tx.Output) != 1 {
			return fmt.Errorf("%w: tx[%s]: %d outputs", ErrInvalidReward, tx.ID, len(tx.Output))
		}

		for address, amount := range tx.Output {
			if amount != genesis.MiningReward {
				return fmt.Errorf("%w: tx[%s]: address %s paid %d", ErrInvalidReward, tx.ID, address, amount)
			}
		}

		return nil
	}

	var total uint64
	for _, amount := range tx.Output {
		if amount > math.MaxUint64-total {
			return fmt.Errorf("%w: tx[%s]: outputs overflow", ErrOutputMismatch, tx.ID)
		}
		total += amount
	}

	if total != tx.Input.Amount {
		return fmt.Errorf("%w: tx[%s]: outputs %d, input %d", ErrOutputMismatch, tx.ID, total, tx.Input.Amount)
	}

	if !signature.Verify(tx.Input.PublicKey, tx.Output, tx.Input.Signature) {
		return fmt.Errorf("%w: tx[%s]", ErrInvalidSignature, tx.ID)
	}

	address, err := signature.Address(tx.Input.PublicKey)
	if err != nil || address != tx.Input.Address {
		return fmt.Errorf("%w: tx[%s]: address %s", ErrAddressMismatch, tx.ID, tx.Input.Address)
	}

	return nil
}

// =============================================================================

// newInput signs the outputs on behalf of the sender.
func newInput(sender Signer, amount uint64, output map[string]uint64) (Input, error) {
	sig, err := sender.Sign(output)
	if err != nil {
		return Input{}, fmt.Errorf("sign outputs: %w", err)
	}

	input := Input{
		Timestamp: time.Now().UnixNano(),
		Amount:    amount,
		Address:   sender.Address(),
		PublicKey: sender.PublicKey(),
		Signature: sig,
	}

	return input, nil
}

// newTxID returns a short random id for a transaction.
func newTxID() string {
	return uuid.NewString()[:8]
}
