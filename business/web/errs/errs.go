// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap gives errors.Is access to the wrapped ledger error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// ledgerErrors are the rejections from the ledger a client can act on.
var ledgerErrors = []error{
	database.ErrInsufficientBalance,
	database.ErrSelfTransfer,
	database.ErrInvalidSignature,
	database.ErrAddressMismatch,
	database.ErrOutputMismatch,
	database.ErrInvalidInputAmount,
	database.ErrInvalidReward,
	database.ErrDuplicateTransaction,
	database.ErrChainNotLonger,
	database.ErrInvalidChain,
}

// FromLedger marks an error returned by the ledger as trusted with a bad
// request status when the client caused it. Any other error is returned
// unchanged and will be reported as an internal error.
func FromLedger(err error) error {
	for _, target := range ledgerErrors {
		if errors.Is(err, target) {
			return NewTrusted(err, http.StatusBadRequest)
		}
	}
	return err
}
