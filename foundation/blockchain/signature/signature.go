// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// ebStamp is prepended to every digest that gets signed. This will make it
// clear that the signature comes from this blockchain and can't be replayed
// as a signature over some other kind of message.
const ebStamp = "\x19EB Signed Message:\n32"

// =============================================================================

// Hash returns a unique string for the set of values. Each value is encoded
// into its canonical JSON form and the encodings are sorted before hashing,
// so the order of the arguments does not change the result.
func Hash(values ...any) string {
	encoded := make([]string, len(values))
	for i, value := range values {
		data, err := Canonical(value)
		if err != nil {
			return ZeroHash
		}
		encoded[i] = string(data)
	}

	sort.Strings(encoded)

	hash := sha256.Sum256([]byte(strings.Join(encoded, "")))
	return hex.EncodeToString(hash[:])
}

// Canonical returns the deterministic encoding of the value used for hashing
// and signing. Map keys are sorted by the encoder and HTML characters are
// left alone so the bytes match what other nodes produce.
func Canonical(value any) ([]byte, error) {
	var b bytes.Buffer

	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(b.Bytes(), []byte("\n")), nil
}

// ToBinary expands a hex string into its bit string. Every nibble maps to
// exactly four bits so leading zero bits are preserved.
func ToBinary(hexStr string) (string, error) {
	var b strings.Builder
	b.Grow(len(hexStr) * 4)

	for i := 0; i < len(hexStr); i++ {
		c := hexStr[i]

		var n byte
		switch {
		case c >= '0' && c <= '9':
			n = c - '0'
		case c >= 'a' && c <= 'f':
			n = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			n = c - 'A' + 10
		default:
			return "", fmt.Errorf("invalid hex character %q at position %d", c, i)
		}

		for bit := 3; bit >= 0; bit-- {
			if n&(1<<bit) == 0 {
				b.WriteByte('0')
				continue
			}
			b.WriteByte('1')
		}
	}

	return b.String(), nil
}

// LeadingZeroBits returns the number of zero bits the hex string starts with.
func LeadingZeroBits(hexStr string) (int, error) {
	bits, err := ToBinary(hexStr)
	if err != nil {
		return 0, err
	}

	return len(bits) - len(strings.TrimLeft(bits, "0")), nil
}

// =============================================================================

// Sign uses the specified private key to sign the value. The signature is
// returned hex encoded in the [R|S|V] format.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	return hexutil.Encode(sig), nil
}

// Verify checks the signature was produced by the private key behind the
// public key over the specified value. Any malformed input returns false.
func Verify(publicKey string, value any, sig string) bool {
	pk, err := hexutil.Decode(publicKey)
	if err != nil {
		return false
	}

	if _, err := crypto.UnmarshalPubkey(pk); err != nil {
		return false
	}

	sigBytes, err := hexutil.Decode(sig)
	if err != nil {
		return false
	}

	// Only the [R|S] portion of the signature is verified.
	if len(sigBytes) != crypto.SignatureLength {
		return false
	}

	data, err := stamp(value)
	if err != nil {
		return false
	}

	return crypto.VerifySignature(pk, data, sigBytes[:crypto.RecoveryIDOffset])
}

// PublicKeyString returns the hex encoding of the uncompressed public key.
func PublicKeyString(publicKey ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(&publicKey))
}

// Address returns the account address that belongs to the hex encoded
// public key.
func Address(publicKey string) (string, error) {
	pk, err := hexutil.Decode(publicKey)
	if err != nil {
		return "", err
	}

	pub, err := crypto.UnmarshalPubkey(pk)
	if err != nil {
		return "", err
	}

	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this value with
// the stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {

	// Encode the value the same way every node does.
	v, err := Canonical(value)
	if err != nil {
		return nil, err
	}

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data.
	txHash := crypto.Keccak256(v)

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256([]byte(ebStamp), txHash), nil
}
