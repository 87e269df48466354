package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
)

// Supported transcript and hash-to-field functions
const (
	HashSHA256 = "sha256"
	HashSHA3   = "sha3"
)

// Channel is a Fiat-Shamir transcript. Every value sent is absorbed into the
// running state; every value received is derived from it, so a verifier
// replaying the same sends draws the same challenges.
type Channel struct {
	state    []byte
	log      []string
	hashFunc string
}

// NewChannel creates a transcript using hashFunc. The empty string selects sha3.
func NewChannel(hashFunc string) *Channel {
	if hashFunc == "" {
		hashFunc = HashSHA3
	}
	return &Channel{
		state:    []byte{0},
		log:      make([]string, 0, 16),
		hashFunc: hashFunc,
	}
}

// Send absorbs data into the transcript
func (c *Channel) Send(data []byte) {
	c.log = append(c.log, "send:"+hex.EncodeToString(data))
	c.state = digest(c.hashFunc, append(c.state, data...))
}

// SendElement absorbs the big-endian encoding of a field element
func (c *Channel) SendElement(e *core.FieldElement) {
	c.Send(e.Bytes())
}

// ReceiveRandomInt squeezes an integer in [min, max]. It returns nil when
// min > max.
func (c *Channel) ReceiveRandomInt(min, max *big.Int) *big.Int {
	if min.Cmp(max) > 0 {
		return nil
	}

	span := new(big.Int).Sub(max, min)
	span.Add(span, bigOne)

	r := new(big.Int).SetBytes(c.state)
	r.Mod(r, span)
	r.Add(r, min)

	c.log = append(c.log, "receive:"+r.String())
	c.state = digest(c.hashFunc, c.state)
	return r
}

// ReceiveIndex squeezes an index in [0, n). n must be positive.
func (c *Channel) ReceiveIndex(n uint64) (uint64, error) {
	if n == 0 {
		return 0, fmt.Errorf("cannot sample an index from an empty range")
	}
	r := c.ReceiveRandomInt(new(big.Int), new(big.Int).SetUint64(n-1))
	return r.Uint64(), nil
}

// ReceiveRandomFieldElement squeezes an element of f
func (c *Channel) ReceiveRandomFieldElement(f *core.Field) *core.FieldElement {
	max := new(big.Int).Sub(f.Modulus(), bigOne)
	return f.NewElement(c.ReceiveRandomInt(new(big.Int), max))
}

// State returns a copy of the current transcript state
func (c *Channel) State() []byte {
	return append([]byte(nil), c.state...)
}

// Transcript returns a copy of the operations recorded so far
func (c *Channel) Transcript() []string {
	return append([]string(nil), c.log...)
}

// String returns the transcript as a single line
func (c *Channel) String() string {
	return strings.Join(c.log, " ")
}

var bigOne = big.NewInt(1)

// digest hashes data with the named function, falling back to sha3 for
// names it does not know.
func digest(hashFunc string, data []byte) []byte {
	switch hashFunc {
	case HashSHA256:
		h := sha256.Sum256(data)
		return h[:]
	default:
		h := sha3.Sum256(data)
		return h[:]
	}
}
