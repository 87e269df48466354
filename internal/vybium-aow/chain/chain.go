// Package chain links opaque event records through the quadratic map so
// that their relative order is tamper-evident.
//
// Each link hash is f^(n)(int(data‖prev) mod p) serialized big-endian, where
// prev is the previous link hash or the genesis element for the first event.
package chain

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/big"
	"sync"

	logging "github.com/ipfs/go-log/v2"

	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
	"github.com/vybium/vybium-aow/internal/vybium-aow/iteration"
	"github.com/vybium/vybium-aow/internal/vybium-aow/temporal"
)

var log = logging.Logger("chain")

// DefaultIterations is the per-event work used by Create
const DefaultIterations = 1000

// Event is one record of the chain
type Event struct {
	Data         []byte
	Timestamp    uint64
	PreviousHash []byte
	Hash         []byte
	Iterations   uint64
}

func (e Event) clone() Event {
	return Event{
		Data:         bytes.Clone(e.Data),
		Timestamp:    e.Timestamp,
		PreviousHash: bytes.Clone(e.PreviousHash),
		Hash:         bytes.Clone(e.Hash),
		Iterations:   e.Iterations,
	}
}

// EventOrdering is a snapshot of the chain with one temporal claim per event
type EventOrdering struct {
	Events         []Event
	TemporalProofs []temporal.Claim
	ChainHash      []byte
}

// EventChain is an append-only event log. Appends are serialized; readers
// never observe a half-added event.
type EventChain struct {
	qm      *iteration.QuadraticMap
	genesis *core.FieldElement

	// writeMu serializes appends so the map runs outside mu
	writeMu sync.Mutex
	mu      sync.RWMutex
	events  []Event
}

// New creates an empty chain whose genesis element is drawn from rng.
// A nil rng uses crypto/rand.
func New(field *core.Field, alpha *big.Int, rng io.Reader) (*EventChain, error) {
	genesis, err := field.RandomElement(rng)
	if err != nil {
		return nil, fmt.Errorf("failed to sample genesis: %w", err)
	}
	return &EventChain{
		qm:      iteration.NewQuadraticMap(field, alpha),
		genesis: genesis,
	}, nil
}

// Restore rebuilds a chain from stored state. The events are taken as-is;
// call VerifyChain to check them.
func Restore(field *core.Field, alpha *big.Int, genesis *core.FieldElement, events []Event) *EventChain {
	c := &EventChain{
		qm:      iteration.NewQuadraticMap(field, alpha),
		genesis: field.NewElement(genesis.Big()),
		events:  make([]Event, 0, len(events)),
	}
	for _, e := range events {
		c.events = append(c.events, e.clone())
	}
	return c
}

// Create builds a chain holding events in order, DefaultIterations each
func Create(events [][]byte, field *core.Field, alpha *big.Int, rng io.Reader) (*EventChain, error) {
	c, err := New(field, alpha, rng)
	if err != nil {
		return nil, err
	}
	for i, data := range events {
		if _, err := c.AddEvent(data, DefaultIterations); err != nil {
			return nil, fmt.Errorf("failed to add event %d: %w", i, err)
		}
	}
	return c, nil
}

// Field returns the chain's field
func (c *EventChain) Field() *core.Field {
	return c.qm.Field()
}

// Alpha returns the map constant
func (c *EventChain) Alpha() *big.Int {
	return c.qm.Alpha()
}

// Genesis returns the genesis element
func (c *EventChain) Genesis() *core.FieldElement {
	return c.genesis
}

// Len returns the number of events
func (c *EventChain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// Events returns a copy of the events
func (c *EventChain) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Event, len(c.events))
	for i, e := range c.events {
		out[i] = e.clone()
	}
	return out
}

// Head returns the hash a new event would link to
func (c *EventChain) Head() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return bytes.Clone(c.headLocked())
}

func (c *EventChain) headLocked() []byte {
	if n := len(c.events); n > 0 {
		return c.events[n-1].Hash
	}
	return c.genesis.Bytes()
}

// AddEvent links data to the chain with n iterations of work and returns the
// new link hash.
func (c *EventChain) AddEvent(data []byte, n uint64) ([]byte, error) {
	return c.AddEventContext(context.Background(), data, n)
}

// AddEventContext is AddEvent with cancellation. A cancelled call appends
// nothing.
func (c *EventChain) AddEventContext(ctx context.Context, data []byte, n uint64) ([]byte, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	prev := bytes.Clone(c.headLocked())
	position := uint64(len(c.events))
	c.mu.RUnlock()

	x := c.linkInput(data, prev)
	y, err := c.qm.IterateContext(ctx, x, n)
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", position, err)
	}

	event := Event{
		Data:         bytes.Clone(data),
		Timestamp:    position,
		PreviousHash: prev,
		Hash:         y.Bytes(),
		Iterations:   n,
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	log.Debugf("appended event %d (%d bytes, %d iterations)", position, len(data), n)
	return bytes.Clone(event.Hash), nil
}

// linkInput maps data‖prev into the field
func (c *EventChain) linkInput(data, prev []byte) *core.FieldElement {
	buf := make([]byte, 0, len(data)+len(prev))
	buf = append(buf, data...)
	buf = append(buf, prev...)
	return c.qm.Field().ElementFromBytes(buf)
}

// VerifyChain checks the stored links: the first event points at genesis,
// every later event points at its predecessor's hash and timestamps count
// up from zero. Stored hashes are trusted, so in-place edits of Data are
// only caught by VerifyChainStrict. Dropping trailing events leaves a valid
// shorter chain; callers detect that by comparing Head against a recorded
// value.
func (c *EventChain) VerifyChain() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.verifyLinksLocked()
}

func (c *EventChain) verifyLinksLocked() bool {
	prev := c.genesis.Bytes()
	for i, e := range c.events {
		if e.Timestamp != uint64(i) {
			log.Debugf("event %d has timestamp %d", i, e.Timestamp)
			return false
		}
		if !bytes.Equal(e.PreviousHash, prev) {
			log.Debugf("event %d does not link to its predecessor", i)
			return false
		}
		prev = e.Hash
	}
	return true
}

// VerifyChainStrict runs VerifyChain and also recomputes every link hash from
// the stored data. Cost is the sum of all events' iterations.
func (c *EventChain) VerifyChainStrict() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.verifyLinksLocked() {
		return false
	}
	for i, e := range c.events {
		y := c.qm.Iterate(c.linkInput(e.Data, e.PreviousHash), e.Iterations)
		if !bytes.Equal(y.Bytes(), e.Hash) {
			log.Debugf("event %d hash does not match its data", i)
			return false
		}
	}
	return true
}

// Ordering snapshots the chain with one claim per event binding its link
// input to its link hash.
func (c *EventChain) Ordering() EventOrdering {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ordering := EventOrdering{
		Events:         make([]Event, len(c.events)),
		TemporalProofs: make([]temporal.Claim, len(c.events)),
		ChainHash:      bytes.Clone(c.headLocked()),
	}
	f := c.qm.Field()
	for i, e := range c.events {
		ordering.Events[i] = e.clone()
		ordering.TemporalProofs[i] = temporal.Claim{
			Input:      c.linkInput(e.Data, e.PreviousHash),
			Output:     f.ElementFromBytes(e.Hash),
			Iterations: e.Iterations,
		}
	}
	return ordering
}
