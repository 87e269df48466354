package vybiumaow

import (
	"github.com/vybium/vybium-aow/internal/vybium-aow/chain"
	"github.com/vybium/vybium-aow/internal/vybium-aow/config"
	"github.com/vybium/vybium-aow/internal/vybium-aow/core"
	"github.com/vybium/vybium-aow/internal/vybium-aow/iteration"
	"github.com/vybium/vybium-aow/internal/vybium-aow/proofs"
	"github.com/vybium/vybium-aow/internal/vybium-aow/store"
	"github.com/vybium/vybium-aow/internal/vybium-aow/temporal"
)

// FieldElement represents an element of a prime field
type FieldElement = core.FieldElement

// Field represents a prime field
type Field = core.Field

// IterationTrace holds [x, f(x), ..., f^(n)(x)]
type IterationTrace = iteration.IterationTrace

// TemporalParameters bound temporal verification
type TemporalParameters = temporal.Parameters

// Claim asserts y = f^(n)(x), optionally with a proof
type Claim = temporal.Claim

// Event is one record of an event chain
type Event = chain.Event

// EventChain is a tamper-evident event log
type EventChain = chain.EventChain

// EventOrdering is a chain snapshot with per-event claims
type EventOrdering = chain.EventOrdering

// Proof is an opaque proof record
type Proof = proofs.Proof

// PublicInputs are the values a proof is bound to
type PublicInputs = proofs.PublicInputs

// ProofParameters configure proof generation
type ProofParameters = proofs.Parameters

// ProofSystem produces and checks proofs
type ProofSystem = proofs.System

// Config holds engine settings
type Config = config.Config

// Store persists event chains
type Store = store.Store

// ChainInfo describes a stored chain
type ChainInfo = store.ChainInfo
