package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/vybium/vybium-aow/internal/vybium-aow/proofs"
	"github.com/vybium/vybium-aow/internal/vybium-aow/temporal"
	vybiumaow "github.com/vybium/vybium-aow/pkg/vybium-aow"
)

// maxLineBytes bounds a single request line
const maxLineBytes = 16 << 20

// Request is one input line
type Request struct {
	Op         string   `json:"op"`
	X          string   `json:"x,omitempty"`
	Y          string   `json:"y,omitempty"`
	N          uint64   `json:"n,omitempty"`
	M          uint64   `json:"m,omitempty"`
	Events     []string `json:"events,omitempty"`
	Iterations uint64   `json:"iterations,omitempty"`
}

// Response is one output line
type Response struct {
	Op    string `json:"op"`
	Error string `json:"error,omitempty"`

	Output string   `json:"output,omitempty"`
	Trace  []string `json:"trace,omitempty"`
	Valid  *bool    `json:"valid,omitempty"`

	// Probability is a decimal string because the estimate may be +Inf
	Probability string   `json:"probability,omitempty"`
	Clamped     *float64 `json:"clamped,omitempty"`

	ChainID     string   `json:"chain_id,omitempty"`
	Hashes      []string `json:"hashes,omitempty"`
	ChainHash   string   `json:"chain_hash,omitempty"`
	StrictValid *bool    `json:"strict_valid,omitempty"`

	TraceLength uint64 `json:"trace_length,omitempty"`
	Commitment  string `json:"commitment,omitempty"`
	Queries     int    `json:"queries,omitempty"`
}

type handler struct {
	engine *vybiumaow.Engine
	store  *vybiumaow.Store
}

// serve answers requests until in is exhausted or ctx is cancelled.
// Malformed or failing requests get an error response; serve keeps going.
func (h *handler) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		var resp Response
		if err := json.Unmarshal(line, &req); err != nil {
			resp = Response{Error: fmt.Sprintf("invalid request: %v", err)}
		} else {
			resp = h.handle(ctx, req)
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
	return scanner.Err()
}

func (h *handler) handle(ctx context.Context, req Request) Response {
	log.Debugf("request: op=%s n=%d", req.Op, req.N)

	resp, err := h.dispatch(ctx, req)
	if err != nil {
		log.Warnf("%s failed: %v", req.Op, err)
		return Response{Op: req.Op, Error: err.Error()}
	}
	resp.Op = req.Op
	return resp
}

func (h *handler) dispatch(ctx context.Context, req Request) (Response, error) {
	switch req.Op {
	case "iterate":
		return h.iterate(ctx, req)
	case "trace":
		return h.trace(req)
	case "verify":
		return h.verify(req)
	case "probability":
		return h.probability(req), nil
	case "chain":
		return h.chain(ctx, req)
	case "prove":
		return h.prove(req)
	default:
		return Response{}, fmt.Errorf("unknown op %q", req.Op)
	}
}

func (h *handler) iterate(ctx context.Context, req Request) (Response, error) {
	x, err := h.engine.Element(req.X)
	if err != nil {
		return Response{}, err
	}
	y, err := h.engine.IterateContext(ctx, x, req.N)
	if err != nil {
		return Response{}, err
	}
	return Response{Output: y.String()}, nil
}

// maxTraceSteps keeps trace responses printable
const maxTraceSteps = 1 << 16

func (h *handler) trace(req Request) (Response, error) {
	if req.N > maxTraceSteps {
		return Response{}, fmt.Errorf("trace of %d steps exceeds limit %d", req.N, maxTraceSteps)
	}
	x, err := h.engine.Element(req.X)
	if err != nil {
		return Response{}, err
	}
	trace := h.engine.Trace(x, req.N)
	values := make([]string, trace.Len())
	for i, v := range trace {
		values[i] = v.String()
	}
	return Response{Output: trace.Last().String(), Trace: values}, nil
}

func (h *handler) verify(req Request) (Response, error) {
	x, err := h.engine.Element(req.X)
	if err != nil {
		return Response{}, err
	}
	y, err := h.engine.Element(req.Y)
	if err != nil {
		return Response{}, err
	}
	valid := h.engine.Verify(x, y, req.N)
	return Response{Valid: &valid}, nil
}

func (h *handler) probability(req Request) Response {
	p := h.engine.DepthUniquenessProbability(req.N, req.M)
	clamped := temporal.ClampProbability(p)
	return Response{
		Probability: strconv.FormatFloat(p, 'g', -1, 64),
		Clamped:     &clamped,
	}
}

func (h *handler) chain(ctx context.Context, req Request) (Response, error) {
	iterations := req.Iterations
	if iterations == 0 {
		iterations = h.engine.ChainIterations()
	}

	c, err := h.engine.NewChain(nil)
	if err != nil {
		return Response{}, err
	}
	hashes := make([]string, len(req.Events))
	for i, data := range req.Events {
		link, err := c.AddEventContext(ctx, []byte(data), iterations)
		if err != nil {
			return Response{}, fmt.Errorf("event %d: %w", i, err)
		}
		hashes[i] = hex.EncodeToString(link)
	}

	valid := c.VerifyChain()
	strict := c.VerifyChainStrict()
	resp := Response{
		Hashes:      hashes,
		ChainHash:   hex.EncodeToString(c.Head()),
		Valid:       &valid,
		StrictValid: &strict,
	}

	if h.store != nil {
		id, err := h.store.SaveChain(ctx, c)
		if err != nil {
			return Response{}, err
		}
		resp.ChainID = id
	}
	return resp, nil
}

func (h *handler) prove(req Request) (Response, error) {
	if req.N > proofs.MaxTraceSteps {
		return Response{}, fmt.Errorf("proof of %d steps exceeds limit %d", req.N, proofs.MaxTraceSteps)
	}
	x, err := h.engine.Element(req.X)
	if err != nil {
		return Response{}, err
	}
	claim, err := h.engine.Prove(x, req.N)
	if err != nil {
		return Response{}, err
	}
	checked, err := h.engine.CheckProof(claim)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Output:      claim.Output.String(),
		Valid:       &checked,
		TraceLength: claim.Proof.TraceLength,
		Commitment:  hex.EncodeToString(claim.Proof.TraceCommitment),
		Queries:     claim.Proof.Queries,
	}, nil
}
