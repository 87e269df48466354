package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-aow/internal/vybium-aow/store"
	vybiumaow "github.com/vybium/vybium-aow/pkg/vybium-aow"
)

func newTestHandler(t *testing.T, st *store.Store) *handler {
	t.Helper()
	cfg := vybiumaow.DefaultConfig()
	cfg.Field.Modulus = "1000003"
	cfg.Field.Alpha = "5"
	cfg.Temporal.MaxIterations = "100"
	cfg.Chain.Iterations = 10

	engine, err := vybiumaow.NewEngine(cfg)
	require.NoError(t, err)
	return &handler{engine: engine, store: st}
}

func run(t *testing.T, h *handler, input string) []Response {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, h.serve(context.Background(), strings.NewReader(input), &out))

	var responses []Response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestServeIterateAndVerify(t *testing.T) {
	h := newTestHandler(t, nil)
	responses := run(t, h, `{"op":"iterate","x":"123","n":10}
{"op":"verify","x":"123","y":"982599","n":10}
{"op":"verify","x":"123","y":"982599","n":200}
{"op":"trace","x":"123","n":2}
`)

	require.Len(t, responses, 4)
	assert.Equal(t, "982599", responses[0].Output)
	assert.Empty(t, responses[0].Error)

	require.NotNil(t, responses[1].Valid)
	assert.True(t, *responses[1].Valid)
	require.NotNil(t, responses[2].Valid)
	assert.False(t, *responses[2].Valid)

	assert.Equal(t, []string{"123", "15134", "37274"}, responses[3].Trace)
	assert.Equal(t, "37274", responses[3].Output)
}

func TestServeProbability(t *testing.T) {
	h := newTestHandler(t, nil)
	responses := run(t, h, `{"op":"probability","n":10,"m":10}
{"op":"probability","n":0,"m":5000}
`)

	require.Len(t, responses, 2)
	assert.Equal(t, "1", responses[0].Probability)
	assert.Equal(t, "+Inf", responses[1].Probability)
	require.NotNil(t, responses[1].Clamped)
	assert.Equal(t, 1.0, *responses[1].Clamped)
}

func TestServeChain(t *testing.T) {
	st, err := store.New("file:cmddb1?mode=memory&cache=shared")
	require.NoError(t, err)
	defer st.Close()

	h := newTestHandler(t, st)
	responses := run(t, h, `{"op":"chain","events":["a","b","c"]}`+"\n")

	require.Len(t, responses, 1)
	resp := responses[0]
	require.Empty(t, resp.Error)
	assert.Len(t, resp.Hashes, 3)
	assert.Equal(t, resp.Hashes[2], resp.ChainHash)
	require.NotNil(t, resp.Valid)
	assert.True(t, *resp.Valid)
	require.NotNil(t, resp.StrictValid)
	assert.True(t, *resp.StrictValid)
	require.NotEmpty(t, resp.ChainID)

	loaded, err := st.LoadChain(context.Background(), resp.ChainID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())
	assert.True(t, loaded.VerifyChainStrict())
}

func TestServeProve(t *testing.T) {
	h := newTestHandler(t, nil)
	responses := run(t, h, `{"op":"prove","x":"123","n":10}`+"\n")

	require.Len(t, responses, 1)
	resp := responses[0]
	require.Empty(t, resp.Error)
	assert.Equal(t, "982599", resp.Output)
	assert.Equal(t, uint64(11), resp.TraceLength)
	assert.NotEmpty(t, resp.Commitment)
	assert.Equal(t, 64, resp.Queries)
	require.NotNil(t, resp.Valid)
	assert.True(t, *resp.Valid)
}

func TestServeErrors(t *testing.T) {
	h := newTestHandler(t, nil)
	responses := run(t, h, `not json
{"op":"explode"}
{"op":"iterate","x":"abc","n":1}
{"op":"prove","x":"1","n":500}

{"op":"iterate","x":"1","n":0}
`)

	require.Len(t, responses, 5)
	for _, resp := range responses[:4] {
		assert.NotEmpty(t, resp.Error)
	}
	assert.Contains(t, responses[1].Error, "unknown op")
	assert.Empty(t, responses[4].Error)
	assert.Equal(t, "1", responses[4].Output)
}

func TestServeCancelled(t *testing.T) {
	h := newTestHandler(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := h.serve(ctx, strings.NewReader(`{"op":"iterate","x":"1","n":1}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}

func TestServeProveTooLong(t *testing.T) {
	cfg := vybiumaow.DefaultConfig()
	engine, err := vybiumaow.NewEngine(cfg)
	require.NoError(t, err)
	h := &handler{engine: engine}

	responses := run(t, h, `{"op":"prove","x":"1","n":1099511627776}
{"op":"iterate","x":"1","n":1}
`)

	require.Len(t, responses, 2)
	assert.Contains(t, responses[0].Error, "exceeds limit")
	assert.Empty(t, responses[1].Error)
}
