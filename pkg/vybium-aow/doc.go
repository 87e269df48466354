// Package vybiumaow provides asymmetric one-way work over a prime field.
//
// The work function is the iterated quadratic map f(x) = x² + α (mod p).
// Computing f^(n)(x) takes n sequential squarings; a verifier with the
// claimed triple (x, y, n) replays the map to check it. The same map links
// event records into a chain whose order is tamper-evident.
//
// # Quick Start
//
// Creating an engine from the default configuration:
//
//	engine, err := vybiumaow.NewEngine(vybiumaow.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	x, _ := engine.Element("123")
//	y := engine.Iterate(x, 1000)
//	fmt.Println(engine.Verify(x, y, 1000)) // true
//
// Ordering events:
//
//	chain, err := engine.NewChain(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	chain.AddEvent([]byte("deposit"), 1000)
//	chain.AddEvent([]byte("withdraw"), 1000)
//	fmt.Println(chain.VerifyChain()) // true
//
// # Proofs
//
// Prove attaches a succinct-proof record to a temporal claim. The only
// backend built in is "simulated": it commits to the trace but its check
// accepts any well-formed record, so it offers no soundness. Use Verify,
// which recomputes the map, when the answer matters.
//
// # Architecture
//
// - pkg/vybium-aow/: Public API (this package)
// - internal/vybium-aow/: Private implementation (not importable)
//
// # Security
//
// Recommended fields are the largest primes below 2^256, 2^384 and 2^512
// for security levels 128, 192 and 256. Nothing here is constant time.
package vybiumaow
