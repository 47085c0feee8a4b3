// Package harness orchestrates conformance and performance trials against a
// sender/receiver file-transfer SUT (system under test).
//
// The SUT is a pair of separately compiled executables that move one file
// over a datagram channel. The harness treats them as black boxes: it spawns
// both processes for a trial, waits for joint exit, and derives everything it
// asserts from process lifetimes and the bytes that land in the receive
// artifact.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: text-small
//	description: "Plain text fixture, byte-exact delivery"
//	fixture: testdata/fixtures/sample.txt
//	sut:
//	  sender: ./sender
//	  receiver: ./receiver
//	host: localhost
//	ports: [12345, 12346]
//	repetitions: 5
//	threshold: 0.1
//	settle_delay: 2s
//	timeout: 2m
//
// Files are validated twice: against an embedded CUE schema (catches typos
// and type errors with positions) and then by validateScenario (semantic
// checks such as fixture existence and distinct ports).
//
// # Trial Kinds
//
// The harness runs four kinds of checks over the same trial primitive:
//
//   - Verify: one trial, then byte-exact comparison of fixture and artifact
//   - Handshake probe: the same scenario run sender-first and receiver-first
//     with a settle delay; both orders must deliver byte-exact
//   - Fairness: two concurrent flows on distinct ports, repeated N times;
//     every repetition's max/min throughput ratio must stay within the
//     convergence threshold
//   - Bandwidth: an unbounded, cancellable stream of single-flow samples for
//     interactive diagnosis (no assertion)
//
// # Timing Model
//
// Throughput is derived, not measured: fixture bytes divided by the wall
// clock between the first spawn and the last exit. Concurrent flows are
// started back to back with no barrier; residual start skew is accepted
// measurement noise and is the reason fairness repetitions are judged
// independently rather than averaged.
//
// The settle delay used by the handshake probe is a timing assumption, not a
// readiness signal from the SUT. Under heavy system load a slow-starting
// first endpoint can still miss the second endpoint's opening datagrams.
package harness
