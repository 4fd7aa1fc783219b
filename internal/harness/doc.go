// Package harness drives the linearizability checker from recorded or
// scripted client activity.
//
// Two entry points feed the checker:
//
//   - Recorder stamps live calls with a logical clock. A client calls
//     Begin before sending a request and Put, Get or Fail once the outcome
//     is known; the recorder builds the span and feeds it.
//   - Run replays a Scenario, a YAML script of spans with explicit
//     timestamps, and reports the verdict after every step.
//
// # Scenario Format
//
//	name: two_writers
//	description: "Concurrent writes observed in either order"
//	nodes: 2
//	steps:
//	  - { node: 0, op: put, value: 1, req: 1, ack: 4 }
//	  - { node: 1, op: put, value: 2, req: 2, ack: 3 }
//	  - { node: 0, op: get, value: 1, req: 5, ack: 6 }
//	  - { node: 1, op: stopped, at: 7 }
//	expect:
//	  verdict: linearizable
//
// A get without value observed the register empty. Markers (stopped,
// resumed) take a single "at" timestamp instead of req/ack.
//
// Documents are checked against a CUE schema first (shape, enums, closed
// fields) and then by Go checks that need cross-field context.
//
// # Deterministic Testing
//
// Run uses the timestamps written in the scenario, so identical scenarios
// produce identical results. Golden snapshots of results are stored as
// canonical JSON under testdata/golden.
//
// # Persistence
//
// A Sink receives every fed span with its verdict. StoreSink writes them to
// a store.Store so a run can be replayed later.
package harness
