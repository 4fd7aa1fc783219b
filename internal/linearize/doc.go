// Package linearize implements an online linearizability checker for a
// single shared register.
//
// The checker consumes operation spans one at a time, as they complete, and
// maintains the live set: every hypothesis (Possibility) about the true
// sequential order that is still consistent with all spans fed so far.
//
// ARCHITECTURE:
//
// Possibility:
// One candidate linear order. It owns per-node FIFO queues of spans not yet
// placed, the abstract register value (nil, a certain value, or uncertain
// after a Fail) and its lineage, the entries already committed to its order.
// A possibility only ever moves forward by cloning: siblings never share
// mutable state.
//
// Linearizer:
// Owns the deduplicated live set. FeedSpan appends the new span to every
// member, then saturates: every member that can step is expanded into its
// successors, successors are merged back by identity, and the loop repeats
// until no member can step. Members are identified by (register value,
// per-node remaining queue lengths), which is sufficient because every live
// possibility has consumed a prefix of the same fed sequence.
//
// Once the live set becomes empty the history is proven non-linearizable and
// the checker stays in that state; FeedSpan returns false from then on.
//
// ERRORS:
//
// Harness misuse (bad node index, malformed or non-monotonic spans, a Resumed
// marker with no pending Stopped marker) is reported as *ContractError and
// never as a false verdict. A contract error leaves the live set untouched.
//
// CONCURRENCY:
//
// A Linearizer is not safe for concurrent use. Within one saturation round
// the expansion of independent members may run on a bounded worker pool
// (WithParallelism); successors are merged by a single goroutine after all
// workers finish, so results do not depend on completion order.
package linearize
