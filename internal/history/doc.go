// Package history defines the operation spans fed to the linearizability
// checker.
//
// A span describes one attempted or observed action against the shared
// register together with its timing window [TsReq, TsAck). Normal spans
// (Put, Get, Fail) always have TsAck > TsReq. Administrative markers
// (Stopped, Resumed) are instantaneous, with TsReq == TsAck, and only bracket
// a node's unavailability window.
//
// This package imports nothing internal. Every other package builds on it.
//
// Key constraints:
//   - Timestamps are globally unique and strictly increasing
//   - Each node submits sequentially: a node's next span starts after its
//     previous span was acknowledged
//   - Spans are immutable values; copying a span never aliases state
package history
