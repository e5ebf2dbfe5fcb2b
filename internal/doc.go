// Package internal holds helpers shared by the engine and its sub-packages
// that are not part of the public API: attempt id generation and credential
// key derivation.
//
// Sub-packages:
//   - audit: asynchronous delivery of attempt records
//   - rate: Redis fixed-window counters for credential exchanges
//   - httpapi: the HTTP surface served by cmd/authgraph
package internal
