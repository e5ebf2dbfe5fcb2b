// Package nodes provides the leaf nodes that authentication graphs are built
// from: candidate gathering, selection, finalization, device ids, prompts and
// OpenID exchanges.
//
// # Suspension
//
// Nodes that call the backend or a prompter start a goroutine for the
// blocking call and complete from it. Nodes that only inspect state complete
// synchronously. Either way the done callback fires exactly once.
//
// # Diagnostics
//
// Expected failures are recorded with State.AddDiagnostic before a node
// completes with graph.Error. Broken invariants, such as finalizing a
// candidate with neither a user id nor a continuance token, panic.
package nodes
