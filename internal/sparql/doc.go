// Package sparql holds the pure, side-effect free pieces of query synthesis:
// question classifiers, prompt templates, recovery of the query text from raw
// model output, and the read-only guardrail applied before execution.
//
// Nothing in this package performs I/O. The synthesis loop in
// internal/usecase/ask composes these functions with the remote clients.
package sparql
