// Package pipeline wires the stages of a run together: building (or reusing)
// the reference index, fanning the intersection engine out over references,
// and scoring every query.
//
// Stages only talk through plain values (queries, a Matrix, classifications),
// so each one can be driven on its own from tests.
package pipeline
