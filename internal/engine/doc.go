// Package engine computes query/reference k-mer intersection sizes. It never
// imports app, writers, config, or pipeline; keep it domain-only.
//
// The engine only reads a ReferenceIndex, so one index may be shared by any
// number of goroutines without locking.
package engine
