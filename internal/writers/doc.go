// Package writers turns classifications and run metadata into serialized
// outputs.
//
// Design:
//   - Writers own all presentation knowledge (results.out text, TSV, JSON/JSONL).
//   - Scoring stays domain-only; pipeline stays orchestration-only.
//   - JSON/JSONL go through pkg/api (v1) for a stable wire format.
package writers
