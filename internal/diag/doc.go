// Package diag turns kernc failures into diagnostics with stable codes and
// renders them for operators.
//
// Libraries return typed errors. Only the consumer boundary (internal/driver
// and cmd/kernc) converts them, through FromError, into a Diagnostic and, for
// fatal conditions, into process termination with Fatal.
//
// Codes are grouped by thousands:
//
//   - E1xxx host hardware preconditions
//   - E2xxx operator input (target strings, configuration)
//   - E3xxx runtime module merging
//   - E4xxx internal invariants
//   - E5xxx modules missing from the build
//   - E6xxx cache and output I/O
package diag
