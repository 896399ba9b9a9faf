// Package internal contains helper utilities that are intentionally private
// to the module, currently secure session-key generation.
//
// # Sub-packages
//
//   - metrics — lock-free counters behind the public Metrics surface
//
// # What this package must NOT do
//
//   - Export types that appear in the public API.
//   - Be imported by any package outside this module.
package internal
