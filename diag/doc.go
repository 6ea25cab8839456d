// Package diag converts raw compiler diagnostics into position-resolved
// records suitable for a host.
//
// A Mapper is bound to the provider a compile ran against and recomputes
// 1-based line/column positions by locating byte offsets inside the exact
// source text the compiler parsed. Diagnostics produced after the compile's
// world context is gone (export-time serialization failures) go through
// Detached instead, which preserves byte ranges but never resolves
// positions.
package diag
