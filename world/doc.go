// Package world implements the compilation world: the stateful provider a
// typesetting compiler pulls sources, raw bytes, fonts and the current date
// from.
//
// The world's centerpiece is a content-fingerprinted file cache that is
// reused across repeated compiles of a changing document. Each compile is
// one cache generation: entries validated in the current generation are
// served without I/O, entries from older generations are re-read once and
// their transform (UTF-8 decode and parse) is skipped when a 128-bit xxh3
// fingerprint shows the bytes unchanged. An in-memory overlay, keyed by
// rootless path, shadows both disk and package content for matching paths;
// package-qualified identities otherwise resolve through an injected package
// resolver.
//
// A world belongs to exactly one session and is never shared.
package world
