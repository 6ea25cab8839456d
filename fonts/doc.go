// Package fonts provides the font index consumed by the compilation world:
// a book of discovered faces plus lazy per-face loaders.
//
// Discovery walks configured directories (and, unless disabled, the per-OS
// system font directories) and asks an injected FaceParser to describe each
// candidate file; face bytes are only read when the compiler first requests
// a face. Loaders form a closed set chosen at index-build time: file-backed
// or in-memory.
package fonts
