// Package packages resolves package-qualified file identities to local
// directories.
//
// Extracted packages are cached under <cache>/<namespace>/<name>/<version>;
// a cache hit resolves without network. On a miss the storage performs one
// synchronous, blocking fetch of <registry>/<namespace>/<name>-<version>.tar.gz,
// extracts it to a staging directory, verifies the typeset.toml manifest
// against the requested spec, and renames the result into place. There is
// no retry, no backoff, and no cancellation at this layer.
package packages
