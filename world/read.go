package world

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/inkwell/typeset/errors"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// readFile reads a file from disk, mapping failures onto the cacheable
// error taxonomy: directories fail as is-directory, everything else as the
// underlying I/O error.
func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ioError(path, err)
	}
	if info.IsDir() {
		return nil, errors.IsDirectory(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError(path, err)
	}
	return data, nil
}

func ioError(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return errors.NotFound(errors.PhaseLoad, path)
	case os.IsPermission(err):
		return errors.AccessDenied(errors.PhaseLoad, path)
	default:
		return errors.Load(path, err)
	}
}

// decodeUTF8 validates text content, stripping one optional leading
// byte-order mark first.
func decodeUTF8(path string, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", errors.DecodeFailed(path, data)
	}
	return string(data), nil
}

// resolveWithin joins a rootless virtual path onto root, refusing paths
// that would escape it.
func resolveWithin(root, vpath string) (string, error) {
	joined := filepath.Join(root, filepath.FromSlash(vpath))
	rel, err := filepath.Rel(root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.AccessDenied(errors.PhaseResolve, vpath)
	}
	return joined, nil
}
