package packages

import (
	"archive/tar"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/inkwell/typeset"
	"github.com/inkwell/typeset/errors"
)

// manifestName is the package manifest every extracted package must carry
// at its root.
const manifestName = "typeset.toml"

// maxFileSize caps one extracted file, guarding against decompression
// bombs.
const maxFileSize = 256 << 20

// Progress observes a package download. Downloads at this layer are
// synchronous and blocking; the default sink reports nothing.
type Progress interface {
	Start(spec typeset.PackageSpec)
	Finish(spec typeset.PackageSpec)
}

// SilentProgress is the no-op Progress sink.
type SilentProgress struct{}

func (SilentProgress) Start(typeset.PackageSpec)  {}
func (SilentProgress) Finish(typeset.PackageSpec) {}

// Config configures a Storage.
type Config struct {
	// CacheDir is where extracted packages live, laid out as
	// <cache>/<namespace>/<name>/<version>.
	CacheDir string

	// RegistryURL is the base URL packages are fetched from. Empty
	// disables network fetches: only cached packages resolve.
	RegistryURL string

	// Client is the HTTP client for fetches. Defaults to
	// http.DefaultClient.
	Client *http.Client

	// Progress observes downloads. Defaults to SilentProgress.
	Progress Progress

	// Logger reports download and extraction activity. Defaults to a
	// no-op logger.
	Logger *zap.Logger
}

// Storage resolves package specs to local directories, downloading and
// extracting archives on cache miss. It implements
// typeset.PackageResolver.
type Storage struct {
	cacheDir string
	registry string
	client   *http.Client
	progress Progress
	logger   *zap.Logger
}

func NewStorage(cfg Config) *Storage {
	s := &Storage{
		cacheDir: cfg.CacheDir,
		registry: cfg.RegistryURL,
		client:   cfg.Client,
		progress: cfg.Progress,
		logger:   cfg.Logger,
	}
	if s.client == nil {
		s.client = http.DefaultClient
	}
	if s.progress == nil {
		s.progress = SilentProgress{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Resolve implements typeset.PackageResolver. A cached package resolves
// without touching the network; a miss performs one blocking fetch with no
// retry.
func (s *Storage) Resolve(spec typeset.PackageSpec) (string, error) {
	dir := filepath.Join(s.cacheDir, spec.Namespace, spec.Name, spec.Version)
	if _, err := os.Stat(filepath.Join(dir, manifestName)); err == nil {
		return dir, nil
	}

	if s.registry == "" {
		return "", errors.PackageFailed(spec.String(),
			errors.InvalidInput(errors.PhaseResolve, "package not cached and no registry configured"))
	}

	if err := s.download(spec, dir); err != nil {
		return "", errors.PackageFailed(spec.String(), err)
	}
	return dir, nil
}

func (s *Storage) download(spec typeset.PackageSpec, dir string) error {
	url := fmt.Sprintf("%s/%s/%s-%s.tar.gz",
		strings.TrimSuffix(s.registry, "/"), spec.Namespace, spec.Name, spec.Version)

	s.progress.Start(spec)
	defer s.progress.Finish(spec)
	s.logger.Debug("downloading package",
		zap.String("package", spec.String()),
		zap.String("url", url))

	resp, err := s.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	// Extract next to the final directory, then verify and rename into
	// place so a failed extraction never leaves a half-cached package.
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(filepath.Dir(dir), ".staging-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	if err := extract(resp.Body, staging); err != nil {
		return err
	}
	if err := verifyManifest(staging, spec); err != nil {
		return err
	}
	return os.Rename(staging, dir)
}

// extract unpacks a gzipped tarball into dir, refusing entries that would
// escape it.
func extract(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}

		target, err := safeJoin(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if hdr.Size > maxFileSize {
				return fmt.Errorf("archive entry %s exceeds size limit", hdr.Name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			_, err = io.Copy(f, io.LimitReader(tr, maxFileSize))
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
		default:
			// Symlinks and special files are not part of the package
			// format.
		}
	}
}

func safeJoin(dir, name string) (string, error) {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("archive entry %s has an absolute path", name)
	}
	target := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %s escapes the package directory", name)
	}
	return target, nil
}

type manifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

// verifyManifest checks that the extracted package declares the name and
// version that were requested.
func verifyManifest(dir string, spec typeset.PackageSpec) error {
	var m manifest
	if _, err := toml.DecodeFile(filepath.Join(dir, manifestName), &m); err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	if m.Package.Name != spec.Name {
		return fmt.Errorf("manifest names package %q, expected %q", m.Package.Name, spec.Name)
	}
	if m.Package.Version != spec.Version {
		return fmt.Errorf("manifest declares version %q, expected %q", m.Package.Version, spec.Version)
	}
	return nil
}
