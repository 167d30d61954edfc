package build

import (
	"io"
	"os"
	"path/filepath"

	"github.com/nickng/ivsr/ssa"
	"github.com/pkg/errors"
)

// Builder builds SSA IR and metainfo.
type Builder interface {
	Build() (*ssa.Info, error)
}

// FileSrc is a set of filenames.
type FileSrc struct {
	Files []string
}

// FromFiles returns a non-nil Builder from a slice of filenames.
func FromFiles(files []string) Configurer {
	return newConfig(&FileSrc{Files: files})
}

// Materialise returns the files unchanged, the sources are already on disk.
func (s *FileSrc) Materialise() (dir string, files []string, cleanup func(), err error) {
	return "", s.Files, func() {}, nil
}

// CachedSrc is source file from a reader.
type CachedSrc struct {
	cached []byte
	err    error
}

// FromReader returns a non-nil Builder for a reader.
// This is typically used for testing or building a temporary file. A read
// error is reported by Build.
func FromReader(r io.Reader) Configurer {
	b, err := io.ReadAll(r)
	return newConfig(&CachedSrc{cached: b, err: errors.Wrap(err, "failed to read from reader")})
}

// Materialise writes the cached source to tmp.go in a fresh temporary
// directory. cleanup removes the directory.
func (s *CachedSrc) Materialise() (dir string, files []string, cleanup func(), err error) {
	if s.err != nil {
		return "", nil, nil, s.err
	}
	dir, err = os.MkdirTemp("", "ssabuild")
	if err != nil {
		return "", nil, nil, errors.Wrap(err, "failed to create temporary directory")
	}
	cleanup = func() { os.RemoveAll(dir) }
	file := filepath.Join(dir, "tmp.go")
	if err := os.WriteFile(file, s.cached, 0o644); err != nil {
		cleanup()
		return "", nil, nil, errors.Wrapf(err, "failed to write to file: %s", file)
	}
	return dir, []string{file}, cleanup, nil
}
