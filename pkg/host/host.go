// Package host is the disk implementation of library.Host used by the CLI.
//
// Every write and delete is confined to the working directory: a path that
// resolves outside it fails with LIB006 before the file system is touched.
// Writes go to a uniquely named temp file that is renamed into place, so an
// interrupted restore never leaves a truncated library file behind.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/library"
)

// Host binds the engine to a project directory and a cache directory.
type Host struct {
	workDir  string
	cacheDir string
	logger   *log.Logger
	settings library.Settings
}

// New creates a host. Relative directories are made absolute. A nil logger
// discards output.
func New(workDir, cacheDir string, logger *log.Logger, settings library.Settings) (*Host, error) {
	wd, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	cd, err := filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache directory: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Host{workDir: wd, cacheDir: cd, logger: logger, settings: settings}, nil
}

func (h *Host) WorkingDirectory() string   { return h.workDir }
func (h *Host) CacheDirectory() string     { return h.cacheDir }
func (h *Host) Logger() *log.Logger        { return h.logger }
func (h *Host) Settings() library.Settings { return h.settings }

// resolve anchors path in the working directory.
func (h *Host) resolve(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.workDir, path)
	}
	return filepath.Clean(path)
}

func (h *Host) confine(path string) (string, error) {
	abs := h.resolve(path)
	if !liberrors.ContainsPath(h.workDir, abs) || abs == h.workDir {
		return "", liberrors.PathOutsideWorkingDirectory(path)
	}
	return abs, nil
}

// WriteFile streams open's content to path.
func (h *Host) WriteFile(ctx context.Context, path string, open func() (io.ReadCloser, error)) error {
	abs, err := h.confine(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := open()
	if err != nil {
		return err
	}
	defer src.Close()
	return writeAtomic(abs, src)
}

// DeleteFiles removes paths and prunes the directories emptied by it.
// Missing files are ignored. Every path is checked before any is removed.
func (h *Host) DeleteFiles(ctx context.Context, paths ...string) error {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := h.confine(p)
		if err != nil {
			return err
		}
		abs = append(abs, a)
	}

	var errs []error
	dirs := map[string]bool{}
	for _, p := range abs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
			continue
		}
		h.logger.Debug("deleted file", "path", p)
		dirs[filepath.Dir(p)] = true
	}
	for d := range dirs {
		h.pruneEmpty(d)
	}
	return errors.Join(errs...)
}

// pruneEmpty removes dir and its ancestors while they are empty, stopping
// at the working directory.
func (h *Host) pruneEmpty(dir string) {
	for dir != h.workDir && liberrors.ContainsPath(h.workDir, dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// ReadFile opens path, relative to the working directory unless absolute.
func (h *Host) ReadFile(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(h.resolve(path))
}

// CopyFile copies src (anywhere) to dst (inside the working directory).
func (h *Host) CopyFile(ctx context.Context, src, dst string) error {
	return h.WriteFile(ctx, dst, func() (io.ReadCloser, error) { return os.Open(h.resolve(src)) })
}

func writeAtomic(path string, src io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

var _ library.Host = (*Host)(nil)
