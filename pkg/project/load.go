package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/safeconv"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/textutil"
)

const defaultMode fs.FileMode = 0o644

// ErrNoRoot is returned by Save on a project without a root directory.
var ErrNoRoot = errors.New("project has no root directory")

// DefaultExtensions are the file kinds a migration reads.
var DefaultExtensions = []string{".ts", ".html"}

// LoadOptions controls which files Load reads.
type LoadOptions struct {
	// Extensions limits loaded files by suffix. Empty means DefaultExtensions.
	Extensions []string
	// MaxFileSize skips larger files. Zero disables the limit.
	MaxFileSize uint64
	// IncludeVendor also loads vendored directories such as node_modules.
	IncludeVendor bool
}

// Load walks root and returns a project holding every matching text file.
func Load(ctx context.Context, root string, lopts LoadOptions, opts ...Option) (*Context, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("load project: %s is not a directory", root)
	}

	exts := lopts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	c := New(root, opts...)

	walkErr := filepath.WalkDir(root, func(full string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, full)
		if relErr != nil {
			return relErr
		}

		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if enry.IsDotFile(rel) || (!lopts.IncludeVendor && enry.IsVendor(rel+"/")) {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() || !slices.ContainsFunc(exts, func(ext string) bool { return filepath.Ext(rel) == ext }) {
			return nil
		}

		return c.loadFile(full, rel, d, lopts)
	})
	if walkErr != nil {
		return nil, fmt.Errorf("load project: %w", walkErr)
	}

	c.logger.Debug("project loaded", "root", root, "files", len(c.files))

	return c, nil
}

func (c *Context) loadFile(full, rel string, d fs.DirEntry, lopts LoadOptions) error {
	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}

	if lopts.MaxFileSize > 0 && safeconv.MustInt64ToUint64(info.Size()) > lopts.MaxFileSize {
		c.logger.Debug("skipping large file", "path", rel, "size", info.Size())

		return nil
	}

	data, err := os.ReadFile(full) //nolint:gosec // path comes from walking the project root
	if err != nil {
		return fmt.Errorf("read %s: %w", rel, err)
	}

	if textutil.IsBinary(data) {
		c.logger.Debug("skipping binary file", "path", rel)

		return nil
	}

	content := string(data)
	c.files[rel] = &File{Path: rel, Content: content, Original: content, Mode: info.Mode().Perm()}

	return nil
}

// Save writes every changed file back under the project root, keeping its
// permissions, and marks it as saved. It returns the written paths.
func (c *Context) Save() ([]string, error) {
	if c.disposed {
		return nil, ErrDisposed
	}

	if c.root == "" {
		return nil, ErrNoRoot
	}

	var written []string

	for _, p := range c.Changed() {
		f := c.files[p]
		full := filepath.Join(c.root, filepath.FromSlash(p))

		mode := f.Mode
		if mode == 0 {
			mode = defaultMode
		}

		err := os.MkdirAll(filepath.Dir(full), 0o755) //nolint:mnd // conventional directory permissions
		if err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}

		err = os.WriteFile(full, []byte(f.Content), mode)
		if err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}

		f.Original = f.Content
		written = append(written, p)
	}

	return written, nil
}
