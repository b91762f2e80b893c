// Package project holds the in-memory source tree a migration run works on.
//
// A [Context] is created at the start of a run and disposed at its end. It is
// passed explicitly to every core operation; there is no process-wide active
// project.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/edit"
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("file not found in project")
	ErrDisposed = errors.New("project context disposed")
	ErrExists   = errors.New("file already exists in project")
)

// File is a source file tracked by a [Context].
type File struct {
	// Path is slash separated and relative to the project root.
	Path string
	// Content is the current text.
	Content string
	// Original is the text as loaded or created.
	Original string
	// Mode is the permission set used when saving.
	Mode fs.FileMode
}

// Changed reports whether the file differs from its original text.
func (f *File) Changed() bool {
	return f.Content != f.Original
}

// Context is the explicit project handle of one migration run.
type Context struct {
	root      string
	files     map[string]*File
	recorders map[string]*edit.Recorder
	strict    bool
	logger    *slog.Logger
	disposed  bool
}

// Option configures a [Context].
type Option func(*Context)

// WithLogger sets the logger used for load and commit diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStrict makes Commit reject recorders whose removals overlap.
func WithStrict(strict bool) Option {
	return func(c *Context) {
		c.strict = strict
	}
}

// New creates an empty project rooted at root. Root may be empty for purely
// in-memory projects; Save then fails.
func New(root string, opts ...Option) *Context {
	c := &Context{
		root:      root,
		files:     make(map[string]*File),
		recorders: make(map[string]*edit.Recorder),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Root returns the directory the project was loaded from.
func (c *Context) Root() string {
	return c.root
}

// Logger returns the project logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Normalize converts p into the slash separated, root relative form used as key.
func Normalize(p string) string {
	p = filepath.ToSlash(p)
	p = path.Clean(p)

	return strings.TrimPrefix(p, "./")
}

// CreateSourceFile adds a file with content to the project.
func (c *Context) CreateSourceFile(p, content string) error {
	if c.disposed {
		return ErrDisposed
	}

	key := Normalize(p)
	if _, ok := c.files[key]; ok {
		return fmt.Errorf("%w: %s", ErrExists, key)
	}

	c.files[key] = &File{Path: key, Content: content, Original: content, Mode: defaultMode}

	return nil
}

// ReadContent returns the current text of p.
func (c *Context) ReadContent(p string) (string, error) {
	f, err := c.File(p)
	if err != nil {
		return "", err
	}

	return f.Content, nil
}

// File returns the tracked file for p.
func (c *Context) File(p string) (*File, error) {
	if c.disposed {
		return nil, ErrDisposed
	}

	f, ok := c.files[Normalize(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}

	return f, nil
}

// Exists reports whether p is tracked.
func (c *Context) Exists(p string) bool {
	if c.disposed {
		return false
	}

	_, ok := c.files[Normalize(p)]

	return ok
}

// Paths returns all tracked paths in lexical order.
func (c *Context) Paths() []string {
	if c.disposed {
		return nil
	}

	return slices.Sorted(maps.Keys(c.files))
}

// PathsWithSuffix returns tracked paths ending in one of suffixes, in lexical order.
func (c *Context) PathsWithSuffix(suffixes ...string) []string {
	var out []string

	for _, p := range c.Paths() {
		for _, s := range suffixes {
			if strings.HasSuffix(p, s) {
				out = append(out, p)

				break
			}
		}
	}

	return out
}

// Recorder returns the recorder for p, creating it on first use. All edits
// for one file during a run go through the same recorder.
func (c *Context) Recorder(p string) (*edit.Recorder, error) {
	if c.disposed {
		return nil, ErrDisposed
	}

	key := Normalize(p)
	if _, ok := c.files[key]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	rec, ok := c.recorders[key]
	if !ok {
		rec = edit.NewRecorder(key)
		c.recorders[key] = rec
	}

	return rec, nil
}

// Pending returns the paths with an open recorder, in lexical order.
func (c *Context) Pending() []string {
	return slices.Sorted(maps.Keys(c.recorders))
}

// Commit applies the recorder of p to the file and closes it. A file without
// recorder is left untouched. On error the file keeps its previous text.
func (c *Context) Commit(p string) (int, error) {
	if c.disposed {
		return 0, ErrDisposed
	}

	key := Normalize(p)

	rec, ok := c.recorders[key]
	if !ok {
		return 0, nil
	}

	delete(c.recorders, key)

	f := c.files[key]
	ops := rec.Operations()

	if c.strict {
		if err := edit.CheckOverlaps(ops); err != nil {
			return 0, fmt.Errorf("commit %s: %w", key, err)
		}
	}

	out, err := edit.Apply(f.Content, ops)
	if err != nil {
		return 0, fmt.Errorf("commit %s: %w", key, err)
	}

	f.Content = out

	c.logger.Debug("committed edits", "path", key, "edits", len(ops))

	return len(ops), nil
}

// CommitAll commits every open recorder. A failure on one file does not undo
// commits already done for others; all failures are joined.
func (c *Context) CommitAll() (map[string]int, error) {
	counts := make(map[string]int)

	var errs []error

	for _, p := range c.Pending() {
		n, err := c.Commit(p)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		if n > 0 {
			counts[p] = n
		}
	}

	return counts, errors.Join(errs...)
}

// Changed returns the paths whose content differs from the original, in lexical order.
func (c *Context) Changed() []string {
	var out []string

	for _, p := range c.Paths() {
		if c.files[p].Changed() {
			out = append(out, p)
		}
	}

	return out
}

// Dispose releases the project. Every later call fails with [ErrDisposed].
func (c *Context) Dispose() {
	c.files = nil
	c.recorders = nil
	c.disposed = true
}
