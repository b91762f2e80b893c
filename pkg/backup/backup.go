// Package backup snapshots the pristine text of files before a migration
// writes them, as an lz4-compressed tar archive, and restores them.
package backup

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/project"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/safeconv"
)

// Extension is the file extension of backup archives.
const Extension = ".tar.lz4"

const defaultMode = 0o644

// Sentinel errors.
var (
	ErrNothingToSave = errors.New("no files to back up")
	ErrUnsafePath    = errors.New("archive entry escapes the restore root")
)

// Entry describes one archived file.
type Entry struct {
	Path string
	Mode fs.FileMode
	Size int64
}

// Name returns the archive file name for a snapshot taken at t.
func Name(t time.Time) string {
	return ".tuimigrate-" + t.UTC().Format("20060102T150405Z") + Extension
}

// Create writes the original text of files to a new archive at dst.
func Create(dst string, p *project.Context, files []string) (err error) {
	if len(files) == 0 {
		return ErrNothingToSave
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	defer func() {
		closeErr := out.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close backup: %w", closeErr)
		}
	}()

	return Write(out, p, files)
}

// Write streams the original text of files as an lz4-compressed tar.
func Write(w io.Writer, p *project.Context, files []string) error {
	zw := lz4.NewWriter(w)
	tw := tar.NewWriter(zw)

	for _, name := range files {
		f, err := p.File(name)
		if err != nil {
			return fmt.Errorf("back up %s: %w", name, err)
		}

		mode := f.Mode
		if mode == 0 {
			mode = defaultMode
		}

		hdr := &tar.Header{
			Name:     f.Path,
			Mode:     int64(mode.Perm()),
			Size:     int64(len(f.Original)),
			Typeflag: tar.TypeReg,
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write header %s: %w", f.Path, err)
		}

		if _, err := io.WriteString(tw, f.Original); err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close lz4: %w", err)
	}

	return nil
}

// List returns the entries of the archive at src.
func List(src string) ([]Entry, error) {
	var out []Entry

	err := walk(src, func(hdr *tar.Header, _ io.Reader) error {
		out = append(out, Entry{Path: hdr.Name, Mode: fs.FileMode(safeconv.MustInt64ToUint32(hdr.Mode)).Perm(), Size: hdr.Size})

		return nil
	})

	return out, err
}

// Restore writes every archived file below root and returns the restored
// paths in archive order.
func Restore(src, root string) ([]string, error) {
	var restored []string

	err := walk(src, func(hdr *tar.Header, r io.Reader) error {
		target, err := safeJoin(root, hdr.Name)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil { //nolint:mnd // directory permissions
			return fmt.Errorf("restore %s: %w", hdr.Name, err)
		}

		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read %s: %w", hdr.Name, err)
		}

		if err := os.WriteFile(target, data, fs.FileMode(safeconv.MustInt64ToUint32(hdr.Mode)).Perm()); err != nil {
			return fmt.Errorf("restore %s: %w", hdr.Name, err)
		}

		restored = append(restored, hdr.Name)

		return nil
	})

	return restored, err
}

func walk(src string, visit func(hdr *tar.Header, r io.Reader) error) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer in.Close()

	tr := tar.NewReader(lz4.NewReader(in))

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read backup %s: %w", src, err)
		}

		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		if err := visit(hdr, tr); err != nil {
			return err
		}
	}
}

// safeJoin resolves a slash-separated archive name below root.
func safeJoin(root, name string) (string, error) {
	clean := path.Clean(name)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}

	return filepath.Join(root, filepath.FromSlash(clean)), nil
}
