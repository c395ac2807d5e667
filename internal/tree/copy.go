// Package tree copies directory trees from any fs.FS (a real directory via
// os.DirFS, or a mounted archive) onto the local filesystem.
package tree

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Stats summarises a copy.
type Stats struct {
	Dirs    int
	Files   int
	Bytes   int64
	Links   int // symlinks recreated as links
	Skipped int // other non-regular entries and links leaving the source
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Dirs += o.Dirs
	s.Files += o.Files
	s.Bytes += o.Bytes
	s.Links += o.Links
	s.Skipped += o.Skipped
}

// CopyDir copies the full content of the real directory srcDir into dst.
// Symlinks whose target stays inside srcDir are recreated as relative links,
// all others are skipped.
func CopyDir(srcDir, dst string) (Stats, error) {
	abs, err := filepath.Abs(srcDir)
	if err != nil {
		return Stats{}, fmt.Errorf("resolve %s: %w", srcDir, err)
	}
	return copyTree(os.DirFS(abs), ".", dst, abs)
}

// Copy copies the subtree rooted at root inside src into dst. The layout below
// root is preserved, missing directories are created and existing files are
// overwritten. Symlinks are never followed and are skipped.
func Copy(src fs.FS, root string, dst string) (Stats, error) {
	return copyTree(src, root, dst, "")
}

// copyTree is Copy; srcDir is the real directory behind src, or empty when
// src has no links to recreate.
func copyTree(src fs.FS, root, dst, srcDir string) (Stats, error) {
	var stats Stats

	root = path.Clean(root)
	dst = filepath.Clean(dst)

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return stats, fmt.Errorf("create destination %s: %w", dst, err)
	}

	err := fs.WalkDir(src, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		target, err := destination(dst, root, p)
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			if p != root {
				stats.Dirs++
			}
		case d.Type().IsRegular():
			n, err := copyFile(src, p, target)
			if err != nil {
				return err
			}
			stats.Files++
			stats.Bytes += n
		case d.Type()&fs.ModeSymlink != 0 && srcDir != "":
			ok, err := copyLink(srcDir, p, target)
			if err != nil {
				return err
			}
			if ok {
				stats.Links++
			} else {
				stats.Skipped++
			}
		default:
			stats.Skipped++
		}
		return nil
	})
	return stats, err
}

// destination maps the fs path p below root onto dst and refuses anything that
// would land outside dst.
func destination(dst, root, p string) (string, error) {
	rel := p
	if root != "." {
		if p == root {
			rel = "."
		} else {
			rel = strings.TrimPrefix(p, root+"/")
		}
	}

	target := filepath.Join(dst, filepath.FromSlash(rel))
	if target != dst && !strings.HasPrefix(target, dst+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %q escapes destination %s", p, dst)
	}
	return target, nil
}

// copyLink recreates the link at fs path p below srcDir as target. It reports
// false for links that point outside srcDir.
func copyLink(srcDir, p, target string) (bool, error) {
	link := filepath.Join(srcDir, filepath.FromSlash(p))
	dest, err := os.Readlink(link)
	if err != nil {
		return false, fmt.Errorf("read link %s: %w", link, err)
	}

	resolved := dest
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(link), resolved)
	}
	resolved = filepath.Clean(resolved)
	if resolved == link || !strings.HasPrefix(resolved, srcDir+string(os.PathSeparator)) {
		return false, nil
	}
	rel, err := filepath.Rel(filepath.Dir(link), resolved)
	if err != nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", target, err)
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("replace %s: %w", target, err)
	}
	if err := os.Symlink(rel, target); err != nil {
		return false, fmt.Errorf("link %s: %w", target, err)
	}
	return true, nil
}

func copyFile(src fs.FS, name, target string) (int64, error) {
	in, err := src.Open(name)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", name, err)
	}
	defer in.Close()

	perm := fs.FileMode(0o644)
	if info, err := in.Stat(); err == nil && info.Mode().Perm() != 0 {
		perm = info.Mode().Perm() | 0o200
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", target, err)
	}

	// earlier copies may have left a read-only file behind
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("replace %s: %w", target, err)
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", target, err)
	}

	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", name, err)
	}
	return n, nil
}
