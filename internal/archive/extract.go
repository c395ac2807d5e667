// Package archive unpacks plugin archives (.nbm files, which are plain zip
// files) into a working directory.
package archive

import (
	"archive/zip"
	"io"
	"io/fs"

	"github.com/klauspost/compress/flate"
	"github.com/mfulz/launchgeist/internal/launcherr"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/internal/tree"
)

// DefaultRootEntry is the directory inside a plugin archive that mirrors a userdir.
const DefaultRootEntry = "netbeans"

// Extractor copies the RootEntry subtree of a zip archive into a destination directory.
type Extractor struct {
	RootEntry string
}

// New returns an Extractor for the given root entry, or DefaultRootEntry if it is empty.
func New(rootEntry string) *Extractor {
	if rootEntry == "" {
		rootEntry = DefaultRootEntry
	}
	return &Extractor{RootEntry: rootEntry}
}

// Extract copies the root entry of archivePath into dst, overwriting existing
// files. The archive is always closed before returning.
func (e *Extractor) Extract(archivePath, dst string) (tree.Stats, error) {
	root := e.RootEntry
	if root == "" {
		root = DefaultRootEntry
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return tree.Stats{}, launcherr.ErrArchiveOpenFailed(archivePath, err)
	}
	defer r.Close()

	r.RegisterDecompressor(zip.Deflate, func(in io.Reader) io.ReadCloser {
		return flate.NewReader(in)
	})

	info, err := fs.Stat(r, root)
	if err != nil {
		return tree.Stats{}, launcherr.ErrExtractionFailed(archivePath, dst, err).
			WithContext("root", root)
	}
	if !info.IsDir() {
		return tree.Stats{}, launcherr.ErrExtractionFailed(archivePath, dst, fs.ErrInvalid).
			WithContext("root", root)
	}

	stats, err := tree.Copy(r, root, dst)
	if err != nil {
		return stats, launcherr.ErrExtractionFailed(archivePath, dst, err)
	}

	logging.Log.Debugf("[archive] extracted %s into %s (%d files, %d bytes)", archivePath, dst, stats.Files, stats.Bytes)
	return stats, nil
}
