package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// PublicPrefix is the stable URL prefix under which stored files are served.
const PublicPrefix = "/uploads"

// Local stores originals and derived variants on the local filesystem under a
// single configured root directory. All files for one record share the record
// id as filename prefix, so cleanup by id is always safe and complete.
type Local struct {
	root string
}

// NewLocal prepares a store rooted at dir, creating it when missing.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Local{root: dir}, nil
}

// Root returns the directory files are written to, for static serving.
func (l *Local) Root() string {
	return l.root
}

// DiskPath maps a storage-relative path back to the file on disk. Only the
// final path element is honored, so records can never escape the root.
func (l *Local) DiskPath(rel string) string {
	return filepath.Join(l.root, path.Base(rel))
}

func (l *Local) diskPathFor(name string) string {
	return filepath.Join(l.root, name)
}

// relPath builds the storage-relative path persisted on records.
func relPath(name string) string {
	return PublicPrefix + "/" + name
}
