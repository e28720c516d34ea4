package storage

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Original describes the staged source file of one upload attempt.
type Original struct {
	Path     string // storage-relative, e.g. /uploads/<id>-original.jpg
	Width    int
	Height   int
	Format   string
	ByteSize int64
}

// Stage durably writes the raw upload to {id}-original.{ext} before any
// derived processing. The extension comes from the client filename, falling
// back to the declared content type. The size ceiling is enforced on actual
// bytes; on any failure the partial file is removed before the error
// propagates.
func (l *Local) Stage(r io.Reader, id, mimeType, filename string, limit int64) (*Original, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filepath.Base(filename)), "."))
	if ext == "" {
		ext = ExtFor(mimeType)
	}
	name := fmt.Sprintf("%s-original.%s", id, ext)
	dst := l.diskPathFor(name)

	// Ids are allocated fresh per attempt; an existing file means a bug, not a race.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("stage original: %w", err)
	}

	lr := &io.LimitedReader{R: r, N: limit + 1}
	written, err := io.Copy(out, lr)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("write original: %w", err)
	}
	if written > limit {
		_ = os.Remove(dst)
		return nil, ErrTooLarge
	}

	o := &Original{Path: relPath(name), Format: ext, ByteSize: written}
	if strings.HasPrefix(mimeType, "image/") {
		if w, h, err := probeImage(dst); err == nil {
			o.Width, o.Height = w, h
		}
	}
	return o, nil
}

// probeImage reads dimensions back from the written file.
func probeImage(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
