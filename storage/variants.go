package storage

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"

	"github.com/olekhov/mediapress/models"
)

// ErrUnreadableImage marks a source that could not be decoded. Callers treat
// it as a client-side failure rather than a server fault.
var ErrUnreadableImage = errors.New("unreadable image data")

// VariantSpec defines one derived rendition of an uploaded image.
type VariantSpec struct {
	Name   string
	Width  int
	Height int  // 0 preserves the source aspect ratio
	Fill   bool // crop to exactly Width x Height
}

// VariantSet is the fixed, ordered list of renditions generated for every
// image upload. Each entry is produced from the staged original, never
// chained from a smaller rendition.
var VariantSet = []VariantSpec{
	{Name: "thumb", Width: 320},
	{Name: "card", Width: 768},
	{Name: "cover", Width: 1600},
	{Name: "og", Width: 1200, Height: 630, Fill: true},
}

const variantQuality = 82

// GenerateVariants produces the complete variant set from the staged
// original. All-or-nothing: if any rendition fails, every variant file
// written for this attempt is removed and an error is returned, so a partial
// set is never observable. The staged original is left for the caller to
// purge along with the rest of the attempt.
func (l *Local) GenerateVariants(original *Original, id string) (map[string]models.Variant, error) {
	src, err := imaging.Open(l.DiskPath(original.Path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	out := make(map[string]models.Variant, len(VariantSet))
	written := make([]string, 0, len(VariantSet))
	fail := func(err error) (map[string]models.Variant, error) {
		for _, p := range written {
			_ = os.Remove(p)
		}
		return nil, err
	}

	for _, spec := range VariantSet {
		name := fmt.Sprintf("%s-%s.jpg", id, spec.Name)
		dst := l.diskPathFor(name)

		img := render(src, spec)
		if err := imaging.Save(img, dst, imaging.JPEGQuality(variantQuality)); err != nil {
			_ = os.Remove(dst)
			return fail(fmt.Errorf("encode variant %s: %w", spec.Name, err))
		}
		written = append(written, dst)

		v, err := readBackVariant(dst, name)
		if err != nil {
			return fail(fmt.Errorf("verify variant %s: %w", spec.Name, err))
		}
		out[spec.Name] = v
	}
	return out, nil
}

func render(src image.Image, spec VariantSpec) *image.NRGBA {
	if spec.Fill {
		return imaging.Fill(src, spec.Width, spec.Height, imaging.Center, imaging.Lanczos)
	}
	w := spec.Width
	if sw := src.Bounds().Dx(); sw < w {
		// never upscale beyond the source
		w = sw
	}
	return imaging.Resize(src, w, 0, imaging.Lanczos)
}

// readBackVariant captures the actual dimensions and byte size from the
// written file, keeping descriptors accurate even if the encoder adjusted
// anything.
func readBackVariant(dst, name string) (models.Variant, error) {
	info, err := os.Stat(dst)
	if err != nil {
		return models.Variant{}, err
	}
	w, h, err := probeImage(dst)
	if err != nil {
		return models.Variant{}, err
	}
	return models.Variant{
		Path:     relPath(name),
		Width:    w,
		Height:   h,
		Format:   "jpg",
		ByteSize: info.Size(),
	}, nil
}
