package storage

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageImage(t *testing.T, l *Local, id string, w, h int) *Original {
	t.Helper()
	data := jpegBytes(t, w, h)
	o, err := l.Stage(bytes.NewReader(data), id, "image/jpeg", "src.jpg", int64(len(data)))
	require.NoError(t, err)
	return o
}

func TestGenerateVariantsCompleteSet(t *testing.T) {
	l := newTestStore(t)
	o := stageImage(t, l, "img1", 2000, 1500)

	variants, err := l.GenerateVariants(o, "img1")
	require.NoError(t, err)
	require.Len(t, variants, len(VariantSet))

	for _, spec := range VariantSet {
		v, ok := variants[spec.Name]
		require.True(t, ok, "missing variant %s", spec.Name)
		assert.Equal(t, "/uploads/img1-"+spec.Name+".jpg", v.Path)
		assert.Equal(t, "jpg", v.Format)

		info, err := os.Stat(l.DiskPath(v.Path))
		require.NoError(t, err)
		assert.Equal(t, info.Size(), v.ByteSize, "byte size read back from disk")
	}

	assert.Equal(t, 320, variants["thumb"].Width)
	assert.Equal(t, 768, variants["card"].Width)
	assert.Equal(t, 1600, variants["cover"].Width)
	assert.Equal(t, 1200, variants["og"].Width)
	assert.Equal(t, 630, variants["og"].Height)
}

func TestGenerateVariantsNeverUpscales(t *testing.T) {
	l := newTestStore(t)
	o := stageImage(t, l, "img2", 500, 400)

	variants, err := l.GenerateVariants(o, "img2")
	require.NoError(t, err)

	// cover target is 1600 but the source is only 500 wide
	assert.Equal(t, 500, variants["cover"].Width)
	assert.Equal(t, 320, variants["thumb"].Width)
	// crop-to-fill variants keep their exact target dimensions
	assert.Equal(t, 1200, variants["og"].Width)
	assert.Equal(t, 630, variants["og"].Height)
}

func TestGenerateVariantsAllOrNothing(t *testing.T) {
	l := newTestStore(t)

	// stage something that claims to be a JPEG but is not decodable
	junk := strings.Repeat("not an image", 10)
	o, err := l.Stage(strings.NewReader(junk), "img3", "image/jpeg", "fake.jpg", 1<<20)
	require.NoError(t, err)

	_, err = l.GenerateVariants(o, "img3")
	assert.ErrorIs(t, err, ErrUnreadableImage)

	// no variant file may survive the failed attempt; only the staged
	// original remains for the caller to purge
	assert.Equal(t, []string{"img3-original.jpg"}, dirEntries(t, l.Root()))
}

func TestPurgeRemovesAllAndToleratesMissing(t *testing.T) {
	l := newTestStore(t)
	o := stageImage(t, l, "img4", 800, 600)

	variants, err := l.GenerateVariants(o, "img4")
	require.NoError(t, err)

	paths := []string{o.Path}
	for _, v := range variants {
		paths = append(paths, v.Path)
	}
	l.Purge(paths...)
	assert.Empty(t, dirEntries(t, l.Root()))

	// purging the same paths again must be a no-op, not a failure
	l.Purge(paths...)
	l.Purge("", "/uploads/never-existed.jpg")
}
