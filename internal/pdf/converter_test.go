package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/langlang056/pdf-for-college/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_RenderPage(t *testing.T) {
	path := writeTestPDF(t, "Intro", "Vectors", "Matrices")

	r, err := NewOpener().Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 3, r.PageCount())

	dir := filepath.Join(t.TempDir(), "images")
	img, err := r.RenderPage(context.Background(), 2, 72, dir)
	require.NoError(t, err)

	assert.Equal(t, 2, img.PageNumber)
	assert.Equal(t, 72, img.DPI)
	assert.Equal(t, filepath.Join(dir, "page_0002.png"), img.ImagePath)
	// US letter at 72 dpi
	assert.InDelta(t, 612, img.Width, 1)
	assert.InDelta(t, 792, img.Height, 1)

	info, err := os.Stat(img.ImagePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestConverter_PageText(t *testing.T) {
	path := writeTestPDF(t, "Eigenvalues")

	c, err := NewConverter(path)
	require.NoError(t, err)
	defer c.Close()

	text, err := c.PageText(1)
	require.NoError(t, err)
	assert.Contains(t, text, "Eigenvalues")
}

func TestConverter_OutOfRange(t *testing.T) {
	path := writeTestPDF(t, "Only page")

	c, err := NewConverter(path)
	require.NoError(t, err)
	defer c.Close()

	for _, page := range []int{0, 2} {
		_, err := c.RenderPage(context.Background(), page, 72, t.TempDir())
		assert.True(t, errors.Is(err, domain.ErrExtraction), "page %d: %v", page, err)
	}
}

func TestConverter_Close(t *testing.T) {
	path := writeTestPDF(t, "x")

	c, err := NewConverter(path)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.Equal(t, 0, c.PageCount())
	_, err = c.RenderPage(context.Background(), 1, 72, t.TempDir())
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestConverter_CancelledContext(t *testing.T) {
	path := writeTestPDF(t, "x")

	c, err := NewConverter(path)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.RenderPage(ctx, 1, 72, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
