package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/whisker/internal/cache"
)

// previewCacheEntries bounds the rendered previews kept between frames.
const previewCacheEntries = 32

// upperHalf draws the top pixel in the foreground and the bottom one in the background.
const upperHalf = "▀"

type previewKey struct {
	url    string
	width  int
	height int
}

// previewCache holds rendered previews so a frame does not re-sample the
// same picture at the same size.
type previewCache = cache.LRU[previewKey, []string]

func newPreviewCache() *previewCache {
	c, err := cache.New(cache.Options[previewKey, []string]{MaxEntries: previewCacheEntries})
	if err != nil {
		// Options are constant and valid.
		panic(err)
	}
	return c
}

// cachedPreview returns the rendered preview of img at url for the given cell box.
func cachedPreview(c *previewCache, url string, img image.Image, width, height int) []string {
	key := previewKey{url: url, width: width, height: height}
	if c != nil {
		if lines, ok := c.Get(key); ok {
			return lines
		}
	}
	lines := renderPreview(img, width, height)
	if c != nil && len(lines) > 0 {
		c.Put(key, lines)
	}
	return lines
}

// renderPreview draws img into at most width x height terminal cells. Every
// cell holds two vertically stacked pixels, so the sampling grid is
// width x 2*height and roughly square on a typical terminal font.
func renderPreview(img image.Image, width, height int) []string {
	if img == nil || width <= 0 || height <= 0 {
		return nil
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}

	cols, pixelRows := fitCells(b.Dx(), b.Dy(), width, height)
	rows := (pixelRows + 1) / 2
	lines := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		var sb strings.Builder
		for col := 0; col < cols; col++ {
			top := sample(img, b, col, 2*row, cols, pixelRows)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(top)))
			if 2*row+1 < pixelRows {
				bottom := sample(img, b, col, 2*row+1, cols, pixelRows)
				style = style.Background(lipgloss.Color(hexColor(bottom)))
			}
			sb.WriteString(style.Render(upperHalf))
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// fitCells scales a srcW x srcH picture into a grid of at most width columns
// and 2*height pixel rows, keeping the aspect ratio.
func fitCells(srcW, srcH, width, height int) (cols, pixelRows int) {
	maxRows := 2 * height
	cols = width
	pixelRows = max(1, (cols*srcH+srcW/2)/srcW)
	if pixelRows > maxRows {
		pixelRows = maxRows
		cols = max(1, (pixelRows*srcW+srcH/2)/srcH)
	}
	return min(cols, width), pixelRows
}

// sample picks the source pixel nearest to the centre of grid cell (x, y).
func sample(img image.Image, b image.Rectangle, x, y, cols, rows int) color.Color {
	sx := b.Min.X + (2*x+1)*b.Dx()/(2*cols)
	sy := b.Min.Y + (2*y+1)*b.Dy()/(2*rows)
	return img.At(sx, sy)
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
