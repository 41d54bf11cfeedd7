package picture

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Collage is a grid of equally sized tiles placed row-major.
// An empty Collage (nothing could be loaded) has a nil Image.
type Collage struct {
	Image      *image.NRGBA
	Cols       int
	Rows       int
	TileWidth  int
	TileHeight int
	Placed     []string
	Skipped    []string
}

// Empty reports whether there is no canvas to render.
func (c *Collage) Empty() bool {
	return c == nil || c.Image == nil
}

// Layout returns the grid for n tiles: floor(sqrt(n)) columns (at least one)
// and as many rows as needed. n <= 0 yields 0, 0.
func Layout(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = 1
	for (cols+1)*(cols+1) <= n {
		cols++
	}
	rows = (n + cols - 1) / cols
	return cols, rows
}

// Composer builds collages from image files.
type Composer struct {
	logger *slog.Logger
}

// NewComposer returns a Composer. A nil logger falls back to slog.Default.
func NewComposer(logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{logger: logger}
}

// Compose loads paths in order and lays them out on a black canvas. Every
// tile is resized to the size of the first image that loaded. Paths that
// cannot be read are skipped with a warning; if none load, the returned
// Collage is Empty. The error is non-nil only when ctx is done.
func (c *Composer) Compose(ctx context.Context, paths []string) (*Collage, error) {
	out := &Collage{Placed: []string{}, Skipped: []string{}}

	var tiles []image.Image
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := Load(path)
		if err != nil {
			c.logger.Warn("skipping collage tile", "path", path, "error", err)
			out.Skipped = append(out.Skipped, path)
			continue
		}
		tiles = append(tiles, img)
		out.Placed = append(out.Placed, path)
	}

	if len(tiles) == 0 {
		c.logger.Info("no images could be loaded for the collage", "requested", len(paths))
		return out, nil
	}

	first := tiles[0].Bounds()
	w, h := first.Dx(), first.Dy()
	cols, rows := Layout(len(tiles))

	canvas := imaging.New(cols*w, rows*h, color.NRGBA{0, 0, 0, 255})
	for i, tile := range tiles {
		if b := tile.Bounds(); b.Dx() != w || b.Dy() != h {
			tile = imaging.Resize(tile, w, h, imaging.Linear)
		}
		r, col := i/cols, i%cols
		cell := image.Rect(col*w, r*h, (col+1)*w, (r+1)*h)
		draw.Draw(canvas, cell, tile, tile.Bounds().Min, draw.Src)
	}

	out.Image = canvas
	out.Cols, out.Rows = cols, rows
	out.TileWidth, out.TileHeight = w, h
	return out, nil
}

// SaveCollage writes the collage canvas to path.
// Returns ErrEmptyCollage when there is nothing to write.
func SaveCollage(c *Collage, path string) error {
	if c.Empty() {
		return ErrEmptyCollage
	}
	return Save(c.Image, path)
}
