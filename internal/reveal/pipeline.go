package reveal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/luckydraw/internal/ledger"
	"github.com/roach88/luckydraw/internal/picture"
)

// Store is the subset of the ledger the pipeline uses.
type Store interface {
	CreateSchema(ctx context.Context) error
	AddPrizes(ctx context.Context, images []string) ([]int64, error)
	ListPrizes(ctx context.Context) ([]ledger.Prize, error)
	WinnerImages(ctx context.Context, userID int64) ([]string, error)
}

// Dirs names the source images and their obscured counterparts.
type Dirs struct {
	Source string
	Hidden string
}

// Pipeline runs the prize image steps against a store.
type Pipeline struct {
	store    Store
	dirs     Dirs
	obscurer *picture.Obscurer
	composer *picture.Composer
	logger   *slog.Logger
}

// NewPipeline wires a pipeline. A nil logger falls back to slog.Default.
func NewPipeline(store Store, dirs Dirs, obscurer *picture.Obscurer, composer *picture.Composer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:    store,
		dirs:     dirs,
		obscurer: obscurer,
		composer: composer,
		logger:   logger,
	}
}

// Initialize ensures the schema and the hidden directory exist.
// Safe to run on every start.
func (p *Pipeline) Initialize(ctx context.Context) error {
	if err := p.store.CreateSchema(ctx); err != nil {
		return err
	}
	if err := os.MkdirAll(p.dirs.Hidden, 0o755); err != nil {
		return fmt.Errorf("create hidden dir: %w", err)
	}
	return nil
}

// LoadPrizes registers one prize per file in the source directory.
//
// Repeated runs register the same files again under new ids; this is kept
// as-is and only logged, since re-seeding may be intended.
func (p *Pipeline) LoadPrizes(ctx context.Context) ([]int64, error) {
	names, err := picture.ListImages(p.dirs.Source)
	if err != nil {
		return nil, err
	}

	existing, err := p.store.ListPrizes(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		p.logger.Warn("store already holds prizes; files will be registered again",
			"existing", len(existing), "files", len(names))
	}

	ids, err := p.store.AddPrizes(ctx, names)
	if err != nil {
		return nil, err
	}
	p.logger.Info("prizes loaded", "count", len(ids), "dir", p.dirs.Source)
	return ids, nil
}

// ObscureAll writes the hidden variant of every source image.
func (p *Pipeline) ObscureAll(ctx context.Context) (picture.Report, error) {
	return p.obscurer.ObscureAll(ctx, p.dirs.Source, p.dirs.Hidden)
}

// TilesFor resolves every source image for userID: won images are revealed,
// all others point into the hidden directory.
func (p *Pipeline) TilesFor(ctx context.Context, userID int64) ([]Tile, error) {
	won, err := p.store.WinnerImages(ctx, userID)
	if err != nil {
		return nil, err
	}
	listing, err := picture.ListImages(p.dirs.Source)
	if err != nil {
		return nil, err
	}
	return Resolve(listing, won, p.dirs.Source, p.dirs.Hidden), nil
}

// RenderCollageFor composes the collage userID is allowed to see.
// The result is Empty when no tile could be loaded.
func (p *Pipeline) RenderCollageFor(ctx context.Context, userID int64) (*picture.Collage, error) {
	tiles, err := p.TilesFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	revealed := 0
	for _, t := range tiles {
		if t.Revealed {
			revealed++
		}
	}
	p.logger.Debug("rendering collage",
		"user_id", userID,
		"tiles", len(tiles),
		"revealed", revealed,
	)
	return p.composer.Compose(ctx, Paths(tiles))
}
