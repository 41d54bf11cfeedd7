package picture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// Default obscuring strength.
const (
	DefaultKernelSize = 15
	DefaultMosaicSize = 30
)

// Params sets the obscuring strength.
type Params struct {
	// KernelSize is the Gaussian kernel width and height. Must be odd.
	KernelSize int `json:"kernel_size" yaml:"kernel_size"`
	// MosaicSize is the side of the intermediate nearest-neighbor square.
	MosaicSize int `json:"mosaic_size" yaml:"mosaic_size"`
}

// DefaultParams returns the 15×15 blur / 30×30 mosaic strength.
func DefaultParams() Params {
	return Params{KernelSize: DefaultKernelSize, MosaicSize: DefaultMosaicSize}
}

// Validate reports whether p can be applied.
func (p Params) Validate() error {
	if p.KernelSize < 1 || p.KernelSize%2 == 0 {
		return fmt.Errorf("%w: kernel size %d must be odd and positive", ErrInvalidParams, p.KernelSize)
	}
	if p.MosaicSize < 1 {
		return fmt.Errorf("%w: mosaic size %d must be positive", ErrInvalidParams, p.MosaicSize)
	}
	return nil
}

// Obscure returns a blurred, mosaicked copy of img with the same size.
// p must be valid.
func Obscure(img image.Image, p Params) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return src
	}

	blurred := gaussianBlur(src, p.KernelSize)
	small := resizeNearest(blurred, p.MosaicSize, p.MosaicSize)
	return resizeNearest(small, w, h)
}

// Skip records a file left out of a batch.
type Skip struct {
	Name string `json:"name"`
	Err  string `json:"error"`
}

// Report summarizes an ObscureAll run.
type Report struct {
	Written []string `json:"written"`
	Skipped []Skip   `json:"skipped"`
}

// Obscurer writes hidden variants of a directory of images.
type Obscurer struct {
	params  Params
	workers int
	logger  *slog.Logger
}

// NewObscurer validates params and returns an Obscurer. workers < 1 means
// one file at a time. A nil logger falls back to slog.Default.
func NewObscurer(params Params, workers int, logger *slog.Logger) (*Obscurer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Obscurer{params: params, workers: workers, logger: logger}, nil
}

// ObscureFile writes the hidden variant of srcDir/name to hiddenDir/name.
func (o *Obscurer) ObscureFile(srcDir, hiddenDir, name string) error {
	img, err := Load(filepath.Join(srcDir, name))
	if err != nil {
		return err
	}
	return Save(Obscure(img, o.params), filepath.Join(hiddenDir, name))
}

// ObscureAll writes a hidden variant of every file in srcDir into hiddenDir,
// creating hiddenDir if needed. Files that fail are logged and reported as
// skipped; only directory errors and cancellation abort the batch.
func (o *Obscurer) ObscureAll(ctx context.Context, srcDir, hiddenDir string) (Report, error) {
	if err := os.MkdirAll(hiddenDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create hidden dir: %w", err)
	}
	names, err := ListImages(srcDir)
	if err != nil {
		return Report{}, err
	}

	var (
		mu     sync.Mutex
		report = Report{Written: []string{}, Skipped: []Skip{}}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := o.ObscureFile(srcDir, hiddenDir, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.Warn("skipping image", "name", name, "error", err)
				report.Skipped = append(report.Skipped, Skip{Name: name, Err: err.Error()})
				return nil
			}
			report.Written = append(report.Written, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	sort.Strings(report.Written)
	sort.Slice(report.Skipped, func(i, j int) bool {
		return report.Skipped[i].Name < report.Skipped[j].Name
	})
	o.logger.Info("obscured images",
		"written", len(report.Written),
		"skipped", len(report.Skipped),
		"hidden_dir", hiddenDir,
	)
	return report, nil
}
