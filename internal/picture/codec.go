package picture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// Load decodes the image at path, applying EXIF orientation.
// Any failure is wrapped with ErrUnreadableImage.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}
	return img, nil
}

// Save encodes img at path using the format implied by the extension.
// Extensions without an encoder (e.g. .webp) are written PNG-encoded under
// the same name; decoders sniff content, so Load still reads them back.
//
// The file is written to a temporary sibling and renamed into place, so a
// reader never observes a partial image.
func Save(img image.Image, path string) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		format = imaging.PNG
	}

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(95)); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("save %s: encode: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: close: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: rename: %w", path, err)
	}
	return nil
}

// ListImages returns the names of the regular files in dir, sorted by name.
// Every file is a candidate; nothing is filtered by extension.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list images in %s: %w", dir, err)
	}

	names := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
