package picture

import "errors"

var (
	// ErrUnreadableImage wraps decode and open failures for a single file.
	ErrUnreadableImage = errors.New("unreadable image")

	// ErrEmptyCollage is returned by SaveCollage when there is nothing to save.
	// Compose itself reports an empty result through Collage.Empty, not an error.
	ErrEmptyCollage = errors.New("empty collage")

	// ErrInvalidParams is returned for kernel or mosaic sizes that cannot be applied.
	ErrInvalidParams = errors.New("invalid obscure parameters")
)
