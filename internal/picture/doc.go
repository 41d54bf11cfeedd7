// Package picture hides prize images and assembles them into collages.
//
// Obscuring is a fixed two-stage transform: a Gaussian blur with a square
// kernel, then a nearest-neighbor mosaic (downsample to a small square and
// upsample back to the original size). It is deterministic, so obscuring
// the same file twice writes identical bytes.
//
// Per-file failures never abort a batch: unreadable inputs are logged,
// counted and skipped.
package picture
