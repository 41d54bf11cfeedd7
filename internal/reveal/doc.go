// Package reveal joins the ledger to the image pipeline.
//
// Resolve decides, per source image, whether a user sees the real file or
// its obscured counterpart. Pipeline exposes the independent steps a driver
// runs: Initialize, LoadPrizes, ObscureAll and RenderCollageFor.
package reveal
