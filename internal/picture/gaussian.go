package picture

import (
	"image"
	"math"
)

// gaussianKernel returns a normalized 1-D kernel of the given odd size.
// Sigma is derived from the size with the usual rule for sigma <= 0:
// 0.3*((size-1)*0.5 - 1) + 0.8, which is 2.6 for a 15-tap kernel.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	half := (size - 1) / 2

	k := make([]float64, size)
	var sum float64
	for i := range k {
		x := float64(i - half)
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// reflect101 maps an out-of-range index back into [0, n) mirroring around
// the edge pixel without repeating it (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// gaussianBlur applies a separable size×size Gaussian blur to every channel.
// src must have its bounds at the origin.
func gaussianBlur(src *image.NRGBA, size int) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	kernel := gaussianKernel(size)
	half := (size - 1) / 2

	// Horizontal pass into a float buffer, vertical pass into dst.
	tmp := make([]float64, w*h*4)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			var acc [4]float64
			for k, weight := range kernel {
				sx := reflect101(x+k-half, w) * 4
				acc[0] += weight * float64(row[sx])
				acc[1] += weight * float64(row[sx+1])
				acc[2] += weight * float64(row[sx+2])
				acc[3] += weight * float64(row[sx+3])
			}
			copy(tmp[(y*w+x)*4:], acc[:])
		}
	}

	for y := 0; y < h; y++ {
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			var acc [4]float64
			for k, weight := range kernel {
				sy := reflect101(y+k-half, h)
				off := (sy*w + x) * 4
				acc[0] += weight * tmp[off]
				acc[1] += weight * tmp[off+1]
				acc[2] += weight * tmp[off+2]
				acc[3] += weight * tmp[off+3]
			}
			for c := 0; c < 4; c++ {
				out[x*4+c] = clampUint8(acc[c])
			}
		}
	}
	return dst
}

// resizeNearest scales src to w×h by nearest-neighbor sampling. Destination
// pixel x reads source pixel floor(x*srcW/w), clamped to the last column,
// so every block starts on the source pixel at its top-left corner.
// src must have its bounds at the origin.
func resizeNearest(src *image.NRGBA, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	if sw == 0 || sh == 0 || w == 0 || h == 0 {
		return dst
	}

	fx := float64(sw) / float64(w)
	fy := float64(sh) / float64(h)
	cols := make([]int, w)
	for x := range cols {
		cols[x] = min(int(math.Floor(float64(x)*fx)), sw-1) * 4
	}

	for y := 0; y < h; y++ {
		sy := min(int(math.Floor(float64(y)*fy)), sh-1)
		in := src.Pix[sy*src.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x, sx := range cols {
			copy(out[x*4:x*4+4], in[sx:sx+4])
		}
	}
	return dst
}

func clampUint8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
