package reveal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tiles := Resolve(
		[]string{"A.png", "B.png", "C.png"},
		[]string{"C.png", "A.png", "gone.png"},
		"img", "hidden_img",
	)

	assert.Equal(t, []Tile{
		{Name: "A.png", Path: filepath.Join("img", "A.png"), Revealed: true},
		{Name: "B.png", Path: filepath.Join("hidden_img", "B.png"), Revealed: false},
		{Name: "C.png", Path: filepath.Join("img", "C.png"), Revealed: true},
	}, tiles)
}

func TestResolve_NothingWon(t *testing.T) {
	tiles := Resolve([]string{"A.png"}, nil, "img", "hidden_img")
	assert.Equal(t, []string{filepath.Join("hidden_img", "A.png")}, Paths(tiles))
}

func TestResolve_EmptyListing(t *testing.T) {
	assert.Empty(t, Resolve(nil, []string{"A.png"}, "img", "hidden_img"))
}

func TestResolve_DuplicateWinsRevealOnce(t *testing.T) {
	tiles := Resolve([]string{"A.png"}, []string{"A.png", "A.png"}, "img", "hidden_img")
	assert.Len(t, tiles, 1)
	assert.True(t, tiles[0].Revealed)
}
