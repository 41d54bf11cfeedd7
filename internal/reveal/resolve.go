package reveal

import "path/filepath"

// Tile is one resolved collage entry.
type Tile struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Revealed bool   `json:"revealed"`
}

// Resolve maps every image name in listing to a path: srcDir/name when the
// name is among won, hiddenDir/name otherwise. Listing order is preserved.
func Resolve(listing, won []string, srcDir, hiddenDir string) []Tile {
	wonSet := make(map[string]struct{}, len(won))
	for _, name := range won {
		wonSet[name] = struct{}{}
	}

	tiles := make([]Tile, len(listing))
	for i, name := range listing {
		_, revealed := wonSet[name]
		dir := hiddenDir
		if revealed {
			dir = srcDir
		}
		tiles[i] = Tile{Name: name, Path: filepath.Join(dir, name), Revealed: revealed}
	}
	return tiles
}

// Paths returns the resolved path of each tile.
func Paths(tiles []Tile) []string {
	paths := make([]string, len(tiles))
	for i, t := range tiles {
		paths[i] = t.Path
	}
	return paths
}
