// Package config loads luckydraw settings from a YAML file and the
// environment, and validates them against an embedded CUE schema.
//
// Precedence, lowest first: defaults, YAML file, LUCKYDRAW_* environment
// variables, then command-line flags applied by the caller.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/luckydraw/internal/ledger"
	"github.com/roach88/luckydraw/internal/picture"
)

//go:embed schema.cue
var schemaCUE string

// DefaultPath is read when no config file is named; it may be absent.
const DefaultPath = "luckydraw.yaml"

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "LUCKYDRAW_"

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all settings.
type Config struct {
	Database    Database    `yaml:"database" json:"database" envPrefix:"DB_"`
	Images      Images      `yaml:"images" json:"images" envPrefix:"IMAGES_"`
	Obscure     Obscure     `yaml:"obscure" json:"obscure" envPrefix:"OBSCURE_"`
	Draw        Draw        `yaml:"draw" json:"draw" envPrefix:"DRAW_"`
	Leaderboard Leaderboard `yaml:"leaderboard" json:"leaderboard" envPrefix:"LEADERBOARD_"`
	Log         Log         `yaml:"log" json:"log" envPrefix:"LOG_"`
}

// Database selects the store file and driver.
type Database struct {
	Path   string `yaml:"path" json:"path" env:"PATH"`
	Driver string `yaml:"driver" json:"driver" env:"DRIVER"`
}

// Images names the prize image directories.
type Images struct {
	SourceDir string `yaml:"source_dir" json:"source_dir" env:"SOURCE_DIR"`
	HiddenDir string `yaml:"hidden_dir" json:"hidden_dir" env:"HIDDEN_DIR"`
}

// Obscure sets the obscuring strength and batch parallelism.
type Obscure struct {
	KernelSize int `yaml:"kernel_size" json:"kernel_size" env:"KERNEL_SIZE"`
	MosaicSize int `yaml:"mosaic_size" json:"mosaic_size" env:"MOSAIC_SIZE"`
	Workers    int `yaml:"workers" json:"workers" env:"WORKERS"`
}

// Params converts to picture parameters.
func (o Obscure) Params() picture.Params {
	return picture.Params{KernelSize: o.KernelSize, MosaicSize: o.MosaicSize}
}

// Draw holds the win policy.
type Draw struct {
	RetireOnWin bool `yaml:"retire_on_win" json:"retire_on_win" env:"RETIRE_ON_WIN"`
}

// Leaderboard holds the default leaderboard size.
type Leaderboard struct {
	Limit int `yaml:"limit" json:"limit" env:"LIMIT"`
}

// Log holds logging settings.
type Log struct {
	Level   string `yaml:"level" json:"level" env:"LEVEL"`
	NoColor bool   `yaml:"no_color" json:"no_color" env:"NO_COLOR"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: Database{Path: "prizes.db", Driver: ledger.DriverCGO},
		Images:   Images{SourceDir: "img", HiddenDir: "hidden_img"},
		Obscure: Obscure{
			KernelSize: picture.DefaultKernelSize,
			MosaicSize: picture.DefaultMosaicSize,
			Workers:    1,
		},
		Leaderboard: Leaderboard{Limit: ledger.DefaultLeaderboardLimit},
		Log:         Log{Level: "info"},
	}
}

// Load builds a configuration from defaults, the YAML file at path and the
// process environment. An empty path reads DefaultPath if it exists; a
// named path must exist. The result is not validated.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment (nil means the process
// environment).
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// decodeYAML overlays data onto cfg, rejecting unknown keys.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks cfg against the embedded schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := c.Obscure.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Images.validateLayout(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// validateLayout rejects a hidden directory that resolves to, or lies inside,
// the source directory: obscuring would list its own output.
func (i Images) validateLayout() error {
	src, err := filepath.Abs(i.SourceDir)
	if err != nil {
		return fmt.Errorf("images.source_dir: %w", err)
	}
	hidden, err := filepath.Abs(i.HiddenDir)
	if err != nil {
		return fmt.Errorf("images.hidden_dir: %w", err)
	}
	rel, err := filepath.Rel(src, hidden)
	if err != nil {
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return fmt.Errorf("images.hidden_dir %q must not be inside images.source_dir %q", i.HiddenDir, i.SourceDir)
	}
	return nil
}
