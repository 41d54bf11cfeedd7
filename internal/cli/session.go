package cli

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/luckydraw/internal/config"
	"github.com/roach88/luckydraw/internal/draw"
	"github.com/roach88/luckydraw/internal/ledger"
	"github.com/roach88/luckydraw/internal/logging"
	"github.com/roach88/luckydraw/internal/picture"
	"github.com/roach88/luckydraw/internal/reveal"
	"github.com/roach88/luckydraw/internal/standings"
)

// session carries what one command invocation needs: resolved config,
// logger, output formatter and the open ledger.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	out    *OutputFormatter
	store  *ledger.Store
}

// loadConfig resolves configuration: file, environment, then flags.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	if opts.Driver != "" {
		cfg.Database.Driver = opts.Driver
	}
	if opts.SourceDir != "" {
		cfg.Images.SourceDir = opts.SourceDir
	}
	if opts.HiddenDir != "" {
		cfg.Images.HiddenDir = opts.HiddenDir
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openSession loads configuration, builds the logger and opens the ledger.
// Failing to open the store is fatal to the command.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeConfig, "invalid log level", err)
	}
	logger := logging.New(cmd.ErrOrStderr(), level, cfg.Log.NoColor).With(
		"run_id", uuid.Must(uuid.NewV7()).String(),
		"cmd", cmd.Name(),
	)

	logger.Debug("opening database", "path", cfg.Database.Path, "driver", cfg.Database.Driver)
	st, err := ledger.Open(cfg.Database.Path, ledger.WithDriver(cfg.Database.Driver))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		store: st,
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

func (s *session) draw(retireOnWin bool) *draw.Service {
	policy := draw.Policy{RetireOnWin: s.cfg.Draw.RetireOnWin || retireOnWin}
	return draw.New(s.store, policy, s.logger)
}

func (s *session) board() *standings.Board {
	return standings.New(s.store)
}

func (s *session) pipeline() (*reveal.Pipeline, error) {
	obscurer, err := picture.NewObscurer(s.cfg.Obscure.Params(), s.cfg.Obscure.Workers, s.logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeConfig, "invalid obscure parameters", err)
	}
	dirs := reveal.Dirs{Source: s.cfg.Images.SourceDir, Hidden: s.cfg.Images.HiddenDir}
	return reveal.NewPipeline(s.store, dirs, obscurer, picture.NewComposer(s.logger), s.logger), nil
}
