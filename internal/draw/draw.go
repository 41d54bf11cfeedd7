package draw

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/luckydraw/internal/ledger"
)

// Ledger is the subset of the store the draw needs.
type Ledger interface {
	PickRandomUnusedPrize(ctx context.Context) (ledger.Prize, error)
	Prize(ctx context.Context, prizeID int64) (ledger.Prize, error)
	RecordWin(ctx context.Context, userID, prizeID int64) (ledger.WinOutcome, error)
	MarkPrizeUsed(ctx context.Context, prizeID int64) error
}

// Policy controls side effects of recording a win.
type Policy struct {
	// RetireOnWin marks a prize used the first time it is won.
	RetireOnWin bool
}

// Result describes one recorded (or already recorded) win.
type Result struct {
	UserID  int64             `json:"user_id"`
	Prize   ledger.Prize      `json:"prize"`
	Outcome ledger.WinOutcome `json:"outcome"`
	Retired bool              `json:"retired"`
}

// Service runs draws against a Ledger.
type Service struct {
	mu     sync.Mutex
	store  Ledger
	policy Policy
	logger *slog.Logger
}

// New creates a Service. A nil logger falls back to slog.Default.
func New(store Ledger, policy Policy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, policy: policy, logger: logger}
}

// Pick returns a uniformly random unused prize without recording anything.
func (s *Service) Pick(ctx context.Context) (ledger.Prize, error) {
	return s.store.PickRandomUnusedPrize(ctx)
}

// Record stores a win of prizeID by userID.
func (s *Service) Record(ctx context.Context, userID, prizeID int64) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prize, err := s.store.Prize(ctx, prizeID)
	if err != nil {
		return Result{}, err
	}
	return s.record(ctx, userID, prize)
}

// Draw picks a random unused prize and records it as won by userID.
// Returns ledger.ErrNoPrizesAvailable when the pool is exhausted.
func (s *Service) Draw(ctx context.Context, userID int64) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prize, err := s.store.PickRandomUnusedPrize(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.record(ctx, userID, prize)
}

// record must be called with s.mu held.
func (s *Service) record(ctx context.Context, userID int64, prize ledger.Prize) (Result, error) {
	outcome, err := s.store.RecordWin(ctx, userID, prize.ID)
	if err != nil {
		return Result{}, err
	}

	res := Result{UserID: userID, Prize: prize, Outcome: outcome}
	if outcome == ledger.Inserted && s.policy.RetireOnWin && !prize.Used {
		if err := s.store.MarkPrizeUsed(ctx, prize.ID); err != nil {
			return Result{}, fmt.Errorf("retire prize %d: %w", prize.ID, err)
		}
		res.Retired = true
		res.Prize.Used = true
	}

	s.logger.Debug("win recorded",
		"user_id", userID,
		"prize_id", prize.ID,
		"image", prize.Image,
		"outcome", outcome.String(),
		"retired", res.Retired,
	)
	return res, nil
}
