// Package standings ranks users by their recorded wins.
package standings

import (
	"context"

	"github.com/roach88/luckydraw/internal/ledger"
)

// Source is the subset of the ledger that standings reads.
type Source interface {
	Leaderboard(ctx context.Context, limit int) ([]ledger.LeaderboardEntry, error)
	UserScore(ctx context.Context, userID int64) (int, error)
	WinnersCount(ctx context.Context, prizeID int64) (int, error)
}

// Standing is a leaderboard row with its rank. Users with equal win counts
// share a rank and the next rank skips accordingly (1, 2, 2, 4).
type Standing struct {
	Rank int `json:"rank"`
	ledger.LeaderboardEntry
}

// Board reads rankings and scores.
type Board struct {
	src Source
}

// New creates a Board over src.
func New(src Source) *Board {
	return &Board{src: src}
}

// Top returns at most limit ranked standings, best first.
func (b *Board) Top(ctx context.Context, limit int) ([]Standing, error) {
	entries, err := b.src.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	return Rank(entries), nil
}

// Score returns the total wins of one user.
func (b *Board) Score(ctx context.Context, userID int64) (int, error) {
	return b.src.UserScore(ctx, userID)
}

// PrizeWinners returns how many users have won prizeID.
func (b *Board) PrizeWinners(ctx context.Context, prizeID int64) (int, error) {
	return b.src.WinnersCount(ctx, prizeID)
}

// Rank assigns competition ranks to entries already sorted by wins descending.
func Rank(entries []ledger.LeaderboardEntry) []Standing {
	out := make([]Standing, len(entries))
	for i, e := range entries {
		rank := i + 1
		if i > 0 && e.Wins == entries[i-1].Wins {
			rank = out[i-1].Rank
		}
		out[i] = Standing{Rank: rank, LeaderboardEntry: e}
	}
	return out
}
