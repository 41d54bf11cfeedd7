package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// RecordWin stores that userID won prizeID, stamped with the current time.
//
// The (user_id, prize_id) key makes this idempotent: a second call for the
// same pair writes nothing and returns AlreadyRecorded. A pair naming an
// unknown user or prize fails with ErrNotFound.
//
// RecordWin does not mark the prize used; see MarkPrizeUsed.
func (s *Store) RecordWin(ctx context.Context, userID, prizeID int64) (WinOutcome, error) {
	winTime := s.now().Format(TimeLayout)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO winners (user_id, prize_id, win_time)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, prize_id) DO NOTHING
	`, userID, prizeID, winTime)
	if err != nil {
		if classifyConstraint(err) == constraintForeignKey {
			return 0, fmt.Errorf("record win user=%d prize=%d: %w", userID, prizeID, ErrNotFound)
		}
		return 0, fmt.Errorf("record win user=%d prize=%d: %w", userID, prizeID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("record win: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return AlreadyRecorded, nil
	}
	return Inserted, nil
}

// WinsForUser returns a user's win records in the order they were recorded.
func (s *Store) WinsForUser(ctx context.Context, userID int64) ([]Win, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, prize_id, win_time
		FROM winners
		WHERE user_id = ?
		ORDER BY win_time ASC, rowid ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query wins: %w", err)
	}
	defer rows.Close()

	wins := []Win{}
	for rows.Next() {
		var (
			w       Win
			winTime sql.NullString
		)
		if err := rows.Scan(&w.UserID, &w.PrizeID, &winTime); err != nil {
			return nil, fmt.Errorf("scan win: %w", err)
		}
		w.WinTime = winTime.String
		wins = append(wins, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wins: %w", err)
	}
	return wins, nil
}

// WinnerImages returns the image of every prize the user has won, in win order.
func (s *Store) WinnerImages(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.image
		FROM winners w
		JOIN prizes p ON w.prize_id = p.prize_id
		WHERE w.user_id = ?
		ORDER BY w.win_time ASC, w.rowid ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query winner images: %w", err)
	}
	defer rows.Close()

	images := []string{}
	for rows.Next() {
		var image sql.NullString
		if err := rows.Scan(&image); err != nil {
			return nil, fmt.Errorf("scan winner image: %w", err)
		}
		images = append(images, image.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate winner images: %w", err)
	}
	return images, nil
}

// WinnersCount returns how many users have won the prize.
func (s *Store) WinnersCount(ctx context.Context, prizeID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM winners WHERE prize_id = ?`, prizeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count winners of prize %d: %w", prizeID, err)
	}
	return n, nil
}

// UserScore returns the total number of wins recorded for the user.
func (s *Store) UserScore(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM winners WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("score of user %d: %w", userID, err)
	}
	return n, nil
}

// Leaderboard returns users ranked by win count, highest first, capped at
// limit rows (DefaultLeaderboardLimit when limit <= 0). Users without wins
// are not listed. Ties are ordered by user_id.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.user_id, u.user_name, COUNT(*) AS total
		FROM users u
		JOIN winners w ON u.user_id = w.user_id
		GROUP BY u.user_id
		ORDER BY total DESC, u.user_id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var (
			e    LeaderboardEntry
			name sql.NullString
		)
		if err := rows.Scan(&e.UserID, &name, &e.Wins); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		e.UserName = name.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}
