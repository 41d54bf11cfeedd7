package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddPrizes registers one unused prize per image in a single transaction and
// returns the assigned prize ids in input order.
//
// There is no duplicate detection: adding the same filename twice yields two
// prizes with distinct ids.
func (s *Store) AddPrizes(ctx context.Context, images []string) ([]int64, error) {
	ids := make([]int64, 0, len(images))
	if len(images) == 0 {
		return ids, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("add prizes: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO prizes (image) VALUES (?)`)
	if err != nil {
		return nil, fmt.Errorf("add prizes: prepare: %w", err)
	}
	defer stmt.Close()

	for _, image := range images {
		res, err := stmt.ExecContext(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("add prize %q: %w", image, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("add prize %q: last insert id: %w", image, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("add prizes: commit: %w", err)
	}
	return ids, nil
}

// MarkPrizeUsed retires a prize from random selection.
// Unknown or already-used prizes are left untouched without error.
func (s *Store) MarkPrizeUsed(ctx context.Context, prizeID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE prizes SET used = 1 WHERE prize_id = ? AND used = 0`, prizeID)
	if err != nil {
		return fmt.Errorf("mark prize %d used: %w", prizeID, err)
	}
	return nil
}

// PrizeImage returns the image filename of a prize.
// Returns ErrNotFound if the prize does not exist.
func (s *Store) PrizeImage(ctx context.Context, prizeID int64) (string, error) {
	p, err := s.Prize(ctx, prizeID)
	if err != nil {
		return "", err
	}
	return p.Image, nil
}

// Prize retrieves a single prize by id.
// Returns ErrNotFound if the prize does not exist.
func (s *Store) Prize(ctx context.Context, prizeID int64) (Prize, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT prize_id, image, used FROM prizes WHERE prize_id = ?`, prizeID)
	p, err := scanPrize(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Prize{}, fmt.Errorf("prize %d: %w", prizeID, ErrNotFound)
	}
	if err != nil {
		return Prize{}, fmt.Errorf("query prize %d: %w", prizeID, err)
	}
	return p, nil
}

// ListPrizes returns every prize ordered by id.
func (s *Store) ListPrizes(ctx context.Context) ([]Prize, error) {
	return s.queryPrizes(ctx, `SELECT prize_id, image, used FROM prizes ORDER BY prize_id ASC`)
}

// PickRandomUnusedPrize returns one prize chosen uniformly at random among
// those not marked used. Returns ErrNoPrizesAvailable when there are none.
func (s *Store) PickRandomUnusedPrize(ctx context.Context) (Prize, error) {
	unused, err := s.queryPrizes(ctx,
		`SELECT prize_id, image, used FROM prizes WHERE used = 0 ORDER BY prize_id ASC`)
	if err != nil {
		return Prize{}, err
	}
	if len(unused) == 0 {
		return Prize{}, ErrNoPrizesAvailable
	}

	s.randMu.Lock()
	i := s.rand.IntN(len(unused))
	s.randMu.Unlock()

	return unused[i], nil
}

func (s *Store) queryPrizes(ctx context.Context, query string, args ...any) ([]Prize, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prizes: %w", err)
	}
	defer rows.Close()

	prizes := []Prize{}
	for rows.Next() {
		p, err := scanPrize(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prize: %w", err)
		}
		prizes = append(prizes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prizes: %w", err)
	}
	return prizes, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrize(r rowScanner) (Prize, error) {
	var (
		p     Prize
		image sql.NullString
		used  sql.NullInt64
	)
	if err := r.Scan(&p.ID, &image, &used); err != nil {
		return Prize{}, err
	}
	p.Image = image.String
	p.Used = used.Int64 != 0
	return p, nil
}
