package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// AddUser inserts a participant. Returns ErrDuplicateKey if id is taken;
// callers should not retry blindly. Names are stored NFC-normalized.
func (s *Store) AddUser(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, user_name) VALUES (?, ?)`,
		id, norm.NFC.String(name),
	)
	if err != nil {
		switch classifyConstraint(err) {
		case constraintPrimaryKey, constraintUnique:
			return fmt.Errorf("add user %d: %w", id, ErrDuplicateKey)
		}
		return fmt.Errorf("add user %d: %w", id, err)
	}
	return nil
}

// ListUsers returns every user_id in ascending order.
// Returns an empty slice (not nil) when there are no users.
func (s *Store) ListUsers(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM users ORDER BY user_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return ids, nil
}

// User retrieves a single user by id.
// Returns ErrNotFound if no such user exists.
func (s *Store) User(ctx context.Context, id int64) (User, error) {
	var (
		u    User
		name sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, user_name FROM users WHERE user_id = ?`, id,
	).Scan(&u.ID, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("query user %d: %w", id, err)
	}
	u.Name = name.String
	return u, nil
}
