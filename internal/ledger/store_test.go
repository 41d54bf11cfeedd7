package ledger

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test.db")

			s, err := Open(path, WithDriver(driver))
			require.NoError(t, err)
			defer s.Close()

			_, err = os.Stat(path)
			assert.NoError(t, err, "database file was not created")
			assert.Equal(t, driver, s.Driver())
		})
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.CreateSchema(context.Background()))
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"users", "prizes", "winners"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found after idempotent opens", table)
	}
}

func TestOpen_KeepsDataAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.AddUser(ctx, 1, "alice"))
	s1.Close()

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	users, err := s2.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, users)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "test.db"), WithDriver("postgres"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name, want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, s.verifyPragma(tt.name, tt.want))
		})
	}
}

// legacySchema is the layout written by the first version of the tool:
// winners has no key, so duplicate pairs could be stored.
const legacySchema = `
CREATE TABLE users (user_id INTEGER PRIMARY KEY, user_name TEXT);
CREATE TABLE prizes (prize_id INTEGER PRIMARY KEY, image TEXT, used INTEGER DEFAULT 0);
CREATE TABLE winners (
    user_id INTEGER,
    prize_id INTEGER,
    win_time TEXT,
    FOREIGN KEY(user_id) REFERENCES users(user_id),
    FOREIGN KEY(prize_id) REFERENCES prizes(prize_id)
);
INSERT INTO users VALUES (1, 'alice');
INSERT INTO prizes (image) VALUES ('a.png');
INSERT INTO winners VALUES (1, 1, '2024-01-01 10:00:00');
INSERT INTO winners VALUES (1, 1, '2024-01-01 10:00:05');
`

func TestMigrateToV1_DedupesLegacyWinners(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	raw, err := sql.Open(DriverCGO, path)
	require.NoError(t, err)
	_, err = raw.Exec(legacySchema)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM winners").Scan(&count))
	assert.Equal(t, 1, count)

	var winTime string
	require.NoError(t, s.db.QueryRow("SELECT win_time FROM winners").Scan(&winTime))
	assert.Equal(t, "2024-01-01 10:00:00", winTime, "earliest row should survive")

	outcome, err := s.RecordWin(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, AlreadyRecorded, outcome)

	assert.True(t, hasIndex(t, s, "idx_winners_user_prize"), "legacy winners needs the unique index")
}

func hasIndex(t *testing.T, s *Store, name string) bool {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", name,
	).Scan(&n))
	return n > 0
}

func TestMigrateToV1_FreshDatabaseKeepsOnlyPrimaryKey(t *testing.T) {
	s := createTestStore(t)
	assert.False(t, hasIndex(t, s, "idx_winners_user_prize"))

	var pk int
	require.NoError(t, s.db.QueryRow(
		"SELECT COUNT(*) FROM pragma_table_info('winners') WHERE pk > 0",
	).Scan(&pk))
	assert.Equal(t, 2, pk)
}
