package ledger

import (
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/luckydraw/internal/testutil"
)

var testEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// createTestStore opens a fresh store in a temp dir with a deterministic
// clock and random source.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	clock := testutil.NewDeterministicClock(testEpoch, time.Second)
	base := []Option{
		WithClock(clock.Now),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	s, err := Open(path, append(base, opts...)...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// drivers lists both registered drivers for table-driven tests.
var drivers = []string{DriverCGO, DriverPure}
