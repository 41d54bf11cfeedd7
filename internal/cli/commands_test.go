package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/luckydraw/internal/picture"
	"github.com/roach88/luckydraw/internal/testutil"
)

// workspace is a throwaway database plus image directories for driving
// the CLI end to end.
type workspace struct {
	t      *testing.T
	db     string
	images string
	hidden string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	ws := &workspace{
		t:      t,
		db:     filepath.Join(dir, "prizes.db"),
		images: filepath.Join(dir, "img"),
		hidden: filepath.Join(dir, "hidden_img"),
	}
	require.NoError(t, os.MkdirAll(ws.images, 0o755))
	return ws
}

// withImages writes A.png, B.png and C.png (20x10 each) to the source dir.
func (ws *workspace) withImages() *workspace {
	ws.t.Helper()
	testutil.WritePNG(ws.t, ws.images, "A.png", testutil.Solid(20, 10, color.NRGBA{255, 0, 0, 255}))
	testutil.WritePNG(ws.t, ws.images, "B.png", testutil.Solid(20, 10, color.NRGBA{0, 255, 0, 255}))
	testutil.WritePNG(ws.t, ws.images, "C.png", testutil.Gradient(20, 10))
	return ws
}

type result struct {
	stdout string
	stderr string
	code   int
}

func (ws *workspace) run(args ...string) result {
	ws.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append(args, "--db", ws.db, "--images", ws.images, "--hidden", ws.hidden)
	code := Execute(context.Background(), full, &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// mustRun runs args and fails the test on a non-zero exit.
func (ws *workspace) mustRun(args ...string) string {
	ws.t.Helper()
	res := ws.run(args...)
	require.Equal(ws.t, ExitSuccess, res.code, "args=%v stderr=%s", args, res.stderr)
	return res.stdout
}

func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	resp := CLIResponse{Data: data}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

// seed loads the three images and records a fixed set of wins:
// alice won A and B, bob won A, carol won C, dave won nothing. B is retired.
func (ws *workspace) seed() {
	ws.t.Helper()
	ws.mustRun("init")
	ws.mustRun("load")
	ws.mustRun("user", "add", "1", "alice")
	ws.mustRun("user", "add", "2", "bob")
	ws.mustRun("user", "add", "3", "carol")
	ws.mustRun("user", "add", "4", "dave")
	ws.mustRun("win", "1", "1")
	ws.mustRun("win", "1", "2")
	ws.mustRun("win", "2", "1")
	ws.mustRun("win", "3", "3")
	ws.mustRun("retire", "2")
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestInit_CreatesHiddenDir(t *testing.T) {
	ws := newWorkspace(t)

	out := ws.mustRun("init")
	assert.Contains(t, out, "Initialized")
	assert.DirExists(t, ws.hidden)
	assert.FileExists(t, ws.db)

	// Idempotent.
	ws.mustRun("init")
}

func TestLoad_ReportsPrizeIDs(t *testing.T) {
	ws := newWorkspace(t).withImages()

	var data LoadResult
	resp := decodeResponse(t, ws.mustRun("load", "--format", "json"), &data)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, data.Loaded)
	assert.Equal(t, []int64{1, 2, 3}, data.PrizeIDs)
}

func TestUserAdd_Duplicate(t *testing.T) {
	ws := newWorkspace(t)
	ws.mustRun("user", "add", "1", "alice")

	res := ws.run("user", "add", "1", "alice again")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error [E_DUPLICATE]")
}

func TestUserAdd_EchoesStoredName(t *testing.T) {
	ws := newWorkspace(t)

	out := ws.mustRun("user", "add", "5", "Jose\u0301")
	assert.Equal(t, "Added user 5 (Jos\u00e9)\n", out)

	var u struct {
		ID   int64  `json:"user_id"`
		Name string `json:"user_name"`
	}
	decodeResponse(t, ws.mustRun("user", "add", "6", "Rene\u0301e", "--format", "json"), &u)
	assert.Equal(t, int64(6), u.ID)
	assert.Equal(t, "Ren\u00e9e", u.Name)
}

func TestUserAdd_InvalidID(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run("user", "add", "abc", "alice")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "Error [E_USAGE]")
	assert.Contains(t, res.stderr, `invalid user id "abc"`)
}

func TestDraw_NoPrizes(t *testing.T) {
	ws := newWorkspace(t)
	ws.mustRun("user", "add", "1", "alice")

	res := ws.run("draw", "1", "--format", "json")
	assert.Equal(t, ExitFailure, res.code)

	resp := decodeResponse(t, res.stdout, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoPrizes, resp.Error.Code)
}

func TestDraw_SkipsRetiredPrizes(t *testing.T) {
	ws := newWorkspace(t).withImages()
	ws.mustRun("load")
	ws.mustRun("user", "add", "1", "alice")
	ws.mustRun("retire", "1")
	ws.mustRun("retire", "2")

	var data struct {
		UserID  int64  `json:"user_id"`
		Outcome string `json:"outcome"`
		Retired bool   `json:"retired"`
		Prize   struct {
			ID    int64  `json:"prize_id"`
			Image string `json:"image"`
		} `json:"prize"`
	}
	decodeResponse(t, ws.mustRun("draw", "1", "--format", "json"), &data)
	assert.Equal(t, int64(1), data.UserID)
	assert.Equal(t, int64(3), data.Prize.ID)
	assert.Equal(t, "C.png", data.Prize.Image)
	assert.Equal(t, "inserted", data.Outcome)
	assert.False(t, data.Retired)
}

func TestDraw_RetireFlagExhaustsPool(t *testing.T) {
	ws := newWorkspace(t).withImages()
	ws.mustRun("load")
	ws.mustRun("user", "add", "1", "alice")

	for range 3 {
		ws.mustRun("draw", "1", "--retire")
	}
	res := ws.run("draw", "1")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error [E_NO_PRIZES]")

	assert.Equal(t, "User 1 has won 3 prizes\n", ws.mustRun("score", "1"))
}

func TestWin_Idempotent(t *testing.T) {
	ws := newWorkspace(t).withImages()
	ws.mustRun("load")
	ws.mustRun("user", "add", "1", "alice")

	assert.Equal(t, "User 1 won prize 2 (B.png)\n", ws.mustRun("win", "1", "2"))
	assert.Equal(t, "User 1 already won prize 2 (B.png)\n", ws.mustRun("win", "1", "2"))
	assert.Equal(t, "User 1 has won 1 prizes\n", ws.mustRun("score", "1"))
}

func TestWin_UnknownIDs(t *testing.T) {
	ws := newWorkspace(t).withImages()
	ws.mustRun("load")
	ws.mustRun("user", "add", "1", "alice")

	res := ws.run("win", "1", "99")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error [E_NOT_FOUND]")

	res = ws.run("win", "42", "1")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error [E_NOT_FOUND]")
}

func TestRetire_UnknownPrizeIsSilent(t *testing.T) {
	ws := newWorkspace(t)
	assert.Equal(t, "Prize 7 retired\n", ws.mustRun("retire", "7"))
}

func TestScore_UnknownUserIsZero(t *testing.T) {
	ws := newWorkspace(t)
	assert.Equal(t, "User 9 has won 0 prizes\n", ws.mustRun("score", "9"))
}

func TestGolden_Users(t *testing.T) {
	ws := newWorkspace(t).withImages()
	ws.seed()
	golden(t).Assert(t, "users", []byte(ws.mustRun("users")))
}

func TestGolden_Prizes(t *testing.T) {
	ws := newWorkspace(t).withImages()
	ws.seed()
	golden(t).Assert(t, "prizes", []byte(ws.mustRun("prizes")))
}

func TestGolden_Leaderboard(t *testing.T) {
	ws := newWorkspace(t).withImages()
	ws.seed()
	golden(t).Assert(t, "leaderboard", []byte(ws.mustRun("leaderboard")))
}

func TestGolden_LeaderboardEmpty(t *testing.T) {
	ws := newWorkspace(t)
	golden(t).Assert(t, "leaderboard_empty", []byte(ws.mustRun("leaderboard")))
}

func TestLeaderboard_LimitFlag(t *testing.T) {
	ws := newWorkspace(t).withImages()
	ws.seed()

	var rows []struct {
		Rank     int    `json:"rank"`
		UserID   int64  `json:"user_id"`
		UserName string `json:"user_name"`
		Wins     int    `json:"wins"`
	}
	decodeResponse(t, ws.mustRun("leaderboard", "--limit", "1", "--format", "json"), &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, int64(1), rows[0].UserID)
	assert.Equal(t, "alice", rows[0].UserName)
	assert.Equal(t, 2, rows[0].Wins)
}

func TestObscureAndCollage(t *testing.T) {
	ws := newWorkspace(t).withImages()
	ws.seed()

	out := ws.mustRun("obscure")
	assert.Equal(t, "Obscured 3 images\n", out)
	for _, name := range []string{"A.png", "B.png", "C.png"} {
		assert.FileExists(t, filepath.Join(ws.hidden, name))
	}

	target := filepath.Join(t.TempDir(), "alice.png")
	var data CollageResult
	decodeResponse(t, ws.mustRun("collage", "1", "--out", target, "--format", "json"), &data)
	assert.False(t, data.Empty)
	assert.Equal(t, 1, data.Cols)
	assert.Equal(t, 3, data.Rows)
	assert.Equal(t, 3, data.Placed)
	assert.Equal(t, 0, data.Skipped)

	img, err := picture.Load(target)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	// Alice won A, so the first tile is the untouched red original.
	r, g, b, _ := img.At(10, 5).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
}

func TestObscure_SkipsUnreadableFiles(t *testing.T) {
	ws := newWorkspace(t).withImages()
	testutil.WriteFile(t, ws.images, "notes.txt", []byte("not an image"))

	var rep picture.Report
	decodeResponse(t, ws.mustRun("obscure", "--format", "json"), &rep)
	assert.Equal(t, []string{"A.png", "B.png", "C.png"}, rep.Written)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, "notes.txt", rep.Skipped[0].Name)
}

func TestCollage_EmptyIsNotAnError(t *testing.T) {
	ws := newWorkspace(t)
	target := filepath.Join(t.TempDir(), "none.png")

	out := ws.mustRun("collage", "1", "--out", target)
	assert.Equal(t, "No collage for user 1: no readable images\n", out)
	assert.NoFileExists(t, target)
}

func TestInvalidFormat(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run("users", "--format", "yaml")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "Error [E_USAGE]")
}

func TestInvalidDriver(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run("users", "--driver", "postgres")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "Error [E_CONFIG]")
}

func TestMissingConfigFile(t *testing.T) {
	ws := newWorkspace(t)

	res := ws.run("users", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "Error [E_CONFIG]")
}

func TestConfigFileSetsLeaderboardLimit(t *testing.T) {
	ws := newWorkspace(t).withImages()
	ws.seed()
	cfg := testutil.WriteFile(t, t.TempDir(), "luckydraw.yaml", []byte("leaderboard:\n  limit: 2\n"))

	var rows []json.RawMessage
	decodeResponse(t, ws.mustRun("leaderboard", "--config", cfg, "--format", "json"), &rows)
	assert.Len(t, rows, 2)
}

func TestUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"nope"}, &stdout, &stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "Error [E_USAGE]")
}
