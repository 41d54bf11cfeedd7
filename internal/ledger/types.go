package ledger

// User is a draw participant.
type User struct {
	ID   int64  `json:"user_id"`
	Name string `json:"user_name"`
}

// Prize is one registered image. Used flips to true once, via MarkPrizeUsed.
type Prize struct {
	ID    int64  `json:"prize_id"`
	Image string `json:"image"`
	Used  bool   `json:"used"`
}

// Win is a stored win record.
type Win struct {
	UserID  int64  `json:"user_id"`
	PrizeID int64  `json:"prize_id"`
	WinTime string `json:"win_time"`
}

// WinOutcome reports what RecordWin did.
type WinOutcome int

const (
	// Inserted means a new win record was written.
	Inserted WinOutcome = iota + 1
	// AlreadyRecorded means the pair already existed and nothing was written.
	AlreadyRecorded
)

func (o WinOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case AlreadyRecorded:
		return "already_recorded"
	default:
		return "unknown"
	}
}

// MarshalText renders the outcome as its string form for JSON output.
func (o WinOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// LeaderboardEntry is one row of the leaderboard.
type LeaderboardEntry struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Wins     int    `json:"wins"`
}
