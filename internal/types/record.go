package types

import "time"

// UserRecord is the long-term memory persisted for one user.
type UserRecord struct {
	UserID string `json:"user_id"`
	// Facts is ordered oldest -> newest, unique, bounded by the configured cap.
	Facts []string `json:"facts"`
	// Intimacy is the smoothed relationship score.
	Intimacy  int       `json:"intimacy"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate facts freely.
func (r *UserRecord) Clone() *UserRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Facts = append([]string(nil), r.Facts...)
	return &out
}

// ChatTurn is one exchange kept in short-term history.
type ChatTurn struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// TurnResult is what a processed turn reports back to the caller.
type TurnResult struct {
	Intimacy    int    `json:"intimacy"`
	Level       string `json:"intimacy_level"`
	TotalChange int    `json:"intimacy_change"`
	FactsAdded  int    `json:"-"`
}

// State is the current intimacy snapshot for a user.
type State struct {
	Intimacy int      `json:"intimacy"`
	Level    string   `json:"intimacy_level"`
	Facts    []string `json:"facts"`
}
