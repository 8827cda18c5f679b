package model

import "time"

// Match is the canonical mutual-like row. UserLowID is always the smaller
// of the two ids so that (A,B) and (B,A) map to the same row.
type Match struct {
	ID         int64     `json:"id"`
	UserLowID  int64     `json:"user_low_id"`
	UserHighID int64     `json:"user_high_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m Match) PartnerOf(userID int64) int64 {
	if m.UserLowID == userID {
		return m.UserHighID
	}
	return m.UserLowID
}
