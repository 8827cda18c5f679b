package dto

type SwipeRequest struct {
	TargetID  int64  `json:"target_id"`
	Direction string `json:"direction"`
}

type SwipeResponse struct {
	OK      bool  `json:"ok"`
	IsMatch bool  `json:"is_match"`
	MatchID int64 `json:"match_id,omitempty"`
}

type RecallResponse struct {
	OK              bool   `json:"ok"`
	UndoneTargetID  int64  `json:"undone_target_id"`
	UndoneDirection string `json:"undone_direction"`
	MatchRemoved    bool   `json:"match_removed"`
}
