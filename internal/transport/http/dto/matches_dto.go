package dto

import "time"

type MatchItemResponse struct {
	ID            int64     `json:"id"`
	PartnerUserID int64     `json:"partner_user_id"`
	DisplayName   string    `json:"display_name,omitempty"`
	Photos        []string  `json:"photos,omitempty"`
	Locked        bool      `json:"locked"`
	CreatedAt     time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Items       []MatchItemResponse `json:"items"`
	Total       int                 `json:"total"`
	LockedCount int                 `json:"locked_count"`
}

type UnmatchRequest struct {
	TargetID int64 `json:"target_id"`
}

type UnmatchResponse struct {
	OK bool `json:"ok"`
}
