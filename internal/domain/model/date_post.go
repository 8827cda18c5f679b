package model

import "time"

type DatePost struct {
	ID                int64     `json:"id"`
	CreatedBy         int64     `json:"created_by"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	DateTime          time.Time `json:"date_time"`
	Categories        []string  `json:"categories"`
	Applicants        []int64   `json:"applicants"`
	ChosenApplicantID *int64    `json:"chosen_applicant_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
