package dto

import "time"

type DatePostRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	DateTime    time.Time `json:"date_time"`
	Categories  []string  `json:"categories"`
}

type DatePostResponse struct {
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
}

type DatePostsResponse struct {
	Items []DatePostResponse `json:"items"`
}

type DateApplyResponse struct {
	OK      bool             `json:"ok"`
	Applied bool             `json:"applied"`
	Post    DatePostResponse `json:"post"`
}

type DateChooseRequest struct {
	ApplicantID int64 `json:"applicant_id"`
}

type DateDeleteResponse struct {
	OK bool `json:"ok"`
}
