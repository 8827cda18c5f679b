package dto

type ProfileUpdateRequest struct {
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Bio       string   `json:"bio"`
	Gender    string   `json:"gender"`
	Photos    []string `json:"photos"`
	Interests []string `json:"interests"`
}

type UserResponse struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Bio       string   `json:"bio"`
	Gender    string   `json:"gender"`
	Photos    []string `json:"photos"`
	Interests []string `json:"interests"`
	IsPremium bool     `json:"is_premium"`
}

type DeckResponse struct {
	Items []UserResponse `json:"items"`
}
