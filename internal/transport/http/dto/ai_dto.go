package dto

type DateIdeaRequest struct {
	PartnerID int64 `json:"partner_id"`
}

type DateIdeaResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
}

type IcebreakersRequest struct {
	PartnerID int64 `json:"partner_id"`
}

type IcebreakersResponse struct {
	Items []string `json:"items"`
}

type LocationsRequest struct {
	Area     string `json:"area"`
	Activity string `json:"activity"`
}

type LocationSuggestionResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LocationsResponse struct {
	Items []LocationSuggestionResponse `json:"items"`
}

type EnhanceRequest struct {
	Description string `json:"description"`
}

type EnhanceResponse struct {
	Description string `json:"description"`
}

type PhotoOrderResponse struct {
	Order []int `json:"order"`
}
