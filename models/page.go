package models

// PageInfo is the navigation metadata of a single listing page.
type PageInfo struct {
	Total              int  `json:"total"`
	Limit              int  `json:"limit"`
	First              int  `json:"first"`
	Last               int  `json:"last"`
	HasPrevious        bool `json:"has_previous"`
	HasNext            bool `json:"has_next"`
	PageRange          int  `json:"page_range"`
	InPageRange        bool `json:"in_page_range"`
	Number             int  `json:"number"`
	PreviousPageNumber int  `json:"previous_page_number"`
	NextPageNumber     int  `json:"next_page_number"`
	CurrentFirst       int  `json:"current_first"`
	CurrentLast        int  `json:"current_last"`
}
