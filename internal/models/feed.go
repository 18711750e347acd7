package models

// FeedPage is one page of a user's feed plus the pagination metadata the
// serving layer needs.
type FeedPage struct {
	Items           []Micropost `json:"items"`
	Page            int         `json:"current_page"`
	PageSize        int         `json:"items_per_page"`
	TotalItems      int64       `json:"total_items"`
	TotalPages      int         `json:"total_pages"`
	HasNextPage     bool        `json:"has_next_page"`
	HasPreviousPage bool        `json:"has_previous_page"`
}
