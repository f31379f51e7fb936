package models

// SortKey selects the ordering of the filtered course list.
type SortKey string

const (
	SortLatest    SortKey = "latest"
	SortRating    SortKey = "rating"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
)

// PriceRange is an inclusive price window.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// LectureRange is one inclusive lecture-count bucket a user can tick.
type LectureRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FilterState is the full client-side filter selection. Zero values
// mean "no filter" for their clause: rating 0, empty category set,
// empty lecture-range set, empty search term. It is pure UI state and
// never persisted upstream.
type FilterState struct {
	SelectedRating     float64        `json:"selectedRating"`
	SelectedCategories map[int64]bool `json:"selectedCategories"`
	SelectedLectures   []LectureRange `json:"selectedLectures"`
	PriceRange         PriceRange     `json:"priceRange"`
	SortBy             SortKey        `json:"sortBy"`
	SearchTerm         string         `json:"searchTerm"`
}

// DefaultFilters returns the filter state the storefront starts with.
func DefaultFilters() FilterState {
	return FilterState{
		SelectedCategories: make(map[int64]bool),
		PriceRange:         PriceRange{Min: 0, Max: 5000},
		SortBy:             SortLatest,
	}
}
