package models

// Category is the canonical category shape.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl,omitempty"`
	CourseCount int    `json:"courseCount,omitempty"`
}
