package models

import "math"

// CartItem is a course snapshot inside the cart. The snapshot is
// server-derived; the gateway never patches it locally.
type CartItem struct {
	CourseID       int64   `json:"courseId"`
	Title          string  `json:"title"`
	InstructorName string  `json:"instructorName"`
	Price          float64 `json:"price"`
	ImageURL       string  `json:"imageUrl"`
	TotalHours     float64 `json:"totalHours"`
	Level          Level   `json:"level"`
	LevelName      string  `json:"levelName"`
}

// Cart holds the server-derived cart totals. Invariant after every
// sync: Total == SubTotal + Tax - Discount.
type Cart struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	SubTotal  float64    `json:"subTotal"`
	Tax       float64    `json:"tax"`
	Discount  float64    `json:"discount,omitempty"`
	Total     float64    `json:"total"`
}

// TotalsConsistent reports whether the server-derived totals satisfy
// the cart invariant, allowing for float rounding.
func (c Cart) TotalsConsistent() bool {
	return math.Abs(c.Total-(c.SubTotal+c.Tax-c.Discount)) < 0.01
}
