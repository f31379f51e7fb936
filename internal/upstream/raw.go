package upstream

import "github.com/byway-labs/byway-gateway/internal/models"

// Raw payload shapes, one field per spelling the upstream has been
// seen to use. Go's case-insensitive JSON matching covers Id/id/ID;
// genuinely different names (name/title, cost/price, rate/rating) get
// their own fields and are reconciled by the normalization layer.

// RawContent is one course content section as sent by the upstream.
type RawContent struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	LecturesNumber int    `json:"lecturesNumber"`
	Time           int    `json:"time"`
}

// RawCourse is a course as sent by the upstream, before normalization.
type RawCourse struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Title          string       `json:"title"`
	InstructorID   int64        `json:"instructorId"`
	InstructorName string       `json:"instructorName"`
	CategoryID     int64        `json:"categoryId"`
	Cost           float64      `json:"cost"`
	Price          float64      `json:"price"`
	Rate           float64      `json:"rate"`
	Rating         float64      `json:"rating"`
	TotalHours     float64      `json:"totalHours"`
	Level          models.Level `json:"level"`
	ImageURL       string       `json:"imageUrl"`
	Description    string       `json:"description"`
	Certification  string       `json:"certification"`
	CreateAt       string       `json:"createAt"`
	Contents       []RawContent `json:"contents"`
}

// RawCategory is a category as sent by the upstream.
type RawCategory struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

// RawTopCategory is the distinct shape of /Category/TopCategoriesByCourses,
// which uses PascalCase field names unlike every other endpoint.
type RawTopCategory struct {
	CategoryID   int64  `json:"CategoryId"`
	CategoryName string `json:"CategoryName"`
	ImageURL     string `json:"ImageUrl"`
	CoursesCount int    `json:"CoursesCount"`
}

// RawInstructor is an instructor as sent by the upstream.
type RawInstructor struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	JobTitle    models.JobTitle `json:"jobTitle"`
	Rate        float64         `json:"rate"`
	Rating      float64         `json:"rating"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
}

// RawCartItem is one cart line as sent by the upstream.
type RawCartItem struct {
	CourseID       int64        `json:"courseId"`
	CourseName     string       `json:"courseName"`
	InstructorName string       `json:"instructorName"`
	Price          float64      `json:"price"`
	ImageURL       string       `json:"imageUrl"`
	TotalHours     float64      `json:"totalHours"`
	Level          models.Level `json:"level"`
}

// RawCart is the cart envelope returned by GET /Cart.
type RawCart struct {
	Items     []RawCartItem `json:"items"`
	ItemCount int           `json:"itemCount"`
	SubTotal  float64       `json:"subTotal"`
	Tax       float64       `json:"tax"`
	Discount  float64       `json:"discount"`
	Total     float64       `json:"total"`
}

// AuthResult is the login/register response.
type AuthResult struct {
	IsAuthenticated bool     `json:"isAuthenticated"`
	Token           string   `json:"token"`
	UserID          string   `json:"userId"`
	UserName        string   `json:"userName"`
	Email           string   `json:"email"`
	Roles           []string `json:"roles"`
	Message         string   `json:"message"`
}
