package models

import (
	"encoding/json"
	"strconv"
)

// Level is the canonical difficulty of a course. The upstream API is
// inconsistent and sends it as either a string ("Beginner") or an
// integer; it is decoded once at the boundary and handled as an int
// everywhere else.
type Level int

const (
	LevelAllLevels Level = iota
	LevelBeginner
	LevelIntermediate
	LevelExpert
)

var levelNames = map[Level]string{
	LevelAllLevels:    "All Levels",
	LevelBeginner:     "Beginner",
	LevelIntermediate: "Intermediate",
	LevelExpert:       "Expert",
}

var levelValues = map[string]Level{
	"AllLevels":    LevelAllLevels,
	"Beginner":     LevelBeginner,
	"Intermediate": LevelIntermediate,
	"Expert":       LevelExpert,
}

// ParseLevel maps an upstream level string to its canonical value.
// Unrecognized strings fall back to AllLevels.
func ParseLevel(s string) Level {
	if lvl, ok := levelValues[s]; ok {
		return lvl
	}
	return LevelAllLevels
}

// String returns the display name for the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return levelNames[LevelAllLevels]
}

// UnmarshalJSON accepts both upstream representations: a quoted enum
// name or a bare integer.
func (l *Level) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = ParseLevel(s)
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		*l = LevelAllLevels
		return nil
	}
	if n < int(LevelAllLevels) || n > int(LevelExpert) {
		n = int(LevelAllLevels)
	}
	*l = Level(n)
	return nil
}

// ContentSection is one ordered section of a course. Order is
// significant: display order equals slice order.
type ContentSection struct {
	ID            int64  `json:"id,omitempty"` // zero until persisted upstream
	Name          string `json:"name"`
	LecturesCount int    `json:"lecturesNumber"`
	Minutes       int    `json:"time"`
}

// Course is the canonical client-side course shape, produced by the
// normalization layer from whatever field spelling the upstream used.
type Course struct {
	ID             int64            `json:"id"`
	Title          string           `json:"title"`
	InstructorID   int64            `json:"instructorId"`
	InstructorName string           `json:"instructorName"`
	CategoryID     int64            `json:"categoryId"`
	CategoryName   string           `json:"categoryName"`
	Price          float64          `json:"price"`
	Rating         float64          `json:"rating"`
	ReviewCount    int              `json:"reviewCount"`
	TotalHours     float64          `json:"totalHours"`
	Level          Level            `json:"level"`
	LevelName      string           `json:"levelName"`
	ImageURL       string           `json:"imageUrl"`
	Description    string           `json:"description,omitempty"`
	Certification  string           `json:"certification,omitempty"`
	Contents       []ContentSection `json:"contents"`
	TotalLectures  int              `json:"totalLectures"`

	// SyntheticID marks a course whose upstream payload carried no
	// identifier; the ID was generated locally so list keys stay
	// unique. It is a data-quality workaround, not a stable handle.
	SyntheticID bool `json:"syntheticId,omitempty"`
}
