package models

import (
	"encoding/json"
	"strconv"
)

// JobTitle is the instructor role enumeration used by the upstream API.
type JobTitle int

const (
	JobFullstackDeveloper JobTitle = iota
	JobBackendDeveloper
	JobFrontendDeveloper
	JobUXUIDesigner
)

var jobTitleNames = map[JobTitle]string{
	JobFullstackDeveloper: "Fullstack Developer",
	JobBackendDeveloper:   "Backend Developer",
	JobFrontendDeveloper:  "Frontend Developer",
	JobUXUIDesigner:       "UX/UI Designer",
}

var jobTitleValues = map[string]JobTitle{
	"FullstackDeveloper": JobFullstackDeveloper,
	"BackendDeveloper":   JobBackendDeveloper,
	"FrontendDeveloper":  JobFrontendDeveloper,
	"UXUIDesigner":       JobUXUIDesigner,
}

func (j JobTitle) String() string {
	if name, ok := jobTitleNames[j]; ok {
		return name
	}
	return jobTitleNames[JobFullstackDeveloper]
}

// UnmarshalJSON accepts both the enum name and the bare integer the
// upstream uses interchangeably.
func (j *JobTitle) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if v, ok := jobTitleValues[s]; ok {
			*j = v
		} else {
			*j = JobFullstackDeveloper
		}
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil || n < int(JobFullstackDeveloper) || n > int(JobUXUIDesigner) {
		*j = JobFullstackDeveloper
		return nil
	}
	*j = JobTitle(n)
	return nil
}

// Instructor is the canonical instructor shape.
type Instructor struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	JobTitle     JobTitle `json:"jobTitle"`
	JobTitleName string   `json:"jobTitleName"`
	Rating       float64  `json:"rating"`
	Description  string   `json:"description,omitempty"`
	ImageURL     string   `json:"imageUrl"`
	CourseCount  int      `json:"courseCount,omitempty"`
	StudentCount int      `json:"studentCount,omitempty"`
}
