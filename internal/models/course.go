package models

type Course struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// Active treats a missing flag as active; deleted courses are deactivated server-side.
func (c Course) Active() bool {
	return c.IsActive == nil || *c.IsActive
}

type Enrollment struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	Course     Course    `json:"course"`
	EnrolledAt Timestamp `json:"enrolled_at"`
}

type EnrollRequest struct {
	CourseCode string `json:"course_code"`
}

type CourseInput struct {
	Code        string `json:"code,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
