package models

import "time"

// ===== AUTH RESPONSES =====

// AuthResponse is returned by register and login
type AuthResponse struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
	User    *User  `json:"user"`
}

type TokenResponse struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh,omitempty"`
	ExpiresIn int64  `json:"expires_in"`
}

// ===== DASHBOARD =====

// AdminStats is the dashboard payload for admins and superusers
type AdminStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalCourses     int64 `json:"total_courses"`
	TotalEnrollments int64 `json:"total_enrollments"`
	AdminCount       int64 `json:"admin_count"`
	InstructorCount  int64 `json:"instructor_count"`
	StudentCount     int64 `json:"student_count"`
}

type InstructorStats struct {
	MyCourses        int64 `json:"my_courses"`
	TotalStudents    int64 `json:"total_students"`
	TotalEnrollments int64 `json:"total_enrollments"`
}

type StudentStats struct {
	EnrolledCourses  int64 `json:"enrolled_courses"`
	CompletedCourses int64 `json:"completed_courses"`
	InProgress       int64 `json:"in_progress"`
}

// ===== COMMON RESPONSES =====

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
	Code    string `json:"code"`
}

type ErrorResponse struct {
	Error            string                    `json:"error"`
	Message          string                    `json:"message"`
	Code             string                    `json:"code,omitempty"`
	Details          interface{}               `json:"details,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
	Path             string                    `json:"path"`
	ValidationErrors []ValidationErrorResponse `json:"validation_errors,omitempty"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type PaginatedResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
