package repositories

import "github.com/SAP-F-2025/lms-service/internal/models"

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Query  string           `json:"query"` // name or email
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type CategoryFilters struct {
	Search string `json:"search"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type CourseFilters struct {
	Search     string `json:"search"` // title, description or category name
	CategoryID *uint  `json:"category_id"`
	Published  *bool  `json:"published"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
	SortBy     string `json:"sort_by"`    // "created_at", "title"
	SortOrder  string `json:"sort_order"` // "asc", "desc"
}

type EnrollmentFilters struct {
	CourseID  *uint  `json:"course_id"`
	Completed *bool  `json:"completed"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"` // "enrolled_at", "progress"
	SortOrder string `json:"sort_order"`
}
