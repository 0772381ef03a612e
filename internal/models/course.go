package models

import "time"

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Course struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	Title         string  `json:"title" gorm:"not null;size:200;index"`
	Description   string  `json:"description" gorm:"type:text"`
	CategoryID    *uint   `json:"category" gorm:"index"`
	InstructorID  string  `json:"instructor" gorm:"not null;index;size:36"`
	Thumbnail     *string `json:"thumbnail" gorm:"size:500"`
	DurationHours int     `json:"duration_hours" gorm:"not null;default:0"`
	IsPublished   bool    `json:"is_published" gorm:"not null;default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Category   *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Instructor *User     `json:"-" gorm:"foreignKey:InstructorID"`

	// Computed fields
	InstructorName  string `json:"instructor_name" gorm:"-"`
	CategoryName    string `json:"category_name" gorm:"-"`
	EnrollmentCount int64  `json:"enrollment_count" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// OwnerID returns the owning instructor for object-level permission checks
func (c *Course) OwnerID() string {
	return c.InstructorID
}

type Enrollment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	StudentID  string    `json:"student" gorm:"not null;size:36;uniqueIndex:idx_enrollment_student_course"`
	CourseID   uint      `json:"course" gorm:"not null;index;uniqueIndex:idx_enrollment_student_course"`
	Progress   float64   `json:"progress" gorm:"not null;default:0"`
	Completed  bool      `json:"completed" gorm:"not null;default:false;index"`
	EnrolledAt time.Time `json:"enrolled_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"-"`

	// Relations
	Student *User   `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Course  *Course `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`

	// Computed fields
	StudentName string `json:"student_name" gorm:"-"`
	CourseTitle string `json:"course_title" gorm:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
