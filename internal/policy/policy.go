// Package policy decides what an authenticated actor may see and change.
//
// Every function is pure. The same rule table drives in-memory filtering
// (ScopeCourses, ScopeEnrollments) and the query predicates returned by
// CourseScopeFor and EnrollmentScopeFor, which repositories translate to SQL.
package policy

import "github.com/SAP-F-2025/lms-service/internal/models"

// Actor is the identity making a request. A nil *Actor is anonymous.
type Actor struct {
	ID          string
	Email       string
	Role        models.UserRole
	IsSuperuser bool
}

// ActorFromUser builds an Actor from a persisted user
func ActorFromUser(u *models.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{ID: u.ID, Email: u.Email, Role: u.Role, IsSuperuser: u.IsSuperuser}
}

// Owned is implemented by objects that have an owning instructor
type Owned interface {
	OwnerID() string
}

// IsAdmin reports admin-equivalent rights: the admin role or the superuser flag
func IsAdmin(a *Actor) bool {
	return a != nil && (a.IsSuperuser || a.Role == models.RoleAdmin)
}

func IsInstructor(a *Actor) bool {
	return a != nil && a.Role == models.RoleInstructor
}

// CanManageCatalog governs create, update and delete of categories and courses
func CanManageCatalog(a *Actor) bool {
	if a == nil {
		return false
	}
	return a.IsSuperuser || a.Role == models.RoleAdmin || a.Role == models.RoleInstructor
}

// CanActOnObject is the object-level check for update and delete. obj may be
// an Owned value (course), a *models.User, or anything else, in which case
// only admins pass.
func CanActOnObject(a *Actor, obj interface{}) bool {
	if a == nil {
		return false
	}
	if IsAdmin(a) {
		return true
	}
	switch o := obj.(type) {
	case Owned:
		return o.OwnerID() == a.ID
	case *models.User:
		return o != nil && o.ID == a.ID
	case *Actor:
		return o != nil && o.ID == a.ID
	}
	return false
}

// CanModifyEnrollment allows the enrolled student, the course instructor and
// admins to update progress on an enrollment.
func CanModifyEnrollment(a *Actor, e *models.Enrollment, courseInstructorID string) bool {
	if a == nil || e == nil {
		return false
	}
	if IsAdmin(a) {
		return true
	}
	return e.StudentID == a.ID || (IsInstructor(a) && courseInstructorID == a.ID)
}

// CourseScope is a course visibility predicate. All wins over the other
// fields; otherwise a course is visible if any enabled clause matches.
type CourseScope struct {
	All          bool
	Published    bool
	InstructorID string
	EnrolledBy   string
}

// None reports a scope that matches nothing
func (s CourseScope) None() bool {
	return !s.All && !s.Published && s.InstructorID == "" && s.EnrolledBy == ""
}

// Allows evaluates the scope for a single course. EnrolledBy cannot be
// decided from the course alone and is ignored here.
func (s CourseScope) Allows(c *models.Course) bool {
	if c == nil {
		return false
	}
	if s.All {
		return true
	}
	if s.Published && c.IsPublished {
		return true
	}
	return s.InstructorID != "" && c.InstructorID == s.InstructorID
}

// CourseScopeFor is the listing scope:
// admins see everything, instructors their own plus published, others published only.
func CourseScopeFor(a *Actor) CourseScope {
	switch {
	case a == nil:
		return CourseScope{}
	case IsAdmin(a):
		return CourseScope{All: true}
	case IsInstructor(a):
		return CourseScope{Published: true, InstructorID: a.ID}
	default:
		return CourseScope{Published: true}
	}
}

// MyCoursesScopeFor narrows to exact ownership. Students get the courses
// they are enrolled in.
func MyCoursesScopeFor(a *Actor) CourseScope {
	switch {
	case a == nil:
		return CourseScope{}
	case IsAdmin(a):
		return CourseScope{All: true}
	case IsInstructor(a):
		return CourseScope{InstructorID: a.ID}
	default:
		return CourseScope{EnrolledBy: a.ID}
	}
}

// EnrollmentScope is an enrollment visibility predicate. Non-empty fields
// are combined with AND.
type EnrollmentScope struct {
	All                bool
	Deny               bool
	StudentID          string
	CourseInstructorID string
}

// Allows evaluates the scope for one enrollment; courseInstructorID is the
// instructor of the enrollment's course.
func (s EnrollmentScope) Allows(e *models.Enrollment, courseInstructorID string) bool {
	if e == nil || s.Deny {
		return false
	}
	if s.StudentID != "" && e.StudentID != s.StudentID {
		return false
	}
	if s.CourseInstructorID != "" && courseInstructorID != s.CourseInstructorID {
		return false
	}
	return true
}

// EnrollmentScopeFor: students see their own, instructors those on courses
// they teach, admins all.
func EnrollmentScopeFor(a *Actor) EnrollmentScope {
	switch {
	case a == nil:
		return EnrollmentScope{Deny: true}
	case IsAdmin(a):
		return EnrollmentScope{All: true}
	case IsInstructor(a):
		return EnrollmentScope{CourseInstructorID: a.ID}
	default:
		return EnrollmentScope{StudentID: a.ID}
	}
}

// MyEnrollmentsScopeFor is the listing scope further narrowed to enrollments
// where the actor is the student.
func MyEnrollmentsScopeFor(a *Actor) EnrollmentScope {
	s := EnrollmentScopeFor(a)
	if s.Deny {
		return s
	}
	s.All = false
	s.StudentID = a.ID
	return s
}

// ScopeCourses filters courses in memory with the listing rules
func ScopeCourses(a *Actor, courses []*models.Course) []*models.Course {
	scope := CourseScopeFor(a)
	out := make([]*models.Course, 0, len(courses))
	for _, c := range courses {
		if scope.Allows(c) {
			out = append(out, c)
		}
	}
	return out
}

// ScopeEnrollments filters enrollments in memory. Each enrollment must have
// its Course loaded for the instructor rule to match.
func ScopeEnrollments(a *Actor, enrollments []*models.Enrollment) []*models.Enrollment {
	scope := EnrollmentScopeFor(a)
	out := make([]*models.Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		instructorID := ""
		if e != nil && e.Course != nil {
			instructorID = e.Course.InstructorID
		}
		if scope.Allows(e, instructorID) {
			out = append(out, e)
		}
	}
	return out
}
