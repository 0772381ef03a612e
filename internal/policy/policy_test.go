package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/lms-service/internal/models"
)

var (
	admin      = &Actor{ID: "admin", Role: models.RoleAdmin}
	superStud  = &Actor{ID: "super", Role: models.RoleStudent, IsSuperuser: true}
	instructor = &Actor{ID: "inst", Role: models.RoleInstructor}
	otherInst  = &Actor{ID: "inst2", Role: models.RoleInstructor}
	student    = &Actor{ID: "stud", Role: models.RoleStudent}
)

func sampleCourses() []*models.Course {
	return []*models.Course{
		{ID: 1, InstructorID: "inst", IsPublished: false},
		{ID: 2, InstructorID: "inst", IsPublished: true},
		{ID: 3, InstructorID: "inst2", IsPublished: true},
		{ID: 4, InstructorID: "inst2", IsPublished: false},
	}
}

func ids(courses []*models.Course) []uint {
	out := make([]uint, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.ID)
	}
	return out
}

func TestCanManageCatalog(t *testing.T) {
	tests := []struct {
		name  string
		actor *Actor
		want  bool
	}{
		{"anonymous", nil, false},
		{"admin", admin, true},
		{"superuser student", superStud, true},
		{"instructor", instructor, true},
		{"student", student, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanManageCatalog(tt.actor))
		})
	}
}

func TestCanActOnObject(t *testing.T) {
	own := &models.Course{ID: 1, InstructorID: "inst"}
	foreign := &models.Course{ID: 2, InstructorID: "inst2"}
	self := &models.User{ID: "stud"}
	category := &models.Category{ID: 9}

	tests := []struct {
		name  string
		actor *Actor
		obj   interface{}
		want  bool
	}{
		{"anonymous", nil, own, false},
		{"admin any course", admin, foreign, true},
		{"superuser any object", superStud, category, true},
		{"instructor own course", instructor, own, true},
		{"instructor foreign course", instructor, foreign, false},
		{"student on self", student, self, true},
		{"student on other user", student, &models.User{ID: "x"}, false},
		{"instructor on unowned object", instructor, category, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanActOnObject(tt.actor, tt.obj))
		})
	}
}

func TestScopeCourses(t *testing.T) {
	tests := []struct {
		name  string
		actor *Actor
		want  []uint
	}{
		{"admin unrestricted", admin, []uint{1, 2, 3, 4}},
		{"superuser unrestricted", superStud, []uint{1, 2, 3, 4}},
		{"instructor own plus published", instructor, []uint{1, 2, 3}},
		{"other instructor", otherInst, []uint{2, 3, 4}},
		{"student published only", student, []uint{2, 3}},
		{"anonymous sees nothing", nil, []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(ScopeCourses(tt.actor, sampleCourses())))
		})
	}
}

func TestMyCoursesScopeFor(t *testing.T) {
	assert.Equal(t, CourseScope{All: true}, MyCoursesScopeFor(admin))
	assert.Equal(t, CourseScope{InstructorID: "inst"}, MyCoursesScopeFor(instructor))
	assert.Equal(t, CourseScope{EnrolledBy: "stud"}, MyCoursesScopeFor(student))
	assert.True(t, MyCoursesScopeFor(nil).None())

	// my courses for an instructor excludes foreign published courses
	mine := CourseScope{InstructorID: "inst"}
	var got []uint
	for _, c := range sampleCourses() {
		if mine.Allows(c) {
			got = append(got, c.ID)
		}
	}
	assert.Equal(t, []uint{1, 2}, got)
}

func TestScopeEnrollments(t *testing.T) {
	c1 := &models.Course{ID: 1, InstructorID: "inst"}
	c2 := &models.Course{ID: 2, InstructorID: "inst2"}
	enrollments := []*models.Enrollment{
		{ID: 1, StudentID: "stud", CourseID: 1, Course: c1},
		{ID: 2, StudentID: "stud", CourseID: 2, Course: c2},
		{ID: 3, StudentID: "other", CourseID: 1, Course: c1},
	}
	collect := func(in []*models.Enrollment) []uint {
		out := []uint{}
		for _, e := range in {
			out = append(out, e.ID)
		}
		return out
	}

	tests := []struct {
		name  string
		actor *Actor
		want  []uint
	}{
		{"admin", admin, []uint{1, 2, 3}},
		{"instructor by course", instructor, []uint{1, 3}},
		{"student own", student, []uint{1, 2}},
		{"anonymous", nil, []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collect(ScopeEnrollments(tt.actor, enrollments)))
		})
	}
}

func TestMyEnrollmentsScopeFor(t *testing.T) {
	assert.Equal(t, EnrollmentScope{StudentID: "admin"}, MyEnrollmentsScopeFor(admin))
	assert.Equal(t, EnrollmentScope{StudentID: "inst", CourseInstructorID: "inst"}, MyEnrollmentsScopeFor(instructor))
	assert.Equal(t, EnrollmentScope{StudentID: "stud"}, MyEnrollmentsScopeFor(student))
	assert.True(t, MyEnrollmentsScopeFor(nil).Deny)
}

func TestCanModifyEnrollment(t *testing.T) {
	e := &models.Enrollment{ID: 1, StudentID: "stud", CourseID: 1}
	assert.True(t, CanModifyEnrollment(student, e, "inst"))
	assert.True(t, CanModifyEnrollment(instructor, e, "inst"))
	assert.False(t, CanModifyEnrollment(otherInst, e, "inst"))
	assert.True(t, CanModifyEnrollment(admin, e, "inst"))
	assert.False(t, CanModifyEnrollment(&Actor{ID: "x", Role: models.RoleStudent}, e, "inst"))
}
