package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/services"
)

func titles(resp services.CourseListResponse) []string {
	out := make([]string, 0, len(resp.Courses))
	for _, c := range resp.Courses {
		out = append(out, c.Title)
	}
	return out
}

func TestCourseEndpoints(t *testing.T) {
	srv := newTestServer(t, testAuthConfig())
	instructor := srv.register(t, "ins@example.com", models.RoleInstructor)
	other := srv.register(t, "other@example.com", models.RoleInstructor)
	student := srv.register(t, "stu@example.com", models.RoleStudent)

	w := srv.do(t, http.MethodPost, "/api/v1/lms/courses", student, gin.H{"title": "Nope"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/lms/courses", instructor, gin.H{"title": "Go Basics", "instructor": "someone-else"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	course := decode[models.Course](t, w)
	assert.False(t, course.IsPublished)
	coursePath := fmt.Sprintf("/api/v1/lms/courses/%d", course.ID)

	t.Run("draft hidden from students", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/lms/courses", student, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, titles(decode[services.CourseListResponse](t, w)), "Go Basics")

		w = srv.do(t, http.MethodGet, coursePath, student, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("other instructor cannot publish", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, coursePath+"/publish", other, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("owner publishes", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, coursePath+"/publish", instructor, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, decode[models.Course](t, w).IsPublished)

		w = srv.do(t, http.MethodGet, "/api/v1/lms/courses?search=basics", student, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Go Basics"}, titles(decode[services.CourseListResponse](t, w)))
	})

	t.Run("other instructor cannot edit a published course", func(t *testing.T) {
		w := srv.do(t, http.MethodPatch, coursePath, other, gin.H{"title": "Mine now"})
		require.Equal(t, http.StatusForbidden, w.Code)

		resp := decode[models.ErrorResponse](t, w)
		details, ok := resp.Details.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "course", details["resource"])
	})

	t.Run("my courses", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/lms/courses/my_courses", other, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[services.CourseListResponse](t, w).Courses)
	})

	t.Run("bad id", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/lms/courses/abc", student, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/lms/courses", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("owner deletes", func(t *testing.T) {
		w := srv.do(t, http.MethodDelete, coursePath, instructor, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = srv.do(t, http.MethodGet, coursePath, instructor, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(t, testAuthConfig())
	admin := srv.admin(t, "admin@example.com")
	student := srv.register(t, "stu@example.com", models.RoleStudent)

	w := srv.do(t, http.MethodPost, "/api/v1/lms/categories", admin, gin.H{"name": "Programming"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	category := decode[models.Category](t, w)

	w = srv.do(t, http.MethodPost, "/api/v1/lms/categories", admin, gin.H{"name": "Programming"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/lms/categories", student, gin.H{"name": "Art"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/lms/categories", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[services.CategoryListResponse](t, w).Total)

	path := fmt.Sprintf("/api/v1/lms/categories/%d", category.ID)
	w = srv.do(t, http.MethodPut, path, admin, gin.H{"name": "Software"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Software", decode[models.Category](t, w).Name)

	w = srv.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodGet, path, student, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnrollmentAndDashboardEndpoints(t *testing.T) {
	srv := newTestServer(t, testAuthConfig())
	instructor := srv.register(t, "ins@example.com", models.RoleInstructor)
	student := srv.register(t, "stu@example.com", models.RoleStudent)
	peer := srv.register(t, "peer@example.com", models.RoleStudent)

	w := srv.do(t, http.MethodPost, "/api/v1/lms/courses", instructor, gin.H{"title": "Go", "is_published": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	course := decode[models.Course](t, w)

	w = srv.do(t, http.MethodPost, "/api/v1/lms/enrollments", student, gin.H{"course": course.ID, "student": "forged"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	enrollment := decode[models.Enrollment](t, w)
	assert.NotEqual(t, "forged", enrollment.StudentID)
	enrollmentPath := fmt.Sprintf("/api/v1/lms/enrollments/%d", enrollment.ID)

	t.Run("duplicate conflicts", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/lms/enrollments", student, gin.H{"course": course.ID})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "already enrolled in this course", decode[models.ErrorResponse](t, w).Message)
	})

	t.Run("peer cannot see it", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, enrollmentPath, peer, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = srv.do(t, http.MethodGet, "/api/v1/lms/enrollments", peer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[services.EnrollmentListResponse](t, w).Enrollments)
	})

	t.Run("progress to completion", func(t *testing.T) {
		w := srv.do(t, http.MethodPatch, enrollmentPath, student, gin.H{"progress": 100})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, decode[models.Enrollment](t, w).Completed)

		w = srv.do(t, http.MethodPatch, enrollmentPath, student, gin.H{"progress": 150})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("dashboard per role", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/lms/dashboard/stats", student, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.StudentStats{EnrolledCourses: 1, CompletedCourses: 1}, decode[models.StudentStats](t, w))

		w = srv.do(t, http.MethodGet, "/api/v1/lms/dashboard/stats", instructor, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.InstructorStats{MyCourses: 1, TotalStudents: 1, TotalEnrollments: 1}, decode[models.InstructorStats](t, w))
	})

	t.Run("my enrollments", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/lms/enrollments/my_enrollments", student, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[services.EnrollmentListResponse](t, w).Enrollments, 1)
	})

	t.Run("export", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/lms/enrollments/export", student, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = srv.do(t, http.MethodGet, "/api/v1/lms/enrollments/export", instructor, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "enrollments-")

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Enrollments")
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("instructor cannot unenroll a student", func(t *testing.T) {
		w := srv.do(t, http.MethodDelete, enrollmentPath, instructor, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = srv.do(t, http.MethodDelete, enrollmentPath, student, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
