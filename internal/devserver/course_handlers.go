package devserver

import (
	"net/http"
	"sort"
	"strings"

	"lovedu_client/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) enroll(c *gin.Context) {
	var req models.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CourseCode) == "" {
		abortDetail(c, http.StatusBadRequest, "Course code is required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc := currentAccount(c)
	course, ok := s.state.courseByCode(strings.TrimSpace(req.CourseCode))
	if !ok || !course.Active() {
		abortDetail(c, http.StatusNotFound, "Course not found")
		return
	}
	if s.state.enrolled(acc.user.ID, course.ID) {
		abortDetail(c, http.StatusBadRequest, "Already enrolled in this course")
		return
	}

	e := enrollment{id: uuid.NewString(), courseID: course.ID, enrolledAt: s.state.now()}
	s.state.enrollments[acc.user.ID] = append(s.state.enrollments[acc.user.ID], e)
	s.state.newSession(acc.user.ID, models.DefaultAssistant, course)
	c.JSON(http.StatusOK, s.state.enrollmentView(e))
}

func (s *Server) myCourses(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	out := []models.Enrollment{}
	for _, e := range s.state.enrollments[currentAccount(c).user.ID] {
		out = append(out, s.state.enrollmentView(e))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listCourses(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	out := []models.Course{}
	for _, course := range s.state.courses {
		out = append(out, *course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	c.JSON(http.StatusOK, out)
}

func (s *Server) createCourse(c *gin.Context) {
	var req models.CourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Code, req.Name = strings.TrimSpace(req.Code), strings.TrimSpace(req.Name)
	if req.Code == "" || req.Name == "" {
		abortDetail(c, http.StatusBadRequest, "Course code and name are required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, exists := s.state.courseByCode(req.Code); exists {
		abortDetail(c, http.StatusBadRequest, "Course code already exists")
		return
	}
	course := s.state.addCourse(req.Code, req.Name, req.Description)
	c.JSON(http.StatusOK, course)
}

func (s *Server) updateCourse(c *gin.Context) {
	var req models.CourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	course, ok := s.state.courses[c.Param("id")]
	if !ok {
		abortDetail(c, http.StatusNotFound, "Course not found")
		return
	}
	if code := strings.TrimSpace(req.Code); code != "" && !strings.EqualFold(code, course.Code) {
		if _, exists := s.state.courseByCode(code); exists {
			abortDetail(c, http.StatusBadRequest, "Course code already exists")
			return
		}
		course.Code = code
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		course.Name = name
	}
	if req.Description != "" {
		course.Description = req.Description
	}
	c.JSON(http.StatusOK, course)
}

// deleteCourse deactivates the course; enrollments and sessions are kept.
func (s *Server) deleteCourse(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	course, ok := s.state.courses[c.Param("id")]
	if !ok {
		abortDetail(c, http.StatusNotFound, "Course not found")
		return
	}
	inactive := false
	course.IsActive = &inactive
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}
