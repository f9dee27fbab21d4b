package services

import (
	"context"
	"strings"
	"sync"

	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/models"

	"github.com/rs/zerolog"
)

// CourseService manages the course catalogue. Mutations reload the cached list.
type CourseService struct {
	gateway CourseGateway
	logger  zerolog.Logger

	mu      sync.RWMutex
	courses []models.Course
}

func NewCourseService(gateway CourseGateway, logger zerolog.Logger) *CourseService {
	return &CourseService{
		gateway: gateway,
		logger:  logger.With().Str("component", "courses").Logger(),
	}
}

// ListAll loads every course.
func (s *CourseService) ListAll(ctx context.Context) ([]models.Course, error) {
	courses, err := s.gateway.ListCourses(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load courses")
		return nil, err
	}
	s.mu.Lock()
	s.courses = courses
	s.mu.Unlock()
	return append([]models.Course(nil), courses...), nil
}

func (s *CourseService) Courses() []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Course(nil), s.courses...)
}

func (s *CourseService) MyCourses(ctx context.Context) ([]models.Enrollment, error) {
	return s.gateway.MyCourses(ctx)
}

// AvailableCourses lists active courses the user is not enrolled in. When enrollments cannot be
// loaded every active course is offered.
func (s *CourseService) AvailableCourses(ctx context.Context) ([]models.Course, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	enrolled := map[string]bool{}
	enrollments, err := s.gateway.MyCourses(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load enrollments")
	}
	for _, e := range enrollments {
		enrolled[e.CourseID] = true
		if e.Course.ID != "" {
			enrolled[e.Course.ID] = true
		}
	}

	var available []models.Course
	for _, course := range all {
		if course.Active() && !enrolled[course.ID] {
			available = append(available, course)
		}
	}
	return available, nil
}

func (s *CourseService) Create(ctx context.Context, input models.CourseInput) (*models.Course, error) {
	input.Code = strings.TrimSpace(input.Code)
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Code == "" {
		return nil, apperrors.NewValidationError("Course code is required")
	}
	if input.Name == "" {
		return nil, apperrors.NewValidationError("Course name is required")
	}

	course, err := s.gateway.CreateCourse(ctx, input)
	if err != nil {
		s.logger.Error().Err(err).Str("code", input.Code).Msg("Failed to create course")
		return nil, err
	}
	s.logger.Info().Str("course_id", course.ID).Str("code", course.Code).Msg("Course created")
	s.reload(ctx)
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, courseID string, input models.CourseInput) (*models.Course, error) {
	course, err := s.gateway.UpdateCourse(ctx, courseID, input)
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to update course")
		return nil, err
	}
	s.reload(ctx)
	return course, nil
}

// Delete deactivates a course server-side.
func (s *CourseService) Delete(ctx context.Context, courseID string) error {
	if err := s.gateway.DeleteCourse(ctx, courseID); err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to delete course")
		return err
	}
	s.reload(ctx)
	return nil
}

func (s *CourseService) reload(ctx context.Context) {
	if _, err := s.ListAll(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Course list reload failed")
	}
}
