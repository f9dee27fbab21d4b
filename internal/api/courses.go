package api

import (
	"context"
	"net/http"
	"net/url"

	"lovedu_client/internal/models"
)

func (c *Client) Enroll(ctx context.Context, courseCode string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := c.call(ctx, http.MethodPost, "/course/enroll", models.EnrollRequest{CourseCode: courseCode}, &enrollment)
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (c *Client) MyCourses(ctx context.Context) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := c.call(ctx, http.MethodGet, "/course/my-courses", nil, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.call(ctx, http.MethodGet, "/course/list", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *Client) CreateCourse(ctx context.Context, input models.CourseInput) (*models.Course, error) {
	var course models.Course
	if err := c.call(ctx, http.MethodPost, "/course/create", input, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) UpdateCourse(ctx context.Context, courseID string, input models.CourseInput) (*models.Course, error) {
	var course models.Course
	if err := c.call(ctx, http.MethodPut, "/course/"+url.PathEscape(courseID), input, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteCourse deactivates the course; the backend keeps the record.
func (c *Client) DeleteCourse(ctx context.Context, courseID string) error {
	return c.call(ctx, http.MethodDelete, "/course/"+url.PathEscape(courseID), nil, nil)
}
