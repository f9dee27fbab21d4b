package services_test

import (
	"context"
	"io"

	"lovedu_client/internal/models"
	"lovedu_client/internal/utils/pdfcheck"

	"github.com/stretchr/testify/mock"
)

type MockChatGateway struct {
	mock.Mock
}

func (m *MockChatGateway) SendMessage(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SendMessageResponse), args.Error(1)
}

func (m *MockChatGateway) ListSessions(ctx context.Context) ([]models.ChatSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatSession), args.Error(1)
}

func (m *MockChatGateway) GetSession(ctx context.Context, sessionID string) (*models.SessionDetail, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionDetail), args.Error(1)
}

func (m *MockChatGateway) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockChatGateway) Enroll(ctx context.Context, courseCode string) (*models.Enrollment, error) {
	args := m.Called(ctx, courseCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Enrollment), args.Error(1)
}

type MockCourseGateway struct {
	mock.Mock
}

func (m *MockCourseGateway) ListCourses(ctx context.Context) ([]models.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Course), args.Error(1)
}

func (m *MockCourseGateway) MyCourses(ctx context.Context) ([]models.Enrollment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Enrollment), args.Error(1)
}

func (m *MockCourseGateway) CreateCourse(ctx context.Context, input models.CourseInput) (*models.Course, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseGateway) UpdateCourse(ctx context.Context, courseID string, input models.CourseInput) (*models.Course, error) {
	args := m.Called(ctx, courseID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseGateway) DeleteCourse(ctx context.Context, courseID string) error {
	args := m.Called(ctx, courseID)
	return args.Error(0)
}

type MockFileGateway struct {
	mock.Mock
}

func (m *MockFileGateway) UploadAssistantFile(ctx context.Context, assistantID, fileName string, file io.Reader) (*models.UploadedFile, error) {
	args := m.Called(ctx, assistantID, fileName, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadedFile), args.Error(1)
}

func (m *MockFileGateway) ListAssistantFiles(ctx context.Context, assistantID string) (*models.FileList, error) {
	args := m.Called(ctx, assistantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FileList), args.Error(1)
}

func (m *MockFileGateway) DeleteAssistantFile(ctx context.Context, assistantID, fileName string) error {
	args := m.Called(ctx, assistantID, fileName)
	return args.Error(0)
}

func (m *MockFileGateway) DownloadAssistantFile(ctx context.Context, assistantID, fileName string) (*models.Download, error) {
	args := m.Called(ctx, assistantID, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Download), args.Error(1)
}

func (m *MockFileGateway) UploadCourseFile(ctx context.Context, courseID, fileName string, file io.Reader, fileType models.FileType) (*models.UploadedFile, error) {
	args := m.Called(ctx, courseID, fileName, file, fileType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadedFile), args.Error(1)
}

func (m *MockFileGateway) ListCourseFiles(ctx context.Context, courseID string) (*models.FileList, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FileList), args.Error(1)
}

func (m *MockFileGateway) DeleteCourseFile(ctx context.Context, courseID, fileName string) error {
	args := m.Called(ctx, courseID, fileName)
	return args.Error(0)
}

func (m *MockFileGateway) DownloadCourseFile(ctx context.Context, courseID, fileName string) (*models.Download, error) {
	args := m.Called(ctx, courseID, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Download), args.Error(1)
}

type MockSubscriptionGateway struct {
	mock.Mock
}

func (m *MockSubscriptionGateway) Plan(ctx context.Context) (*models.PlanInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlanInfo), args.Error(1)
}

func (m *MockSubscriptionGateway) UpgradePlan(ctx context.Context, tier models.PlanTier) (*models.PlanInfo, error) {
	args := m.Called(ctx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlanInfo), args.Error(1)
}

func (m *MockSubscriptionGateway) DowngradePlan(ctx context.Context) (*models.PlanInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlanInfo), args.Error(1)
}

type MockUploadValidator struct {
	mock.Mock
}

func (m *MockUploadValidator) Check(path string) (*pdfcheck.Info, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pdfcheck.Info), args.Error(1)
}
