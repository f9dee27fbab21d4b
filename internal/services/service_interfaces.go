package services

import (
	"context"
	"io"

	"lovedu_client/internal/i18n"
	"lovedu_client/internal/models"
	"lovedu_client/internal/utils/pdfcheck"
)

type ChatGateway interface {
	SendMessage(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error)
	ListSessions(ctx context.Context) ([]models.ChatSession, error)
	GetSession(ctx context.Context, sessionID string) (*models.SessionDetail, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Enroll(ctx context.Context, courseCode string) (*models.Enrollment, error)
}

type CourseGateway interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	MyCourses(ctx context.Context) ([]models.Enrollment, error)
	CreateCourse(ctx context.Context, input models.CourseInput) (*models.Course, error)
	UpdateCourse(ctx context.Context, courseID string, input models.CourseInput) (*models.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error
}

type FileGateway interface {
	UploadAssistantFile(ctx context.Context, assistantID, fileName string, file io.Reader) (*models.UploadedFile, error)
	ListAssistantFiles(ctx context.Context, assistantID string) (*models.FileList, error)
	DeleteAssistantFile(ctx context.Context, assistantID, fileName string) error
	DownloadAssistantFile(ctx context.Context, assistantID, fileName string) (*models.Download, error)
	UploadCourseFile(ctx context.Context, courseID, fileName string, file io.Reader, fileType models.FileType) (*models.UploadedFile, error)
	ListCourseFiles(ctx context.Context, courseID string) (*models.FileList, error)
	DeleteCourseFile(ctx context.Context, courseID, fileName string) error
	DownloadCourseFile(ctx context.Context, courseID, fileName string) (*models.Download, error)
}

type SubscriptionGateway interface {
	Plan(ctx context.Context) (*models.PlanInfo, error)
	UpgradePlan(ctx context.Context, tier models.PlanTier) (*models.PlanInfo, error)
	DowngradePlan(ctx context.Context) (*models.PlanInfo, error)
}

type Translator interface {
	T(lang i18n.Lang, key string) string
	List(lang i18n.Lang, key string) []string
}

type UploadValidator interface {
	Check(path string) (*pdfcheck.Info, error)
}
