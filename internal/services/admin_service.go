package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/models"

	"github.com/rs/zerolog"
)

type AdminConfig struct {
	UploadTick         time.Duration
	UploadStep         int
	UploadCap          int
	ProgressClearDelay time.Duration
}

func (c AdminConfig) withDefaults() AdminConfig {
	if c.UploadTick <= 0 {
		c.UploadTick = 200 * time.Millisecond
	}
	if c.UploadStep <= 0 {
		c.UploadStep = 10
	}
	if c.UploadCap <= 0 || c.UploadCap > 100 {
		c.UploadCap = 90
	}
	if c.ProgressClearDelay <= 0 {
		c.ProgressClearDelay = time.Second
	}
	return c
}

// UploadProgress is a simulated progress report for one upload target. It does not track bytes.
type UploadProgress struct {
	Target  string
	Percent int
	Cleared bool
}

type ProgressFunc func(UploadProgress)

// CourseFiles is a course's documents split by file type.
type CourseFiles struct {
	Behavior []models.UploadedFile
	Content  []models.UploadedFile
}

// AdminService manages the documents behind each assistant and course.
type AdminService struct {
	gateway   FileGateway
	validator UploadValidator
	logger    zerolog.Logger
	cfg       AdminConfig
	progress  ProgressFunc

	mu             sync.Mutex
	assistantFiles map[models.AssistantID][]models.UploadedFile
	courseFiles    map[string]CourseFiles
	uploads        map[string]int
	uploadSeq      map[string]uint64
}

func NewAdminService(gateway FileGateway, validator UploadValidator, logger zerolog.Logger, cfg AdminConfig, progress ProgressFunc) *AdminService {
	if progress == nil {
		progress = func(UploadProgress) {}
	}
	return &AdminService{
		gateway:        gateway,
		validator:      validator,
		logger:         logger.With().Str("component", "admin").Logger(),
		cfg:            cfg.withDefaults(),
		progress:       progress,
		assistantFiles: make(map[models.AssistantID][]models.UploadedFile),
		courseFiles:    make(map[string]CourseFiles),
		uploads:        make(map[string]int),
		uploadSeq:      make(map[string]uint64),
	}
}

func AssistantTarget(assistant models.AssistantID) string {
	return "assistant:" + string(assistant)
}

func CourseTarget(courseID string) string {
	return "course:" + courseID
}

// UploadAssistantFile validates the file at path and uploads it to the assistant's knowledge base.
func (s *AdminService) UploadAssistantFile(ctx context.Context, assistant models.AssistantID, path string) (*models.UploadedFile, error) {
	if !assistant.Valid() {
		return nil, ErrUnknownAssistant
	}
	info, err := s.validator.Check(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(info.Path)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Cannot read %s", info.Name))
	}
	defer f.Close()

	var uploaded *models.UploadedFile
	err = s.trackUpload(AssistantTarget(assistant), func() error {
		var uploadErr error
		uploaded, uploadErr = s.gateway.UploadAssistantFile(ctx, string(assistant), info.Name, f)
		return uploadErr
	})
	if err != nil {
		s.logger.Error().Err(err).Str("assistant", string(assistant)).Str("file", info.Name).Msg("Upload failed")
		return nil, err
	}

	s.logger.Info().Str("assistant", string(assistant)).Str("file", info.Name).Int("pages", info.Pages).Msg("File uploaded")
	s.reloadAssistant(ctx, assistant)
	return uploaded, nil
}

func (s *AdminService) ListAssistantFiles(ctx context.Context, assistant models.AssistantID) ([]models.UploadedFile, error) {
	list, err := s.gateway.ListAssistantFiles(ctx, string(assistant))
	if err != nil {
		return nil, err
	}
	files := filesOf(list)
	s.mu.Lock()
	s.assistantFiles[assistant] = files
	s.mu.Unlock()
	return files, nil
}

func (s *AdminService) DeleteAssistantFile(ctx context.Context, assistant models.AssistantID, fileName string) error {
	if err := s.gateway.DeleteAssistantFile(ctx, string(assistant), fileName); err != nil {
		s.logger.Error().Err(err).Str("assistant", string(assistant)).Str("file", fileName).Msg("Delete failed")
		return err
	}
	s.reloadAssistant(ctx, assistant)
	return nil
}

// LoadAll lists the files of every assistant. Assistants whose list failed are missing from the
// result and their errors are joined.
func (s *AdminService) LoadAll(ctx context.Context) (map[models.AssistantID][]models.UploadedFile, error) {
	out := make(map[models.AssistantID][]models.UploadedFile, len(models.Assistants))
	var errs []error
	for _, assistant := range models.Assistants {
		files, err := s.ListAssistantFiles(ctx, assistant)
		if err != nil {
			s.logger.Warn().Err(err).Str("assistant", string(assistant)).Msg("Failed to list files")
			errs = append(errs, fmt.Errorf("%s: %w", assistant, err))
			continue
		}
		out[assistant] = files
	}
	return out, errors.Join(errs...)
}

// UploadCourseFile uploads a course document. An empty fileType means content.
func (s *AdminService) UploadCourseFile(ctx context.Context, courseID, path string, fileType models.FileType) (*models.UploadedFile, error) {
	if fileType == "" {
		fileType = models.FileTypeContent
	}
	if !fileType.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid file type %q", fileType))
	}
	info, err := s.validator.Check(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(info.Path)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Cannot read %s", info.Name))
	}
	defer f.Close()

	var uploaded *models.UploadedFile
	err = s.trackUpload(CourseTarget(courseID), func() error {
		var uploadErr error
		uploaded, uploadErr = s.gateway.UploadCourseFile(ctx, courseID, info.Name, f, fileType)
		return uploadErr
	})
	if err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Str("file", info.Name).Msg("Upload failed")
		return nil, err
	}

	s.logger.Info().Str("course_id", courseID).Str("file", info.Name).Str("file_type", string(fileType)).Msg("Course file uploaded")
	s.reloadCourse(ctx, courseID)
	return uploaded, nil
}

func (s *AdminService) ListCourseFiles(ctx context.Context, courseID string) (CourseFiles, error) {
	list, err := s.gateway.ListCourseFiles(ctx, courseID)
	if err != nil {
		return CourseFiles{}, err
	}
	var files CourseFiles
	for _, f := range filesOf(list) {
		if f.EffectiveType() == models.FileTypeBehavior {
			files.Behavior = append(files.Behavior, f)
		} else {
			files.Content = append(files.Content, f)
		}
	}
	s.mu.Lock()
	s.courseFiles[courseID] = files
	s.mu.Unlock()
	return files, nil
}

func (s *AdminService) DeleteCourseFile(ctx context.Context, courseID, fileName string) error {
	if err := s.gateway.DeleteCourseFile(ctx, courseID, fileName); err != nil {
		s.logger.Error().Err(err).Str("course_id", courseID).Str("file", fileName).Msg("Delete failed")
		return err
	}
	s.reloadCourse(ctx, courseID)
	return nil
}

// DownloadAssistantFile saves the file into dir and returns the written path.
func (s *AdminService) DownloadAssistantFile(ctx context.Context, assistant models.AssistantID, fileName, dir string) (string, error) {
	d, err := s.gateway.DownloadAssistantFile(ctx, string(assistant), fileName)
	if err != nil {
		return "", err
	}
	return s.save(d, fileName, dir)
}

func (s *AdminService) DownloadCourseFile(ctx context.Context, courseID, fileName, dir string) (string, error) {
	d, err := s.gateway.DownloadCourseFile(ctx, courseID, fileName)
	if err != nil {
		return "", err
	}
	return s.save(d, fileName, dir)
}

func (s *AdminService) save(d *models.Download, fallback, dir string) (string, error) {
	name := filepath.Base(d.FileName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = filepath.Base(fallback)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, d.Data, 0o644); err != nil {
		return "", err
	}
	s.logger.Info().Str("path", path).Int("bytes", len(d.Data)).Msg("File downloaded")
	return path, nil
}

// Progress returns the current simulated progress for target.
func (s *AdminService) Progress(target string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.uploads[target]
	return p, ok
}

func (s *AdminService) AssistantFiles(assistant models.AssistantID) []models.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UploadedFile(nil), s.assistantFiles[assistant]...)
}

func (s *AdminService) CourseFiles(courseID string) CourseFiles {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.courseFiles[courseID]
}

// trackUpload runs upload while ticking simulated progress for target. Progress reaches 100 when
// upload returns, successful or not, and is cleared after the configured delay.
func (s *AdminService) trackUpload(target string, upload func() error) error {
	s.mu.Lock()
	s.uploadSeq[target]++
	seq := s.uploadSeq[target]
	s.mu.Unlock()
	s.report(target, 0, seq)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.cfg.UploadTick)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				next := s.uploads[target] + s.cfg.UploadStep
				s.mu.Unlock()
				if next > s.cfg.UploadCap {
					next = s.cfg.UploadCap
				}
				s.report(target, next, seq)
			}
		}
	}()

	err := upload()
	close(done)
	wg.Wait()
	s.report(target, 100, seq)

	time.AfterFunc(s.cfg.ProgressClearDelay, func() {
		s.mu.Lock()
		if s.uploadSeq[target] != seq {
			s.mu.Unlock()
			return
		}
		delete(s.uploads, target)
		s.mu.Unlock()
		s.progress(UploadProgress{Target: target, Cleared: true})
	})
	return err
}

func (s *AdminService) report(target string, percent int, seq uint64) {
	s.mu.Lock()
	if s.uploadSeq[target] != seq {
		s.mu.Unlock()
		return
	}
	s.uploads[target] = percent
	s.mu.Unlock()
	s.progress(UploadProgress{Target: target, Percent: percent})
}

func (s *AdminService) reloadAssistant(ctx context.Context, assistant models.AssistantID) {
	if _, err := s.ListAssistantFiles(ctx, assistant); err != nil {
		s.logger.Warn().Err(err).Str("assistant", string(assistant)).Msg("File list reload failed")
	}
}

func (s *AdminService) reloadCourse(ctx context.Context, courseID string) {
	if _, err := s.ListCourseFiles(ctx, courseID); err != nil {
		s.logger.Warn().Err(err).Str("course_id", courseID).Msg("File list reload failed")
	}
}

func filesOf(list *models.FileList) []models.UploadedFile {
	if list == nil {
		return nil
	}
	return append([]models.UploadedFile(nil), list.Files...)
}
