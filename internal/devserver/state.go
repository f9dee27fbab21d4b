package devserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"lovedu_client/internal/models"

	"github.com/google/uuid"
)

type account struct {
	user     models.User
	password string
	plan     models.PlanTier
}

type session struct {
	meta     models.ChatSession
	messages []models.ChatMessage
}

type storedFile struct {
	meta models.UploadedFile
	data []byte
}

type enrollment struct {
	id         string
	courseID   string
	enrolledAt time.Time
}

// state is the whole in-memory backend. Every handler takes the lock for the duration of its work.
type state struct {
	mu            sync.Mutex
	now           func() time.Time
	accounts      map[string]*account
	emails        map[string]string
	refreshTokens map[string]string
	sessions      map[string]*session
	courses       map[string]*models.Course
	enrollments   map[string][]enrollment
	files         map[string][]storedFile
}

func newState(now func() time.Time) *state {
	return &state{
		now:           now,
		accounts:      make(map[string]*account),
		emails:        make(map[string]string),
		refreshTokens: make(map[string]string),
		sessions:      make(map[string]*session),
		courses:       make(map[string]*models.Course),
		enrollments:   make(map[string][]enrollment),
		files:         make(map[string][]storedFile),
	}
}

func (s *state) addAccount(email, password string, metadata map[string]any) *account {
	if metadata == nil {
		metadata = map[string]any{}
	}
	acc := &account{
		user: models.User{
			ID:            uuid.NewString(),
			Email:         email,
			EmailVerified: true,
			CreatedAt:     models.NewTimestamp(s.now()),
			UserMetadata:  metadata,
		},
		password: password,
		plan:     models.PlanFree,
	}
	s.accounts[acc.user.ID] = acc
	s.emails[strings.ToLower(email)] = acc.user.ID
	return acc
}

func (s *state) accountByEmail(email string) (*account, bool) {
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, false
	}
	return s.accounts[id], true
}

func (s *state) addCourse(code, name, description string) *models.Course {
	active := true
	course := &models.Course{
		ID:          uuid.NewString(),
		Code:        code,
		Name:        name,
		Description: description,
		IsActive:    &active,
	}
	s.courses[course.ID] = course
	return course
}

func (s *state) courseByCode(code string) (*models.Course, bool) {
	for _, course := range s.courses {
		if strings.EqualFold(course.Code, code) {
			return course, true
		}
	}
	return nil, false
}

func (s *state) newSession(userID string, assistant models.AssistantID, course *models.Course) *session {
	now := models.NewTimestamp(s.now())
	sess := &session{meta: models.ChatSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		AssistantID: assistant,
		CreatedAt:   now,
		UpdatedAt:   now,
	}}
	if course != nil {
		sess.meta.CourseID = course.ID
		sess.meta.CourseName = course.Name
	}
	s.sessions[sess.meta.ID] = sess
	return sess
}

func (s *state) userSession(userID, sessionID string) (*session, bool) {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.meta.UserID != userID {
		return nil, false
	}
	return sess, true
}

// userSessions lists a user's sessions, most recently updated first.
func (s *state) userSessions(userID string) []models.ChatSession {
	out := []models.ChatSession{}
	for _, sess := range s.sessions {
		if sess.meta.UserID == userID {
			out = append(out, sess.meta)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt.Time)
	})
	return out
}

func (s *state) enrolled(userID, courseID string) bool {
	for _, e := range s.enrollments[userID] {
		if e.courseID == courseID {
			return true
		}
	}
	return false
}

func (s *state) enrollmentView(e enrollment) models.Enrollment {
	view := models.Enrollment{ID: e.id, CourseID: e.courseID, EnrolledAt: models.NewTimestamp(e.enrolledAt)}
	if course, ok := s.courses[e.courseID]; ok {
		view.Course = *course
	}
	return view
}

func (s *state) fileList(target string) models.FileList {
	files := []models.UploadedFile{}
	for _, f := range s.files[target] {
		files = append(files, f.meta)
	}
	return models.FileList{Files: files, Total: len(files)}
}

func (s *state) findFile(target, name string) (int, bool) {
	for i, f := range s.files[target] {
		if f.meta.FileName == name {
			return i, true
		}
	}
	return -1, false
}

// putFile stores data under target, replacing a file of the same name.
func (s *state) putFile(target string, meta models.UploadedFile, data []byte) models.UploadedFile {
	size := int64(len(data))
	meta.ID = uuid.NewString()
	meta.FileSize = &size
	meta.UploadedAt = models.NewTimestamp(s.now())
	if i, ok := s.findFile(target, meta.FileName); ok {
		s.files[target][i] = storedFile{meta: meta, data: data}
		return meta
	}
	s.files[target] = append(s.files[target], storedFile{meta: meta, data: data})
	return meta
}

func (s *state) removeFile(target, name string) bool {
	i, ok := s.findFile(target, name)
	if !ok {
		return false
	}
	s.files[target] = append(s.files[target][:i], s.files[target][i+1:]...)
	return true
}
