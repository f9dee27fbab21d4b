package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/i18n"
	"lovedu_client/internal/models"
	"lovedu_client/internal/utils/broker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RefreshKey is the event key published on broker.TopicSessions whenever the session list changed.
const RefreshKey = "refresh"

var (
	ErrEmptyMessage     = apperrors.NewValidationError("Message is empty")
	ErrSendInProgress   = apperrors.NewValidationError("A message is already being sent")
	ErrUnknownAssistant = apperrors.NewValidationError("Unknown assistant")
)

type ChatConfig struct {
	ErrorBannerTTL   time.Duration
	Mode             string
	DefaultAssistant models.AssistantID
}

func (c ChatConfig) withDefaults() ChatConfig {
	if c.ErrorBannerTTL <= 0 {
		c.ErrorBannerTTL = 5 * time.Second
	}
	if c.Mode == "" {
		c.Mode = models.ChatModeGPT
	}
	if !c.DefaultAssistant.Valid() {
		c.DefaultAssistant = models.DefaultAssistant
	}
	return c
}

// ChatSessionService holds the view-state of the chat screen. Every operation that replaces the
// conversation bumps the generation; results of calls started under an older generation are dropped.
// The mutex is never held across a gateway call.
type ChatSessionService struct {
	gateway    ChatGateway
	translator Translator
	broker     *broker.Broker
	logger     zerolog.Logger
	cfg        ChatConfig
	now        func() time.Time

	mu         sync.Mutex
	lang       i18n.Lang
	generation uint64
	messages   []models.ChatMessage
	sessionID  string
	assistant  models.AssistantID
	courseID   string
	courseName string
	sessions   []models.ChatSession
	loading    bool
	loadingGen uint64
	banner     string
	bannerSeq  uint64
	refresh    int
}

func NewChatSessionService(gateway ChatGateway, translator Translator, b *broker.Broker, logger zerolog.Logger, lang i18n.Lang, cfg ChatConfig) *ChatSessionService {
	cfg = cfg.withDefaults()
	if !lang.Valid() {
		lang = i18n.Default
	}
	s := &ChatSessionService{
		gateway:    gateway,
		translator: translator,
		broker:     b,
		logger:     logger.With().Str("component", "chat").Logger(),
		cfg:        cfg,
		now:        time.Now,
		lang:       lang,
		assistant:  cfg.DefaultAssistant,
	}
	s.messages = []models.ChatMessage{s.welcomeLocked(string(s.assistant))}
	return s
}

// Initialize opens the most recent session, or a welcome screen when there is none.
func (s *ChatSessionService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	gen := s.advanceLocked()
	s.loading, s.loadingGen = true, gen
	s.mu.Unlock()
	defer s.finishLoading(gen)

	sessions, err := s.gateway.ListSessions(ctx)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.staleLocked(gen, "list sessions") {
			return err
		}
		s.logger.Error().Err(err).Msg("Failed to load chat sessions")
		s.resetLocked(string(s.assistant))
		return err
	}

	s.mu.Lock()
	if s.staleLocked(gen, "list sessions") {
		s.mu.Unlock()
		return nil
	}
	s.sessions = sessions
	if len(sessions) == 0 {
		s.resetLocked(string(s.assistant))
		s.mu.Unlock()
		return nil
	}

	latest := sessions[0]
	if latest.ID == "" {
		s.resetLocked(string(s.assistant))
		s.mu.Unlock()
		return nil
	}
	s.adoptLocked(latest)
	s.mu.Unlock()

	detail, err := s.gateway.GetSession(ctx, latest.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleLocked(gen, "session detail") {
		return err
	}
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", latest.ID).Msg("Failed to load latest session")
		s.sessionID = ""
		s.messages = []models.ChatMessage{s.welcomeLocked(s.welcomeKeyLocked())}
		return err
	}

	s.applyDetailLocked(latest.ID, detail)
	if len(s.messages) == 0 {
		s.messages = []models.ChatMessage{s.welcomeLocked(s.welcomeKeyLocked())}
	}
	return nil
}

// Send appends the user's message optimistically and then the assistant's reply. A failed send keeps
// the user's message and raises the error banner.
func (s *ChatSessionService) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrSendInProgress
	}
	gen := s.generation
	s.loading, s.loadingGen = true, gen
	s.messages = append(s.messages, models.ChatMessage{
		ID:        "user-" + uuid.NewString(),
		Content:   text,
		Role:      models.RoleUser,
		Timestamp: models.NewTimestamp(s.now()),
	})
	req := models.SendMessageRequest{
		Message:     text,
		AssistantID: s.assistant,
		Mode:        s.cfg.Mode,
	}
	if s.sessionID != "" {
		id := s.sessionID
		req.ChatSessionID = &id
	}
	if s.courseID != "" {
		id := s.courseID
		req.CourseID = &id
	}
	s.mu.Unlock()

	resp, err := s.gateway.SendMessage(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadingGen == gen {
		s.loading = false
	}
	if err != nil {
		if s.staleLocked(gen, "send") {
			return err
		}
		s.logger.Error().Err(err).Str("assistant", string(req.AssistantID)).Msg("Failed to send message")
		s.showBannerLocked(apperrors.FriendlyMessage(err))
		return err
	}
	if resp == nil {
		return apperrors.NewMalformedResponseError(0, "", nil)
	}

	created := req.ChatSessionID == nil && resp.ChatSessionID != ""
	if created {
		s.bumpRefreshLocked()
	}
	if s.staleLocked(gen, "send") {
		return nil
	}
	if created {
		s.sessionID = resp.ChatSessionID
	}

	reply := resp.Message
	if reply.Role == "" {
		reply.Role = models.RoleAssistant
	}
	if reply.Timestamp.IsZero() {
		reply.Timestamp = models.NewTimestamp(s.now())
	}
	s.messages = append(s.messages, reply)
	return nil
}

// SelectSession replaces the conversation with a stored session.
func (s *ChatSessionService) SelectSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	gen := s.advanceLocked()
	s.loading, s.loadingGen = true, gen
	s.mu.Unlock()
	defer s.finishLoading(gen)

	detail, err := s.gateway.GetSession(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleLocked(gen, "select session") {
		return err
	}
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to load chat session")
		s.showBannerLocked(s.translator.T(s.lang, "chat.errors.failedToLoadSession"))
		return err
	}

	s.clearBannerLocked()
	s.applyDetailLocked(sessionID, detail)
	return nil
}

// NewChat starts an unsaved conversation with the selected assistant.
func (s *ChatSessionService) NewChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked()
	s.loading = false
	s.clearBannerLocked()
	s.resetLocked(string(s.assistant))
}

// SelectAssistant switches persona. Leaving a saved or course-scoped conversation starts a new chat.
func (s *ChatSessionService) SelectAssistant(assistant models.AssistantID) error {
	if !assistant.Valid() {
		return ErrUnknownAssistant
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if assistant == s.assistant && s.courseID == "" {
		return nil
	}

	s.assistant = assistant
	if s.sessionID != "" || s.courseID != "" {
		s.advanceLocked()
		s.loading = false
		s.clearBannerLocked()
		s.resetLocked(string(assistant))
		return nil
	}
	s.refreshWelcomeLocked()
	return nil
}

// SetLanguage re-renders an untouched welcome screen in lang.
func (s *ChatSessionService) SetLanguage(lang i18n.Lang) {
	if !lang.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = lang
	s.refreshWelcomeLocked()
}

// EnrollCourse enrolls by course code and, on success, opens the course's chat session.
func (s *ChatSessionService) EnrollCourse(ctx context.Context, code string) (*models.Enrollment, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		s.mu.Lock()
		msg := s.translator.T(s.lang, "course.codeRequired")
		s.mu.Unlock()
		return nil, apperrors.NewValidationError(msg)
	}

	enrollment, err := s.gateway.Enroll(ctx, code)
	if err != nil {
		s.logger.Warn().Err(err).Str("course_code", code).Msg("Enrollment failed")
		return nil, err
	}

	s.mu.Lock()
	s.bumpRefreshLocked()
	s.mu.Unlock()

	courseID := enrollment.CourseID
	if courseID == "" {
		courseID = enrollment.Course.ID
	}
	s.logger.Info().Str("course_code", code).Str("course_id", courseID).Msg("Enrolled in course")

	sessions, err := s.Sessions(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to reload sessions after enrollment")
		return enrollment, nil
	}
	for _, session := range sessions {
		if courseID != "" && session.CourseID == courseID {
			if err := s.SelectSession(ctx, session.ID); err != nil {
				s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to open course session")
			}
			break
		}
	}
	return enrollment, nil
}

// OpenCourse opens the chat session of an enrolled course. It reports false when no such session
// exists even after reloading the list.
func (s *ChatSessionService) OpenCourse(ctx context.Context, courseID string) (bool, error) {
	session, ok := s.findCourseSession(s.CachedSessions(), courseID)
	if !ok {
		sessions, err := s.Sessions(ctx)
		if err != nil {
			return false, err
		}
		if session, ok = s.findCourseSession(sessions, courseID); !ok {
			return false, nil
		}
	}
	if err := s.SelectSession(ctx, session.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ChatSessionService) findCourseSession(sessions []models.ChatSession, courseID string) (models.ChatSession, bool) {
	for _, session := range sessions {
		if session.CourseID == courseID {
			return session, true
		}
	}
	return models.ChatSession{}, false
}

// Sessions reloads the session list.
func (s *ChatSessionService) Sessions(ctx context.Context) ([]models.ChatSession, error) {
	sessions, err := s.gateway.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()
	return append([]models.ChatSession(nil), sessions...), nil
}

func (s *ChatSessionService) CachedSessions() []models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatSession(nil), s.sessions...)
}

// FilterSessions matches the cached list by course name or localized assistant name.
func (s *ChatSessionService) FilterSessions(query string) []models.ChatSession {
	query = strings.ToLower(strings.TrimSpace(query))
	s.mu.Lock()
	defer s.mu.Unlock()
	if query == "" {
		return append([]models.ChatSession(nil), s.sessions...)
	}

	var out []models.ChatSession
	for _, session := range s.sessions {
		if strings.Contains(strings.ToLower(session.CourseName), query) ||
			strings.Contains(strings.ToLower(s.assistantNameLocked(session.AssistantID)), query) {
			out = append(out, session)
		}
	}
	return out
}

// DeleteSession removes a stored session. Deleting the open one falls back to a new chat.
func (s *ChatSessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.gateway.DeleteSession(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to delete session")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]models.ChatSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		if session.ID != sessionID {
			kept = append(kept, session)
		}
	}
	s.sessions = kept
	s.bumpRefreshLocked()
	if s.sessionID == sessionID {
		s.advanceLocked()
		s.loading = false
		s.resetLocked(string(s.assistant))
	}
	return nil
}

// Suggestions are the starter prompts for the current assistant or course.
func (s *ChatSessionService) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if list := s.translator.List(s.lang, "chat.suggestions."+s.welcomeKeyLocked()); len(list) > 0 {
		return list
	}
	return s.translator.List(s.lang, "chat.suggestions."+string(models.AssistantTypeX))
}

func (s *ChatSessionService) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.courseName != "" {
		return s.courseName
	}
	return s.assistantNameLocked(s.assistant)
}

func (s *ChatSessionService) AssistantName(assistant models.AssistantID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assistantNameLocked(assistant)
}

// IsWelcomeOnly reports whether the conversation is just the welcome placeholder.
func (s *ChatSessionService) IsWelcomeOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.welcomeOnlyLocked()
}

func (s *ChatSessionService) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

func (s *ChatSessionService) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *ChatSessionService) Assistant() models.AssistantID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assistant
}

// Course returns the course context; both values are empty outside a course chat.
func (s *ChatSessionService) Course() (id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.courseID, s.courseName
}

func (s *ChatSessionService) Banner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

func (s *ChatSessionService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *ChatSessionService) RefreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *ChatSessionService) Subscribe() <-chan broker.Event {
	return s.broker.Subscribe(broker.TopicSessions)
}

func (s *ChatSessionService) Unsubscribe(ch <-chan broker.Event) {
	s.broker.Unsubscribe(broker.TopicSessions, ch)
}

func (s *ChatSessionService) advanceLocked() uint64 {
	s.generation++
	return s.generation
}

func (s *ChatSessionService) staleLocked(gen uint64, op string) bool {
	if gen == s.generation {
		return false
	}
	s.logger.Debug().Str("op", op).Uint64("generation", gen).Uint64("current", s.generation).Msg("Discarding stale result")
	return true
}

func (s *ChatSessionService) finishLoading(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadingGen == gen {
		s.loading = false
	}
}

// adoptLocked takes assistant and course context from a list entry before its detail arrives.
func (s *ChatSessionService) adoptLocked(session models.ChatSession) {
	if session.AssistantID.Valid() {
		s.assistant = session.AssistantID
	}
	if session.HasCourse() {
		s.courseID, s.courseName = session.CourseID, session.CourseName
	} else {
		s.courseID, s.courseName = "", ""
	}
}

func (s *ChatSessionService) applyDetailLocked(requestedID string, detail *models.SessionDetail) {
	if detail == nil {
		detail = &models.SessionDetail{}
	}
	s.sessionID = detail.Session.ID
	if s.sessionID == "" {
		s.sessionID = requestedID
	}
	s.adoptLocked(detail.Session)
	s.messages = append([]models.ChatMessage(nil), detail.Messages...)
}

func (s *ChatSessionService) resetLocked(welcomeKey string) {
	s.sessionID = ""
	s.courseID, s.courseName = "", ""
	s.messages = []models.ChatMessage{s.welcomeLocked(welcomeKey)}
}

func (s *ChatSessionService) welcomeKeyLocked() string {
	if s.courseID != "" {
		return models.CourseAssistantKey
	}
	return string(s.assistant)
}

func (s *ChatSessionService) welcomeLocked(key string) models.ChatMessage {
	return models.NewWelcomeMessage(s.welcomeTextLocked(key), s.now())
}

func (s *ChatSessionService) welcomeTextLocked(key string) string {
	lookup := "chat.welcomeMessages." + key
	if text := s.translator.T(s.lang, lookup); text != lookup {
		return text
	}
	return s.translator.T(s.lang, "chat.welcome")
}

func (s *ChatSessionService) welcomeOnlyLocked() bool {
	return len(s.messages) == 1 && s.messages[0].IsWelcome()
}

// refreshWelcomeLocked rewrites the welcome text in place. Real conversations are left alone.
func (s *ChatSessionService) refreshWelcomeLocked() {
	if !s.welcomeOnlyLocked() {
		return
	}
	s.messages[0].Content = s.welcomeTextLocked(s.welcomeKeyLocked())
}

func (s *ChatSessionService) assistantNameLocked(assistant models.AssistantID) string {
	key := "chat.assistants." + string(assistant)
	if name := s.translator.T(s.lang, key); name != key {
		return name
	}
	return s.translator.T(s.lang, "chat.assistants."+string(models.AssistantTypeX))
}

func (s *ChatSessionService) bumpRefreshLocked() {
	s.refresh++
	s.broker.Publish(broker.Event{Topic: broker.TopicSessions, Key: RefreshKey, Value: strconv.Itoa(s.refresh)})
}

func (s *ChatSessionService) showBannerLocked(message string) {
	s.bannerSeq++
	seq := s.bannerSeq
	s.banner = message
	time.AfterFunc(s.cfg.ErrorBannerTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.bannerSeq == seq {
			s.banner = ""
		}
	})
}

func (s *ChatSessionService) clearBannerLocked() {
	s.bannerSeq++
	s.banner = ""
}
