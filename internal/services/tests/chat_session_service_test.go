package services_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/i18n"
	"lovedu_client/internal/models"
	"lovedu_client/internal/services"
	"lovedu_client/internal/utils/broker"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newChatService(t *testing.T, gw *MockChatGateway) (*services.ChatSessionService, *i18n.Translator) {
	t.Helper()
	translator, err := i18n.NewTranslator()
	require.NoError(t, err)
	svc := services.NewChatSessionService(gw, translator, broker.NewBroker(), zerolog.Nop(), i18n.English, services.ChatConfig{
		ErrorBannerTTL: 50 * time.Millisecond,
	})
	return svc, translator
}

func noSession(req models.SendMessageRequest) bool {
	return req.ChatSessionID == nil
}

func withSession(id string) func(models.SendMessageRequest) bool {
	return func(req models.SendMessageRequest) bool {
		return req.ChatSessionID != nil && *req.ChatSessionID == id
	}
}

func reply(sessionID, content string) *models.SendMessageResponse {
	return &models.SendMessageResponse{
		ChatSessionID: sessionID,
		Message:       models.ChatMessage{ID: "m-" + content, Content: content, Role: models.RoleAssistant},
	}
}

func TestSendCreatesSession(t *testing.T) {
	gw := new(MockChatGateway)
	svc, _ := newChatService(t, gw)
	ctx := context.Background()
	events := svc.Subscribe()

	gw.On("SendMessage", mock.Anything, mock.MatchedBy(func(req models.SendMessageRequest) bool {
		return noSession(req) && req.CourseID == nil && req.Mode == models.ChatModeGPT && req.AssistantID == models.AssistantTypeX && req.Message == "What is my GPA?"
	})).Return(reply("s-1", "Let me check."), nil).Once()
	gw.On("SendMessage", mock.Anything, mock.MatchedBy(withSession("s-1"))).Return(reply("s-1", "Anything else?"), nil).Once()

	require.NoError(t, svc.Send(ctx, "  What is my GPA?  "))

	assert.Equal(t, "s-1", svc.SessionID())
	assert.Equal(t, 1, svc.RefreshCount())
	msgs := svc.Messages()
	require.Len(t, msgs, 3)
	assert.True(t, msgs[0].IsWelcome())
	assert.Equal(t, models.RoleUser, msgs[1].Role)
	assert.Regexp(t, `^user-[0-9a-f-]{36}$`, msgs[1].ID)
	assert.Equal(t, "Let me check.", msgs[2].Content)

	select {
	case ev := <-events:
		assert.Equal(t, services.RefreshKey, ev.Key)
		assert.Equal(t, "1", ev.Value)
	default:
		t.Fatal("expected a refresh event")
	}

	require.NoError(t, svc.Send(ctx, "thanks"))
	assert.Equal(t, 1, svc.RefreshCount())
	assert.Len(t, svc.Messages(), 5)
	assert.False(t, svc.Loading())
	gw.AssertExpectations(t)
}

func TestSendFailureKeepsMessage(t *testing.T) {
	gw := new(MockChatGateway)
	svc, _ := newChatService(t, gw)

	netErr := apperrors.NewNetworkError(errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"))
	gw.On("SendMessage", mock.Anything, mock.MatchedBy(noSession)).Return(nil, netErr).Once()

	err := svc.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))

	msgs := svc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[1].Content)
	assert.Empty(t, svc.SessionID())
	assert.Equal(t, 0, svc.RefreshCount())
	assert.False(t, svc.Loading())
	assert.Equal(t, "Connection error. Please check your internet connection and try again.", svc.Banner())

	assert.Eventually(t, func() bool { return svc.Banner() == "" }, time.Second, 10*time.Millisecond)
	gw.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestSendRejectsBlankInput(t *testing.T) {
	gw := new(MockChatGateway)
	svc, _ := newChatService(t, gw)

	assert.ErrorIs(t, svc.Send(context.Background(), "   "), services.ErrEmptyMessage)
	assert.Len(t, svc.Messages(), 1)
	gw.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("No sessions", func(t *testing.T) {
		gw := new(MockChatGateway)
		svc, translator := newChatService(t, gw)
		gw.On("ListSessions", mock.Anything).Return([]models.ChatSession{}, nil).Once()

		require.NoError(t, svc.Initialize(ctx))
		msgs := svc.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, translator.T(i18n.English, "chat.welcomeMessages.typeX"), msgs[0].Content)
		assert.Empty(t, svc.SessionID())
	})

	t.Run("Opens latest session", func(t *testing.T) {
		gw := new(MockChatGateway)
		svc, _ := newChatService(t, gw)
		gw.On("ListSessions", mock.Anything).Return([]models.ChatSession{
			{ID: "s-2", AssistantID: models.AssistantReferences},
			{ID: "s-1", AssistantID: models.AssistantTypeX},
		}, nil).Once()
		gw.On("GetSession", mock.Anything, "s-2").Return(&models.SessionDetail{
			Session:  models.ChatSession{ID: "s-2", AssistantID: models.AssistantReferences},
			Messages: []models.ChatMessage{{ID: "m1", Role: models.RoleUser, Content: "appeal?"}},
		}, nil).Once()

		require.NoError(t, svc.Initialize(ctx))
		assert.Equal(t, "s-2", svc.SessionID())
		assert.Equal(t, models.AssistantReferences, svc.Assistant())
		assert.Len(t, svc.Messages(), 1)
		assert.False(t, svc.IsWelcomeOnly())
	})

	t.Run("Empty course session gets course welcome", func(t *testing.T) {
		gw := new(MockChatGateway)
		svc, translator := newChatService(t, gw)
		course := models.ChatSession{ID: "s-c", AssistantID: models.AssistantTypeX, CourseID: "c-1", CourseName: "Calculus"}
		gw.On("ListSessions", mock.Anything).Return([]models.ChatSession{course}, nil).Once()
		gw.On("GetSession", mock.Anything, "s-c").Return(&models.SessionDetail{Session: course}, nil).Once()

		require.NoError(t, svc.Initialize(ctx))
		id, name := svc.Course()
		assert.Equal(t, "c-1", id)
		assert.Equal(t, "Calculus", name)
		assert.Equal(t, "Calculus", svc.Title())
		require.True(t, svc.IsWelcomeOnly())
		assert.Equal(t, translator.T(i18n.English, "chat.welcomeMessages.course"), svc.Messages()[0].Content)
	})

	t.Run("Detail failure falls back to welcome", func(t *testing.T) {
		gw := new(MockChatGateway)
		svc, translator := newChatService(t, gw)
		gw.On("ListSessions", mock.Anything).Return([]models.ChatSession{{ID: "s-9", AssistantID: models.AssistantWhatsTrendy}}, nil).Once()
		gw.On("GetSession", mock.Anything, "s-9").Return(nil, apperrors.NewHTTPError(http.StatusNotFound, "Session not found", apperrors.OutcomeStructured, "")).Once()

		assert.Error(t, svc.Initialize(ctx))
		assert.Empty(t, svc.SessionID())
		assert.Equal(t, models.AssistantWhatsTrendy, svc.Assistant())
		require.True(t, svc.IsWelcomeOnly())
		assert.Equal(t, translator.T(i18n.English, "chat.welcomeMessages.whatsTrendy"), svc.Messages()[0].Content)
	})

	t.Run("Detail failure on a course session", func(t *testing.T) {
		gw := new(MockChatGateway)
		svc, translator := newChatService(t, gw)
		gw.On("ListSessions", mock.Anything).Return([]models.ChatSession{
			{ID: "s-c", AssistantID: models.AssistantTypeX, CourseID: "c-1", CourseName: "Calculus"},
		}, nil).Once()
		gw.On("GetSession", mock.Anything, "s-c").Return(nil, apperrors.NewHTTPError(http.StatusNotFound, "Session not found", apperrors.OutcomeStructured, "")).Once()

		assert.Error(t, svc.Initialize(ctx))
		id, _ := svc.Course()
		assert.Equal(t, "c-1", id)
		assert.Equal(t, "Calculus", svc.Title())
		require.True(t, svc.IsWelcomeOnly())
		courseWelcome := translator.T(i18n.English, "chat.welcomeMessages.course")
		assert.Equal(t, courseWelcome, svc.Messages()[0].Content)

		svc.SetLanguage(i18n.English)
		assert.Equal(t, courseWelcome, svc.Messages()[0].Content)
	})

	t.Run("Entry without id is not loaded", func(t *testing.T) {
		gw := new(MockChatGateway)
		svc, translator := newChatService(t, gw)
		gw.On("ListSessions", mock.Anything).Return([]models.ChatSession{
			{AssistantID: models.AssistantReferences, CourseID: "c-1", CourseName: "Calculus"},
		}, nil).Once()

		require.NoError(t, svc.Initialize(ctx))
		assert.Empty(t, svc.SessionID())
		id, _ := svc.Course()
		assert.Empty(t, id)
		require.True(t, svc.IsWelcomeOnly())
		assert.Equal(t, translator.T(i18n.English, "chat.welcomeMessages.typeX"), svc.Messages()[0].Content)
		gw.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything)
	})

	t.Run("List failure falls back to welcome", func(t *testing.T) {
		gw := new(MockChatGateway)
		svc, _ := newChatService(t, gw)
		gw.On("ListSessions", mock.Anything).Return(nil, apperrors.NewNetworkError(errors.New("connection refused"))).Once()

		assert.Error(t, svc.Initialize(ctx))
		assert.True(t, svc.IsWelcomeOnly())
		assert.False(t, svc.Loading())
		gw.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything)
	})
}

func TestSessionRoundTrip(t *testing.T) {
	gw := new(MockChatGateway)
	svc, _ := newChatService(t, gw)
	ctx := context.Background()

	a := &models.SessionDetail{
		Session:  models.ChatSession{ID: "A", AssistantID: models.AssistantReferences},
		Messages: []models.ChatMessage{{ID: "a1", Role: models.RoleUser, Content: "grades"}, {ID: "a2", Role: models.RoleAssistant, Content: "appeal"}},
	}
	b := &models.SessionDetail{
		Session:  models.ChatSession{ID: "B", AssistantID: models.AssistantTypeX, CourseID: "c-7", CourseName: "Physics"},
		Messages: []models.ChatMessage{{ID: "b1", Role: models.RoleUser, Content: "lecture"}},
	}
	gw.On("GetSession", mock.Anything, "A").Return(a, nil).Twice()
	gw.On("GetSession", mock.Anything, "B").Return(b, nil).Once()

	require.NoError(t, svc.SelectSession(ctx, "A"))
	assert.Equal(t, models.AssistantReferences, svc.Assistant())
	courseID, _ := svc.Course()
	assert.Empty(t, courseID)

	require.NoError(t, svc.SelectSession(ctx, "B"))
	courseID, courseName := svc.Course()
	assert.Equal(t, "c-7", courseID)
	assert.Equal(t, "Physics", courseName)
	assert.Equal(t, b.Messages, svc.Messages())

	require.NoError(t, svc.SelectSession(ctx, "A"))
	assert.Equal(t, "A", svc.SessionID())
	assert.Equal(t, models.AssistantReferences, svc.Assistant())
	assert.Equal(t, a.Messages, svc.Messages())
	courseID, _ = svc.Course()
	assert.Empty(t, courseID)

	gw.On("SendMessage", mock.Anything, mock.MatchedBy(func(req models.SendMessageRequest) bool {
		return withSession("A")(req) && req.CourseID == nil && req.AssistantID == models.AssistantReferences
	})).Return(reply("A", "ok"), nil).Once()
	require.NoError(t, svc.Send(ctx, "thanks"))
	assert.Equal(t, 0, svc.RefreshCount())
	gw.AssertExpectations(t)
}

func TestWelcomeOnly(t *testing.T) {
	gw := new(MockChatGateway)
	svc, translator := newChatService(t, gw)
	ctx := context.Background()

	require.True(t, svc.IsWelcomeOnly())

	svc.SetLanguage(i18n.Arabic)
	assert.Equal(t, translator.T(i18n.Arabic, "chat.welcomeMessages.typeX"), svc.Messages()[0].Content)

	require.NoError(t, svc.SelectAssistant(models.AssistantTherapyGPT))
	assert.Equal(t, translator.T(i18n.Arabic, "chat.welcomeMessages.therapyGPT"), svc.Messages()[0].Content)
	assert.Equal(t, translator.T(i18n.Arabic, "chat.assistants.therapyGPT"), svc.Title())

	persisted := &models.SessionDetail{
		Session:  models.ChatSession{ID: "s-1", AssistantID: models.AssistantTypeX},
		Messages: []models.ChatMessage{{ID: "m-123", Role: models.RoleAssistant, Content: "stored reply"}},
	}
	gw.On("GetSession", mock.Anything, "s-1").Return(persisted, nil).Once()
	require.NoError(t, svc.SelectSession(ctx, "s-1"))

	assert.False(t, svc.IsWelcomeOnly())
	svc.SetLanguage(i18n.English)
	assert.Equal(t, "stored reply", svc.Messages()[0].Content)
}

func TestSelectAssistantLeavesSavedSession(t *testing.T) {
	gw := new(MockChatGateway)
	svc, translator := newChatService(t, gw)

	gw.On("SendMessage", mock.Anything, mock.MatchedBy(noSession)).Return(reply("s-1", "hi"), nil).Once()
	require.NoError(t, svc.Send(context.Background(), "hello"))
	require.Equal(t, "s-1", svc.SessionID())

	require.NoError(t, svc.SelectAssistant(models.AssistantAcademicReferences))
	assert.Empty(t, svc.SessionID())
	require.True(t, svc.IsWelcomeOnly())
	assert.Equal(t, translator.T(i18n.English, "chat.welcomeMessages.academicReferences"), svc.Messages()[0].Content)

	assert.ErrorIs(t, svc.SelectAssistant("nope"), services.ErrUnknownAssistant)
}

func TestEnrollCourse(t *testing.T) {
	ctx := context.Background()

	t.Run("Already enrolled", func(t *testing.T) {
		gw := new(MockChatGateway)
		svc, _ := newChatService(t, gw)
		before := svc.Messages()

		gw.On("Enroll", mock.Anything, "CM101").
			Return(nil, apperrors.NewHTTPError(http.StatusBadRequest, "Already enrolled in this course", apperrors.OutcomeStructured, "")).Once()

		_, err := svc.EnrollCourse(ctx, "CM101")
		require.Error(t, err)
		assert.Equal(t, "Already enrolled in this course", apperrors.FriendlyMessage(err))
		assert.Equal(t, 0, svc.RefreshCount())
		assert.Equal(t, before, svc.Messages())
		gw.AssertNotCalled(t, "ListSessions", mock.Anything)
	})

	t.Run("Blank code", func(t *testing.T) {
		gw := new(MockChatGateway)
		svc, _ := newChatService(t, gw)

		_, err := svc.EnrollCourse(ctx, "  ")
		assert.EqualError(t, err, "Course code is required")
		gw.AssertNotCalled(t, "Enroll", mock.Anything, mock.Anything)
	})

	t.Run("Opens the course session", func(t *testing.T) {
		gw := new(MockChatGateway)
		svc, translator := newChatService(t, gw)
		course := models.ChatSession{ID: "s-c", AssistantID: models.AssistantTypeX, CourseID: "c-1", CourseName: "Intro to CS"}

		gw.On("Enroll", mock.Anything, "CM101").Return(&models.Enrollment{ID: "e-1", CourseID: "c-1"}, nil).Once()
		gw.On("ListSessions", mock.Anything).Return([]models.ChatSession{{ID: "s-0", AssistantID: models.AssistantTypeX}, course}, nil).Once()
		gw.On("GetSession", mock.Anything, "s-c").Return(&models.SessionDetail{Session: course}, nil).Once()

		enrollment, err := svc.EnrollCourse(ctx, " CM101 ")
		require.NoError(t, err)
		assert.Equal(t, "c-1", enrollment.CourseID)
		assert.Equal(t, 1, svc.RefreshCount())
		assert.Equal(t, "s-c", svc.SessionID())
		id, _ := svc.Course()
		assert.Equal(t, "c-1", id)
		assert.Empty(t, svc.Messages())
		assert.Equal(t, translator.List(i18n.English, "chat.suggestions.course"), svc.Suggestions())
		gw.AssertExpectations(t)
	})
}

func TestStaleSendIsDiscarded(t *testing.T) {
	gw := new(MockChatGateway)
	svc, _ := newChatService(t, gw)

	release := make(chan struct{})
	gw.On("SendMessage", mock.Anything, mock.MatchedBy(noSession)).
		Run(func(mock.Arguments) { <-release }).
		Return(reply("s-late", "late answer"), nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, svc.Send(context.Background(), "slow question"))
	}()

	require.Eventually(t, svc.Loading, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, svc.Send(context.Background(), "again"), services.ErrSendInProgress)

	svc.NewChat()
	close(release)
	wg.Wait()

	assert.True(t, svc.IsWelcomeOnly())
	assert.Empty(t, svc.SessionID())
	assert.Equal(t, 1, svc.RefreshCount())
	assert.False(t, svc.Loading())
}

func TestOpenCourse(t *testing.T) {
	gw := new(MockChatGateway)
	svc, _ := newChatService(t, gw)
	ctx := context.Background()
	course := models.ChatSession{ID: "s-c", AssistantID: models.AssistantTypeX, CourseID: "c-1", CourseName: "Chemistry"}

	gw.On("ListSessions", mock.Anything).Return([]models.ChatSession{course}, nil).Once()
	gw.On("GetSession", mock.Anything, "s-c").Return(&models.SessionDetail{Session: course}, nil).Once()

	ok, err := svc.OpenCourse(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "s-c", svc.SessionID())

	gw.On("ListSessions", mock.Anything).Return([]models.ChatSession{course}, nil).Once()
	ok, err = svc.OpenCourse(ctx, "c-404")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilterSessions(t *testing.T) {
	gw := new(MockChatGateway)
	svc, _ := newChatService(t, gw)

	gw.On("ListSessions", mock.Anything).Return([]models.ChatSession{
		{ID: "1", AssistantID: models.AssistantReferences},
		{ID: "2", AssistantID: models.AssistantTypeX, CourseID: "c-1", CourseName: "Linear Algebra"},
		{ID: "3", AssistantID: models.AssistantWhatsTrendy},
	}, nil).Once()
	_, err := svc.Sessions(context.Background())
	require.NoError(t, err)

	ids := func(sessions []models.ChatSession) []string {
		var out []string
		for _, s := range sessions {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(svc.FilterSessions("")))
	assert.Equal(t, []string{"2"}, ids(svc.FilterSessions("algebra")))
	assert.Equal(t, []string{"1"}, ids(svc.FilterSessions("student rights")))
	assert.Empty(t, svc.FilterSessions("zzz"))
}

func TestDeleteCurrentSession(t *testing.T) {
	gw := new(MockChatGateway)
	svc, _ := newChatService(t, gw)
	ctx := context.Background()

	gw.On("GetSession", mock.Anything, "s-1").Return(&models.SessionDetail{
		Session:  models.ChatSession{ID: "s-1", AssistantID: models.AssistantTypeX},
		Messages: []models.ChatMessage{{ID: "m1", Role: models.RoleUser, Content: "hi"}},
	}, nil).Once()
	gw.On("DeleteSession", mock.Anything, "s-1").Return(nil).Once()

	require.NoError(t, svc.SelectSession(ctx, "s-1"))
	require.NoError(t, svc.DeleteSession(ctx, "s-1"))

	assert.Empty(t, svc.SessionID())
	assert.True(t, svc.IsWelcomeOnly())
	assert.Equal(t, 1, svc.RefreshCount())
}

func TestDeleteSessionLeavesListedSlice(t *testing.T) {
	gw := new(MockChatGateway)
	svc, _ := newChatService(t, gw)
	ctx := context.Background()

	listed := []models.ChatSession{
		{ID: "s-1", AssistantID: models.AssistantTypeX},
		{ID: "s-2", AssistantID: models.AssistantReferences},
		{ID: "s-3", AssistantID: models.AssistantWhatsTrendy},
	}
	gw.On("ListSessions", mock.Anything).Return(listed, nil).Once()
	gw.On("DeleteSession", mock.Anything, "s-1").Return(nil).Once()

	_, err := svc.Sessions(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSession(ctx, "s-1"))

	assert.Equal(t, "s-1", listed[0].ID)
	assert.Equal(t, "s-2", listed[1].ID)
	assert.Equal(t, "s-3", listed[2].ID)

	cached := svc.CachedSessions()
	require.Len(t, cached, 2)
	assert.Equal(t, "s-2", cached[0].ID)
	assert.Equal(t, "s-3", cached[1].ID)
}
