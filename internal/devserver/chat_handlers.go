package devserver

import (
	"fmt"
	"net/http"
	"strings"

	"lovedu_client/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// cannedReply stands in for the model. It only has to be deterministic.
func cannedReply(assistant models.AssistantID, courseName, message string) string {
	if courseName != "" {
		return fmt.Sprintf("[%s] You asked about %q. This is a mock course answer.", courseName, message)
	}
	return fmt.Sprintf("[%s] You asked about %q. This is a mock answer.", assistant, message)
}

func (s *Server) sendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		abortDetail(c, http.StatusBadRequest, "Message is required")
		return
	}
	if !req.AssistantID.Valid() {
		abortDetail(c, http.StatusBadRequest, fmt.Sprintf("Unknown assistant %q", req.AssistantID))
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc := currentAccount(c)

	var sess *session
	if req.ChatSessionID != nil && *req.ChatSessionID != "" {
		var ok bool
		if sess, ok = s.state.userSession(acc.user.ID, *req.ChatSessionID); !ok {
			abortDetail(c, http.StatusNotFound, "Chat session not found")
			return
		}
	} else {
		var course *models.Course
		if req.CourseID != nil && *req.CourseID != "" {
			var ok bool
			if course, ok = s.state.courses[*req.CourseID]; !ok {
				abortDetail(c, http.StatusNotFound, "Course not found")
				return
			}
		}
		sess = s.state.newSession(acc.user.ID, req.AssistantID, course)
	}

	now := models.NewTimestamp(s.state.now())
	reply := models.ChatMessage{
		ID:        uuid.NewString(),
		Content:   cannedReply(sess.meta.AssistantID, sess.meta.CourseName, req.Message),
		Role:      models.RoleAssistant,
		Timestamp: now,
		Source:    models.SourceInternal,
	}
	sess.messages = append(sess.messages,
		models.ChatMessage{ID: uuid.NewString(), Content: req.Message, Role: models.RoleUser, Timestamp: now},
		reply,
	)
	sess.meta.MessageCount = len(sess.messages)
	sess.meta.UpdatedAt = now

	c.JSON(http.StatusOK, models.SendMessageResponse{ChatSessionID: sess.meta.ID, Message: reply})
}

func (s *Server) listSessions(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	c.JSON(http.StatusOK, s.state.userSessions(currentAccount(c).user.ID))
}

func (s *Server) createSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.AssistantID.Valid() {
		abortDetail(c, http.StatusBadRequest, "A valid assistant_id is required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	sess := s.state.newSession(currentAccount(c).user.ID, req.AssistantID, nil)
	c.JSON(http.StatusOK, sess.meta)
}

func (s *Server) getSession(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	sess, ok := s.state.userSession(currentAccount(c).user.ID, c.Param("id"))
	if !ok {
		abortDetail(c, http.StatusNotFound, "Chat session not found")
		return
	}
	messages := append([]models.ChatMessage{}, sess.messages...)
	c.JSON(http.StatusOK, models.SessionDetail{Session: sess.meta, Messages: messages})
}

func (s *Server) deleteSession(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	id := c.Param("id")
	if _, ok := s.state.userSession(currentAccount(c).user.ID, id); !ok {
		abortDetail(c, http.StatusNotFound, "Chat session not found")
		return
	}
	delete(s.state.sessions, id)
	c.JSON(http.StatusOK, gin.H{"message": "Chat session deleted"})
}
