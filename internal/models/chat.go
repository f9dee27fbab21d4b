package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	SourceInternal = "internal"
	SourceWeb      = "web"

	// WelcomeMessageID marks the locally synthesized placeholder shown for an empty chat.
	WelcomeMessageID = "welcome"

	// ChatModeGPT is the only mode the client sends.
	ChatModeGPT = "gpt"
)

type ChatSession struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	AssistantID  AssistantID `json:"assistant_id"`
	CreatedAt    Timestamp   `json:"created_at"`
	UpdatedAt    Timestamp   `json:"updated_at"`
	MessageCount int         `json:"message_count"`
	CourseID     string      `json:"course_id,omitempty"`
	CourseName   string      `json:"course_name,omitempty"`
}

// HasCourse reports whether the session is course-scoped. Both id and name must be present.
func (s ChatSession) HasCourse() bool {
	return s.CourseID != "" && s.CourseName != ""
}

type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp Timestamp `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

// NewWelcomeMessage builds the non-persisted placeholder.
func NewWelcomeMessage(content string, now time.Time) ChatMessage {
	return ChatMessage{
		ID:        WelcomeMessageID,
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: NewTimestamp(now),
		Source:    SourceInternal,
	}
}

// IsWelcome reports whether m is the welcome placeholder. The role is part of the identity so a
// persisted message that happens to carry the same id is not mistaken for it.
func (m ChatMessage) IsWelcome() bool {
	return m.ID == WelcomeMessageID && m.Role == RoleAssistant
}

type SessionDetail struct {
	Session  ChatSession   `json:"session"`
	Messages []ChatMessage `json:"messages"`
}

type SendMessageRequest struct {
	Message       string      `json:"message"`
	AssistantID   AssistantID `json:"assistant_id"`
	Mode          string      `json:"mode"`
	ChatSessionID *string     `json:"chat_session_id"`
	CourseID      *string     `json:"course_id"`
}

type SendMessageResponse struct {
	ChatSessionID string      `json:"chat_session_id"`
	Message       ChatMessage `json:"message"`
}

type CreateSessionRequest struct {
	AssistantID AssistantID `json:"assistant_id"`
}
