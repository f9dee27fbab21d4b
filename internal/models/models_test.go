package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampLayouts(t *testing.T) {
	inputs := map[string]string{
		"rfc3339":   `"2024-03-01T10:20:30Z"`,
		"nano":      `"2024-03-01T10:20:30.123456Z"`,
		"offset":    `"2024-03-01T13:20:30+03:00"`,
		"zone-less": `"2024-03-01T10:20:30.123456"`,
		"space":     `"2024-03-01 10:20:30"`,
		"date only": `"2024-03-01"`,
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(raw), &ts))
			assert.Equal(t, 2024, ts.Year())
			assert.Equal(t, time.March, ts.Month())
		})
	}

	t.Run("null", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
		assert.True(t, ts.IsZero())
	})

	t.Run("garbage decodes as zero", func(t *testing.T) {
		ts := NewTimestamp(time.Now())
		require.NoError(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
		assert.True(t, ts.IsZero())
	})

	t.Run("not a string", func(t *testing.T) {
		var ts Timestamp
		assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
	})
}

func TestSessionListToleratesBadTimestamp(t *testing.T) {
	body := `[
		{"id": "s1", "assistant_id": "typeX", "created_at": "2024-03-01T10:00:00+0000", "updated_at": "2024-03-01T10:05:00"},
		{"id": "s2", "assistant_id": "references", "created_at": "2024-03-02T09:00:00Z", "updated_at": "not a date"}
	]`

	var sessions []ChatSession
	require.NoError(t, json.Unmarshal([]byte(body), &sessions))
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].CreatedAt.IsZero())
	assert.Equal(t, 5, sessions[0].UpdatedAt.Minute())
	assert.True(t, sessions[1].UpdatedAt.IsZero())
	assert.Equal(t, AssistantReferences, sessions[1].AssistantID)
}

func TestSessionDetailDecode(t *testing.T) {
	body := `{
		"session": {"id": "s1", "user_id": "u1", "assistant_id": "references", "created_at": "2024-03-01T10:00:00",
			"updated_at": "2024-03-01T10:05:00", "message_count": 2, "course_id": null, "course_name": null},
		"messages": [
			{"id": "m1", "content": "hi", "role": "user", "timestamp": "2024-03-01T10:00:00"},
			{"id": "m2", "content": "hello", "role": "assistant", "timestamp": "2024-03-01T10:00:01", "source": "web"}
		]
	}`

	var detail SessionDetail
	require.NoError(t, json.Unmarshal([]byte(body), &detail))
	assert.Equal(t, AssistantReferences, detail.Session.AssistantID)
	assert.False(t, detail.Session.HasCourse())
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, SourceWeb, detail.Messages[1].Source)
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&User{UserMetadata: map[string]any{"is_admin": true}}).IsAdmin())
	assert.True(t, (&User{UserMetadata: map[string]any{"role": "admin"}}).IsAdmin())
	assert.False(t, (&User{UserMetadata: map[string]any{"is_admin": "true"}}).IsAdmin())
	assert.False(t, (&User{}).IsAdmin())

	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
}

func TestWelcomeIdentity(t *testing.T) {
	welcome := NewWelcomeMessage("Hello", time.Now())
	assert.True(t, welcome.IsWelcome())

	sameIDUser := ChatMessage{ID: WelcomeMessageID, Role: RoleUser}
	assert.False(t, sameIDUser.IsWelcome())

	persisted := ChatMessage{ID: "m-123", Role: RoleAssistant}
	assert.False(t, persisted.IsWelcome())
}

func TestUploadedFileEffectiveType(t *testing.T) {
	assert.Equal(t, FileTypeContent, UploadedFile{}.EffectiveType())
	assert.Equal(t, FileTypeBehavior, UploadedFile{FileType: FileTypeBehavior}.EffectiveType())
}

func TestSendMessageRequestNulls(t *testing.T) {
	out, err := json.Marshal(SendMessageRequest{Message: "hi", AssistantID: AssistantTypeX, Mode: ChatModeGPT})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hi","assistant_id":"typeX","mode":"gpt","chat_session_id":null,"course_id":null}`, string(out))
}
