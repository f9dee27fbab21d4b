package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "header.payload.signature"

type fakeCreds struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (f *fakeCreds) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeCreds) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
}

func newTestClient(t *testing.T, creds *fakeCreds, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, creds, zerolog.Nop())
}

func TestAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
	}{
		{"valid token attached", validToken, "Bearer " + validToken},
		{"two segments omitted", "header.payload", ""},
		{"empty middle segment omitted", "header..signature", ""},
		{"placeholder omitted", "undefined", ""},
		{"no token", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			client := newTestClient(t, &fakeCreds{token: tt.token}, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `[]`)
			})

			_, err := client.ListSessions(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.header, got)
		})
	}
}

func TestVerifyTokenSendsTokenInBody(t *testing.T) {
	creds := &fakeCreds{token: validToken}
	client := newTestClient(t, creds, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/verify-token", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a.b.c", body["token"])

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"u1","email":"test@ku.edu.kw","email_verified":true,"created_at":"2024-01-01T00:00:00Z","user_metadata":{}}`)
	})

	user, err := client.VerifyToken(context.Background(), "a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "test@ku.edu.kw", user.Email)
}

func TestSelfHealingClear(t *testing.T) {
	t.Run("malformed token message clears credentials", func(t *testing.T) {
		creds := &fakeCreds{token: validToken}
		client := newTestClient(t, creds, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Invalid token: Not enough segments, malformed"}`)
		})

		_, err := client.CurrentUser(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, creds.cleared)
		assert.Empty(t, creds.Token())
	})

	t.Run("wrong credentials keep stored token", func(t *testing.T) {
		creds := &fakeCreds{token: validToken}
		client := newTestClient(t, creds, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Invalid login credentials"}`)
		})

		_, err := client.Login(context.Background(), "a@ku.edu.kw", "nope")
		require.Error(t, err)
		assert.Equal(t, 0, creds.cleared)
	})

	t.Run("token wording on 500 is ignored", func(t *testing.T) {
		creds := &fakeCreds{token: validToken}
		client := newTestClient(t, creds, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"detail":"invalid token"}`)
		})

		_, err := client.CurrentUser(context.Background())
		require.Error(t, err)
		assert.Equal(t, 0, creds.cleared)
	})
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		message     string
		outcome     apperrors.Outcome
	}{
		{"detail first", 400, "application/json", `{"detail":"d","message":"m","error":"e"}`, "d", apperrors.OutcomeStructured},
		{"message second", 400, "application/json", `{"message":"m","error":"e"}`, "m", apperrors.OutcomeStructured},
		{"error third", 400, "application/json", `{"error":"e"}`, "e", apperrors.OutcomeStructured},
		{"validation list", 422, "application/json", `{"detail":[{"loc":["body","email"],"msg":"field required"}]}`, "field required", apperrors.OutcomeStructured},
		{"json string body", 400, "application/json", `"plain"`, "plain", apperrors.OutcomeStructured},
		{"json without known fields", 404, "application/json", `{"foo":1}`, "HTTP 404: Not Found", apperrors.OutcomeStructured},
		{"json-looking body without content type", 400, "text/plain", `{"detail":"sniffed"}`, "sniffed", apperrors.OutcomeStructured},
		{"html body", 502, "text/html", `<html>Bad Gateway</html>`, "<html>Bad Gateway</html>", apperrors.OutcomeOpaque},
		{"broken json", 500, "application/json", `{"detail":`, `{"detail":`, apperrors.OutcomeOpaque},
		{"empty body", 503, "", ``, "HTTP 503: Service Unavailable", apperrors.OutcomeOpaque},
		{"unknown status", 599, "", ``, "An error occurred", apperrors.OutcomeOpaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, outcome := extractErrorMessage(tt.status, tt.contentType, []byte(tt.body))
			assert.Equal(t, tt.message, message)
			assert.Equal(t, tt.outcome, outcome)
		})
	}
}

func TestOpaqueErrorKeepsTruncatedBody(t *testing.T) {
	page := "<html>" + strings.Repeat("x", 2000) + "</html>"
	client := newTestClient(t, &fakeCreds{}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, page)
	})

	_, err := client.Plan(context.Background())
	customErr, ok := apperrors.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.OutcomeOpaque, customErr.Outcome)
	assert.Equal(t, http.StatusBadGateway, customErr.StatusCode)
	assert.Equal(t, apperrors.ErrorTypeServiceUnavailable, customErr.Type)
	assert.Len(t, customErr.RawBody, apperrors.MaxRawBody)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(srv.URL, &fakeCreds{}, zerolog.Nop())

	_, err := client.ListCourses(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))
}

func TestMalformedSuccessBody(t *testing.T) {
	client := newTestClient(t, &fakeCreds{}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html>maintenance</html>")
	})

	_, err := client.ListSessions(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedResponse))
}

func TestEmptySuccessBody(t *testing.T) {
	client := newTestClient(t, &fakeCreds{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.DeleteSession(context.Background(), "s1"))
	sessions, err := client.ListSessions(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSendMessageNullsAndJSONContentType(t *testing.T) {
	client := newTestClient(t, &fakeCreds{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"message":"hi","assistant_id":"typeX","mode":"gpt","chat_session_id":null,"course_id":null}`, string(raw))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"chat_session_id":"s9","message":{"id":"m1","content":"hello","role":"assistant","timestamp":"2024-03-01T10:00:00","source":"internal"}}`)
	})

	resp, err := client.SendMessage(context.Background(), models.SendMessageRequest{Message: "hi", AssistantID: models.AssistantTypeX, Mode: models.ChatModeGPT})
	require.NoError(t, err)
	assert.Equal(t, "s9", resp.ChatSessionID)
	assert.Equal(t, "hello", resp.Message.Content)
}

func TestUploadCourseFileMultipart(t *testing.T) {
	client := newTestClient(t, &fakeCreds{token: validToken}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/courses/c1/upload", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		assert.Equal(t, "Bearer "+validToken, r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "content", r.FormValue("file_type"))
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "syllabus.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"f1","assistant_id":"course_c1","file_name":"syllabus.pdf","file_url":null,"file_size":4,"uploaded_at":"2024-03-01T10:00:00","uploaded_by":"u1"}`)
	})

	file, err := client.UploadCourseFile(context.Background(), "c1", "syllabus.pdf", strings.NewReader("%PDF"), "")
	require.NoError(t, err)
	assert.Equal(t, models.FileTypeContent, file.EffectiveType())
	assert.Nil(t, file.FileURL)
	require.NotNil(t, file.FileSize)
	assert.EqualValues(t, 4, *file.FileSize)
}

func TestDownloadEscapesFileName(t *testing.T) {
	client := newTestClient(t, &fakeCreds{token: validToken}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/files/typeX/KU%20rules.pdf/download", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, "%PDF-1.4")
	})

	dl, err := client.DownloadAssistantFile(context.Background(), "typeX", "KU rules.pdf")
	require.NoError(t, err)
	assert.Equal(t, "KU rules.pdf", dl.FileName)
	assert.Equal(t, "application/pdf", dl.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), dl.Data)
}
