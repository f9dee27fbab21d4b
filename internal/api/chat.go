package api

import (
	"context"
	"net/http"
	"net/url"

	"lovedu_client/internal/models"
)

func (c *Client) SendMessage(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error) {
	var resp models.SendMessageResponse
	if err := c.call(ctx, http.MethodPost, "/chat/message", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSessions returns the caller's sessions, most recent first.
func (c *Client) ListSessions(ctx context.Context) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := c.call(ctx, http.MethodGet, "/chat/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*models.SessionDetail, error) {
	var detail models.SessionDetail
	if err := c.call(ctx, http.MethodGet, "/chat/sessions/"+url.PathEscape(sessionID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) CreateSession(ctx context.Context, assistantID models.AssistantID) (*models.ChatSession, error) {
	var session models.ChatSession
	err := c.call(ctx, http.MethodPost, "/chat/sessions", models.CreateSessionRequest{AssistantID: assistantID}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.call(ctx, http.MethodDelete, "/chat/sessions/"+url.PathEscape(sessionID), nil, nil)
}
