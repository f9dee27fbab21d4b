package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "lovedu_client/internal/errors"
	authutil "lovedu_client/internal/utils/auth"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const genericErrorMessage = "An error occurred"

// TokenSource supplies the bearer token for outgoing requests. An empty string means none.
type TokenSource interface {
	Token() string
}

// TokenClearer drops stored credentials once the backend has rejected them as malformed.
type TokenClearer interface {
	Clear()
}

// Credentials is what the client needs from the credential store.
type Credentials interface {
	TokenSource
	TokenClearer
}

// Client is the single gateway to the LovEdu backend. Every method returns either a typed payload or
// an *apperrors.CustomError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func NewClient(baseURL string, creds Credentials, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		creds:      creds,
		logger:     logger.With().Str("component", "api").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method      string
	endpoint    string
	body        io.Reader
	contentType string
	// anonymous requests never carry the Authorization header.
	anonymous bool
}

type response struct {
	status      int
	contentType string
	header      http.Header
	body        []byte
}

func jsonRequest(method, endpoint string, payload any) (request, error) {
	req := request{method: method, endpoint: endpoint}
	if payload == nil {
		return req, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return req, apperrors.NewValidationError("Failed to encode request: " + err.Error())
	}
	req.body = bytes.NewReader(raw)
	req.contentType = "application/json"
	return req, nil
}

func (c *Client) do(ctx context.Context, r request) (*response, error) {
	url := c.baseURL + r.endpoint

	token := ""
	if !r.anonymous && c.creds != nil {
		token = c.creds.Token()
	}
	tokenValid := authutil.IsWellFormed(token)

	c.logger.Debug().
		Str("method", r.method).
		Str("endpoint", r.endpoint).
		Bool("has_token", token != "").
		Bool("token_valid", tokenValid).
		Str("token_preview", authutil.Preview(token)).
		Msg("API request")

	req, err := http.NewRequestWithContext(ctx, r.method, url, r.body)
	if err != nil {
		return nil, apperrors.NewNetworkError(err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	if tokenValid {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if token != "" {
		c.logger.Warn().Str("endpoint", r.endpoint).Msg("Skipping Authorization header, invalid token format")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", r.endpoint).Msg("API network error")
		return nil, apperrors.NewNetworkError(err)
	}
	defer httpResp.Body.Close()

	resp := &response{
		status:      httpResp.StatusCode,
		contentType: httpResp.Header.Get("Content-Type"),
		header:      httpResp.Header,
	}
	body, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil {
		c.logger.Warn().Err(readErr).Str("endpoint", r.endpoint).Msg("Failed to read response body")
	}
	resp.body = body

	if resp.status >= 200 && resp.status < 300 {
		c.logger.Debug().Str("endpoint", r.endpoint).Int("status", resp.status).Msg("API success")
		return resp, nil
	}

	message, outcome := extractErrorMessage(resp.status, resp.contentType, body)
	if readErr != nil {
		message, outcome = statusMessage(resp.status), apperrors.OutcomeOpaque
	}
	apiErr := apperrors.NewHTTPError(resp.status, message, outcome, string(body))

	if apperrors.IsInvalidToken(apiErr) && c.creds != nil {
		c.logger.Warn().Str("endpoint", r.endpoint).Msg("Invalid or malformed token detected, clearing credentials")
		c.creds.Clear()
	}

	c.logger.Error().
		Str("endpoint", r.endpoint).
		Int("status", resp.status).
		Str("content_type", resp.contentType).
		Str("error", message).
		Str("body", apperrors.Truncate(string(body), apperrors.MaxRawBody)).
		Msg("API error")

	return nil, apiErr
}

// looksLikeJSON mirrors how the backend's proxies behave: JSON error bodies do not always carry a
// JSON content type.
func looksLikeJSON(contentType string, trimmed []byte) bool {
	if strings.Contains(contentType, "application/json") {
		return true
	}
	return bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))
}

// extractErrorMessage picks the message for a non-2xx response: detail, message, error, a bare JSON
// string, the status line, and finally a generic message.
func extractErrorMessage(status int, contentType string, body []byte) (string, apperrors.Outcome) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && looksLikeJSON(contentType, trimmed) && gjson.ValidBytes(trimmed) {
		parsed := gjson.ParseBytes(trimmed)
		for _, field := range []string{"detail", "message", "error"} {
			if v := parsed.Get(field); v.Type == gjson.String && v.Str != "" {
				return v.Str, apperrors.OutcomeStructured
			}
		}
		// FastAPI validation failures: {"detail": [{"msg": "..."}]}
		if v := parsed.Get("detail.0.msg"); v.Type == gjson.String && v.Str != "" {
			return v.Str, apperrors.OutcomeStructured
		}
		if parsed.Type == gjson.String && parsed.Str != "" {
			return parsed.Str, apperrors.OutcomeStructured
		}
		return statusMessage(status), apperrors.OutcomeStructured
	}

	if len(trimmed) > 0 {
		return apperrors.Truncate(string(trimmed), apperrors.MaxRawBody), apperrors.OutcomeOpaque
	}
	return statusMessage(status), apperrors.OutcomeOpaque
}

func statusMessage(status int) string {
	if http.StatusText(status) == "" {
		return genericErrorMessage
	}
	return apperrors.StatusLine(status)
}

// decode unmarshals a 2xx body into out. An empty body leaves out at its zero value.
func decode(resp *response, out any) error {
	trimmed := bytes.TrimSpace(resp.body)
	if len(trimmed) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return apperrors.NewMalformedResponseError(resp.status, string(resp.body), err)
	}
	return nil
}

// call runs a JSON request and decodes the result into out.
func (c *Client) call(ctx context.Context, method, endpoint string, payload, out any) error {
	req, err := jsonRequest(method, endpoint, payload)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	return decode(resp, out)
}
