package credentials

import (
	"encoding/json"

	"lovedu_client/internal/models"
	"lovedu_client/internal/store"
	authutil "lovedu_client/internal/utils/auth"
	"lovedu_client/internal/utils/broker"

	"github.com/rs/zerolog"
)

const (
	KeyToken   = "auth_token"
	KeySession = "auth_session"
)

// Store keeps the bearer token and the session envelope in a KV. Storage failures are logged and
// read as absence; callers only ever see "token or no token".
type Store struct {
	kv     store.KV
	broker *broker.Broker
	logger zerolog.Logger
}

func NewStore(kv store.KV, b *broker.Broker, logger zerolog.Logger) *Store {
	return &Store{kv: kv, broker: b, logger: logger}
}

// Token returns a well-formed token or "". Malformed values found on the way are deleted.
func (s *Store) Token() string {
	if token, ok := s.get(KeyToken); ok {
		if authutil.IsWellFormed(token) {
			return token
		}
		s.logger.Warn().Str("token_preview", authutil.Preview(token)).Msg("Removing malformed stored token")
		s.remove(KeyToken)
	}

	session, ok := s.Session()
	if !ok {
		return ""
	}
	if authutil.IsWellFormed(session.AccessToken) {
		return session.AccessToken
	}
	if session.AccessToken != "" {
		s.logger.Warn().Msg("Removing session envelope with malformed access token")
		s.remove(KeySession)
	}
	return ""
}

func (s *Store) SetToken(token string) error {
	if err := s.kv.Set(KeyToken, token); err != nil {
		return err
	}
	s.publish(KeyToken, "stored")
	return nil
}

func (s *Store) SaveSession(session *models.AuthSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.kv.Set(KeySession, string(raw)); err != nil {
		return err
	}
	s.publish(KeySession, "stored")
	return nil
}

// Session returns the cached envelope. An unreadable envelope is treated as absent.
func (s *Store) Session() (*models.AuthSession, bool) {
	raw, ok := s.get(KeySession)
	if !ok || raw == "" {
		return nil, false
	}
	var session models.AuthSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.logger.Warn().Err(err).Msg("Discarding unreadable session envelope")
		s.remove(KeySession)
		return nil, false
	}
	return &session, true
}

// Credential assembles the current credential. Expiry comes from the token's exp claim.
func (s *Store) Credential() (models.Credential, bool) {
	token := s.Token()
	if token == "" {
		return models.Credential{}, false
	}
	cred := models.Credential{Token: token}
	if session, ok := s.Session(); ok {
		cred.RefreshToken = session.RefreshToken
	}
	if exp, ok := authutil.ExpiryHint(token); ok {
		cred.ExpiresAt = exp
	}
	return cred, true
}

// Clear removes token and envelope. Safe to call when nothing is stored.
func (s *Store) Clear() {
	s.remove(KeyToken)
	s.remove(KeySession)
}

func (s *Store) Subscribe() <-chan broker.Event {
	return s.broker.Subscribe(broker.TopicAuth)
}

func (s *Store) Unsubscribe(ch <-chan broker.Event) {
	s.broker.Unsubscribe(broker.TopicAuth, ch)
}

func (s *Store) get(key string) (string, bool) {
	v, ok, err := s.kv.Get(key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to read credential store")
		return "", false
	}
	return v, ok
}

func (s *Store) remove(key string) {
	if _, ok := s.get(key); !ok {
		return
	}
	if err := s.kv.Delete(key); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to clear credential store")
		return
	}
	s.publish(key, "")
}

func (s *Store) publish(key, value string) {
	s.broker.Publish(broker.Event{Topic: broker.TopicAuth, Key: key, Value: value})
}
