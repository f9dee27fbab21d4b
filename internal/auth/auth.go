package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/models"
	authutil "lovedu_client/internal/utils/auth"
	"lovedu_client/internal/utils/broker"

	"github.com/rs/zerolog"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateVerifying       State = "verifying"
	StateAuthenticated   State = "authenticated"
)

// Post-login destinations.
const (
	RouteAdmin = "/admin"
	RouteChat  = "/chat"
)

// StateKey is the broker event key for controller state changes on broker.TopicAuth.
const StateKey = "state"

type Gateway interface {
	Login(ctx context.Context, email, password string) (*models.AuthSession, error)
	Signup(ctx context.Context, input models.SignupRequest) (*models.AuthSession, error)
	VerifyToken(ctx context.Context, token string) (*models.User, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, update models.PasswordUpdate) error
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthSession, error)
}

type CredentialStore interface {
	Token() string
	SetToken(token string) error
	SaveSession(session *models.AuthSession) error
	Session() (*models.AuthSession, bool)
	Clear()
}

type Options struct {
	RestrictDomain bool
	AllowedDomains []string
}

// Controller owns the signed-in identity. It is the only writer of the credential store.
type Controller struct {
	gateway Gateway
	creds   CredentialStore
	broker  *broker.Broker
	logger  zerolog.Logger
	opts    Options

	mu      sync.RWMutex
	state   State
	user    *models.User
	session *models.AuthSession
}

func NewController(gateway Gateway, creds CredentialStore, b *broker.Broker, logger zerolog.Logger, opts Options) *Controller {
	return &Controller{
		gateway: gateway,
		creds:   creds,
		broker:  b,
		logger:  logger.With().Str("component", "auth").Logger(),
		opts:    opts,
		state:   StateUnauthenticated,
	}
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

func (c *Controller) Session() *models.AuthSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// TokenExpiry is the exp claim of the held token, when it carries one.
func (c *Controller) TokenExpiry() (time.Time, bool) {
	return authutil.ExpiryHint(c.creds.Token())
}

func (c *Controller) Subscribe() <-chan broker.Event {
	return c.broker.Subscribe(broker.TopicAuth)
}

func (c *Controller) Unsubscribe(ch <-chan broker.Event) {
	c.broker.Unsubscribe(broker.TopicAuth, ch)
}

// Restore re-establishes a session from stored credentials. Any verification failure clears them.
func (c *Controller) Restore(ctx context.Context) State {
	token := c.creds.Token()
	if token == "" {
		c.setState(StateUnauthenticated, nil, nil)
		return StateUnauthenticated
	}

	c.setState(StateVerifying, nil, nil)
	c.logger.Debug().Str("token_preview", authutil.Preview(token)).Msg("Verifying stored token")

	user, err := c.gateway.VerifyToken(ctx, token)
	if err != nil || user == nil {
		c.logger.Warn().Err(err).Msg("Stored token failed verification, clearing credentials")
		c.creds.Clear()
		c.setState(StateUnauthenticated, nil, nil)
		return StateUnauthenticated
	}

	session, ok := c.creds.Session()
	if ok {
		session.User = user
	} else {
		session = &models.AuthSession{AccessToken: token, TokenType: "bearer", User: user}
	}

	c.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Session restored")
	c.setState(StateAuthenticated, user, session)
	return StateAuthenticated
}

// SignIn authenticates and persists the issued credentials.
func (c *Controller) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("Please fill in all required fields.")
	}
	if err := c.ValidateEmail(email); err != nil {
		return nil, err
	}

	session, err := c.gateway.Login(ctx, email, password)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", email).Msg("Login failed")
		return nil, err
	}
	if session == nil || session.AccessToken == "" {
		return nil, apperrors.NewValidationError("Login failed")
	}

	if err := c.persist(session); err != nil {
		return nil, err
	}
	c.setState(StateAuthenticated, session.User, session)
	c.logger.Info().Str("email", email).Bool("admin", session.User.IsAdmin()).Msg("Signed in")
	return session.User, nil
}

// PostLoginRoute is where a freshly signed-in user lands.
func PostLoginRoute(user *models.User) string {
	if user.IsAdmin() {
		return RouteAdmin
	}
	return RouteChat
}

type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	DateOfBirth     string
}

func (in SignupInput) validate() error {
	switch {
	case strings.TrimSpace(in.FullName) == "":
		return apperrors.NewValidationError("Full name is required")
	case in.DateOfBirth == "":
		return apperrors.NewValidationError("Date of birth is required")
	case in.Password != in.ConfirmPassword:
		return apperrors.NewValidationError("Passwords do not match")
	case len(in.Password) < minPasswordLength:
		return apperrors.NewValidationError("Password must be at least 6 characters")
	}
	return nil
}

// SignUp registers an account. Credentials are stored only when the backend issues a token; when it
// asks for email verification first the controller stays unauthenticated and the returned session
// has no access token.
func (c *Controller) SignUp(ctx context.Context, in SignupInput) (*models.AuthSession, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := c.ValidateEmail(in.Email); err != nil {
		return nil, err
	}

	c.creds.Clear()
	c.setState(StateUnauthenticated, nil, nil)

	session, err := c.gateway.Signup(ctx, models.SignupRequest{
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
		UserMetadata: map[string]any{
			"full_name":     in.FullName,
			"date_of_birth": in.DateOfBirth,
		},
		FullName:    in.FullName,
		DateOfBirth: in.DateOfBirth,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("Signup failed")
		return nil, err
	}

	if session.AccessToken == "" {
		c.logger.Info().Msg("Signup succeeded, email verification required before sign-in")
		return session, nil
	}

	if err := c.persist(session); err != nil {
		return nil, err
	}
	if _, err := c.gateway.VerifyToken(ctx, session.AccessToken); err != nil {
		c.logger.Warn().Err(err).Msg("Token verification after signup failed")
	}
	c.setState(StateAuthenticated, session.User, session)
	return session, nil
}

// SignOut clears credentials. Calling it twice is harmless.
func (c *Controller) SignOut() {
	c.creds.Clear()
	c.setState(StateUnauthenticated, nil, nil)
	c.logger.Info().Msg("Signed out")
}

// RefreshCurrentUser re-fetches the user record. Failures return nil and leave cached data alone.
func (c *Controller) RefreshCurrentUser(ctx context.Context) *models.User {
	user, err := c.gateway.CurrentUser(ctx)
	if err != nil || user == nil {
		c.logger.Warn().Err(err).Msg("Failed to get current user from backend")
		return nil
	}

	c.mu.Lock()
	c.user = user
	session := c.session
	if session != nil {
		session.User = user
	}
	c.mu.Unlock()

	if session != nil {
		if err := c.creds.SaveSession(session); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update cached session user")
		}
	}
	return user
}

// RefreshSession trades the stored refresh token for a new access token.
func (c *Controller) RefreshSession(ctx context.Context) error {
	stored, ok := c.creds.Session()
	if !ok || stored.RefreshToken == "" {
		return apperrors.NewValidationError("No refresh token available")
	}

	session, err := c.gateway.RefreshToken(ctx, stored.RefreshToken)
	if err != nil {
		return err
	}
	if session.AccessToken == "" {
		return apperrors.NewValidationError("Refresh returned no token")
	}
	if session.RefreshToken == "" {
		session.RefreshToken = stored.RefreshToken
	}
	if session.User == nil {
		session.User = stored.User
	}

	if err := c.persist(session); err != nil {
		return err
	}
	c.setState(StateAuthenticated, session.User, session)
	return nil
}

func (c *Controller) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	if strings.TrimSpace(update.FullName) == "" && update.DateOfBirth == "" {
		return nil, apperrors.NewValidationError("Please fill in all required fields.")
	}
	if _, err := c.gateway.UpdateProfile(ctx, update); err != nil {
		return nil, err
	}
	if user := c.RefreshCurrentUser(ctx); user != nil {
		return user, nil
	}
	return c.User(), nil
}

// ChangePassword validates locally before asking the backend.
func (c *Controller) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if err := ValidatePasswordChange(current, next, confirm); err != nil {
		return err
	}
	return c.gateway.UpdatePassword(ctx, models.PasswordUpdate{CurrentPassword: current, NewPassword: next})
}

func (c *Controller) persist(session *models.AuthSession) error {
	if err := c.creds.SetToken(session.AccessToken); err != nil {
		return err
	}
	return c.creds.SaveSession(session)
}

func (c *Controller) setState(state State, user *models.User, session *models.AuthSession) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	c.user = user
	c.session = session
	c.mu.Unlock()

	if changed {
		c.broker.Publish(broker.Event{Topic: broker.TopicAuth, Key: StateKey, Value: string(state)})
	}
}
