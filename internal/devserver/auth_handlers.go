package devserver

import (
	"net/http"
	"strings"

	"lovedu_client/internal/models"
	authutil "lovedu_client/internal/utils/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const minPasswordLength = 6

// issueSession mints an access token and a refresh token for acc. Callers hold the state lock.
func (s *Server) issueSession(acc *account) (*models.AuthSession, error) {
	token, err := authutil.Issue(s.secret, acc.user.ID, acc.user.Email, s.cfg.TokenTTL, s.state.now())
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString()
	s.state.refreshTokens[refresh] = acc.user.ID
	user := userView(acc)
	return &models.AuthSession{
		AccessToken:  token,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.TokenTTL.Seconds()),
		TokenType:    "bearer",
		User:         &user,
	}, nil
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc, ok := s.state.accountByEmail(req.Email)
	if !ok || acc.password != req.Password {
		abortDetail(c, http.StatusUnauthorized, "Invalid login credentials")
		return
	}
	session, err := s.issueSession(acc)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		abortDetail(c, http.StatusBadRequest, "Email and password are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		abortDetail(c, http.StatusBadRequest, "Password should be at least 6 characters")
		return
	}

	metadata := map[string]any{}
	for k, v := range req.UserMetadata {
		metadata[k] = v
	}
	if req.FullName != "" {
		metadata["full_name"] = req.FullName
	}
	if req.DateOfBirth != "" {
		metadata["date_of_birth"] = req.DateOfBirth
	}
	delete(metadata, "is_admin")
	delete(metadata, "role")

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, exists := s.state.accountByEmail(req.Email); exists {
		abortDetail(c, http.StatusBadRequest, "User already registered")
		return
	}
	acc := s.state.addAccount(req.Email, req.Password, metadata)
	session, err := s.issueSession(acc)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) verifyToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "token is required")
		return
	}
	claims, err := authutil.Verify(s.secret, req.Token)
	if err != nil {
		abortDetail(c, http.StatusUnauthorized, "Invalid token: "+err.Error())
		return
	}

	userID, _ := claims["sub"].(string)
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc, ok := s.state.accounts[userID]
	if !ok {
		abortDetail(c, http.StatusUnauthorized, "User not found")
		return
	}
	c.JSON(http.StatusOK, userView(acc))
}

func (s *Server) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "refresh_token is required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	userID, ok := s.state.refreshTokens[req.RefreshToken]
	if !ok {
		abortDetail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(s.state.refreshTokens, req.RefreshToken)
	session, err := s.issueSession(s.state.accounts[userID])
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) me(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	c.JSON(http.StatusOK, userView(currentAccount(c)))
}

func (s *Server) userByID(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc, ok := s.state.accounts[c.Param("id")]
	if !ok {
		abortDetail(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, userView(acc))
}

func (s *Server) updateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc := currentAccount(c)
	if req.FullName != "" {
		acc.user.UserMetadata["full_name"] = req.FullName
	}
	if req.DateOfBirth != "" {
		acc.user.UserMetadata["date_of_birth"] = req.DateOfBirth
	}
	c.JSON(http.StatusOK, userView(acc))
}

func (s *Server) updatePassword(c *gin.Context) {
	var req models.PasswordUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		abortDetail(c, http.StatusBadRequest, "Password should be at least 6 characters")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc := currentAccount(c)
	if acc.password != req.CurrentPassword {
		abortDetail(c, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	acc.password = req.NewPassword
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
