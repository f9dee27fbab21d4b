package devserver

import (
	"net/http"
	"strings"
	"time"

	authutil "lovedu_client/internal/utils/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const userKey = "user"

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := logger.With().Str("request_id", uuid.NewString()).Logger()
		c.Request = c.Request.WithContext(log.WithContext(c.Request.Context()))

		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := zerolog.Ctx(c.Request.Context())
		authHeader := c.GetHeader("Authorization")
		log.Debug().Msgf("Authorization header present: %v", authHeader != "")

		if authHeader == "" {
			abortDetail(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}
		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || !strings.EqualFold(bearerToken[0], "Bearer") {
			abortDetail(c, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		claims, err := authutil.Verify(s.secret, bearerToken[1])
		if err != nil {
			abortDetail(c, http.StatusUnauthorized, "Invalid token: "+err.Error())
			return
		}

		userID, _ := claims["sub"].(string)
		s.state.mu.Lock()
		acc, ok := s.state.accounts[userID]
		s.state.mu.Unlock()
		if !ok {
			abortDetail(c, http.StatusUnauthorized, "User not found")
			return
		}

		c.Set(userKey, acc)
		c.Next()
	}
}

func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc := currentAccount(c)
		if acc == nil || !acc.user.IsAdmin() {
			abortDetail(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}
