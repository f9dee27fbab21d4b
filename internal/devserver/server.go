package devserver

import (
	"net/http"
	"time"

	"lovedu_client/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Seeded accounts.
const (
	TestUserEmail     = "test@ku.edu.kw"
	TestUserPassword  = "testpassword123"
	AdminUserEmail    = "admin@ku.edu.kw"
	AdminUserPassword = "adminpassword123"
)

type Config struct {
	JWTSecret      string
	AllowedOrigins []string
	TokenTTL       time.Duration
	MaxUploadBytes int64
}

// Server is an in-memory stand-in for the LovEdu backend, covering every endpoint the client uses.
type Server struct {
	engine *gin.Engine
	state  *state
	cfg    Config
	secret []byte
	logger zerolog.Logger
}

func New(cfg Config, logger zerolog.Logger) *Server {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "lovedu-dev-secret"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 << 20
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	s := &Server{
		state:  newState(time.Now),
		cfg:    cfg,
		secret: []byte(cfg.JWTSecret),
		logger: logger.With().Str("component", "devserver").Logger(),
	}
	s.seed()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	s.setupRoutes(r)
	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("Dev backend starting")
	return s.engine.Run(addr)
}

func (s *Server) setupRoutes(r *gin.Engine) {
	authed := s.authMiddleware()
	admin := adminOnly()

	auth := r.Group("/auth")
	{
		auth.POST("/login", s.login)
		auth.POST("/signup", s.signup)
		auth.POST("/verify-token", s.verifyToken)
		auth.POST("/refresh", s.refresh)
		auth.GET("/me", authed, s.me)
		auth.GET("/user/:id", authed, s.userByID)
		auth.PUT("/profile", authed, s.updateProfile)
		auth.PUT("/password", authed, s.updatePassword)
	}

	chat := r.Group("/chat", authed)
	{
		chat.POST("/message", s.sendMessage)
		chat.GET("/sessions", s.listSessions)
		chat.POST("/sessions", s.createSession)
		chat.GET("/sessions/:id", s.getSession)
		chat.DELETE("/sessions/:id", s.deleteSession)
	}

	course := r.Group("/course", authed)
	{
		course.POST("/enroll", s.enroll)
		course.GET("/my-courses", s.myCourses)
		course.GET("/list", s.listCourses)
		course.POST("/create", admin, s.createCourse)
		course.PUT("/:id", admin, s.updateCourse)
		course.DELETE("/:id", admin, s.deleteCourse)
	}

	files := r.Group("/admin", authed, admin)
	{
		files.POST("/upload", s.uploadAssistantFile)
		files.GET("/files/:assistant", s.listAssistantFiles)
		files.DELETE("/files/:assistant/:name", s.deleteAssistantFile)
		files.GET("/files/:assistant/:name/download", s.downloadAssistantFile)
		files.POST("/courses/:id/upload", s.uploadCourseFile)
		files.GET("/courses/:id/files", s.listCourseFiles)
		files.DELETE("/courses/:id/files/:name", s.deleteCourseFile)
		files.GET("/courses/:id/files/:name/download", s.downloadCourseFile)
	}

	sub := r.Group("/subscription", authed)
	{
		sub.GET("/plan", s.plan)
		sub.POST("/upgrade", s.upgrade)
		sub.POST("/downgrade", s.downgrade)
	}
}

func (s *Server) seed() {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.addAccount(TestUserEmail, TestUserPassword, map[string]any{
		"full_name":         "Test User",
		"university_domain": "ku.edu.kw",
	})
	s.state.addAccount(AdminUserEmail, AdminUserPassword, map[string]any{
		"full_name": "LovEdu Admin",
		"is_admin":  true,
		"role":      "admin",
	})
	s.state.addCourse("CM101", "General Chemistry", "Introductory chemistry for science majors")
	s.state.addCourse("MATH101", "Calculus I", "Limits, derivatives and integrals")
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func currentAccount(c *gin.Context) *account {
	acc, _ := c.MustGet(userKey).(*account)
	return acc
}

func userView(acc *account) models.User {
	u := acc.user
	metadata := make(map[string]any, len(u.UserMetadata))
	for k, v := range u.UserMetadata {
		metadata[k] = v
	}
	u.UserMetadata = metadata
	return u
}
