package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gomovies/internal/api/admin"
	"gomovies/internal/api/movie"
	"gomovies/internal/api/rating"
	"gomovies/internal/api/user"
	"gomovies/internal/domain"
	"gomovies/internal/pkg/cache"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/middleware"
	"gomovies/internal/pkg/validation"
)

// Handlers agrupa os handlers já inicializados por injeção de dependências.
type Handlers struct {
	User   *user.Handler
	Admin  *admin.Handler
	Movie  *movie.Handler
	Rating *rating.Handler
}

// Options reúne a infraestrutura usada pelos middlewares globais.
type Options struct {
	Logger   logger.Logger
	Tokens   middleware.TokenService
	Identity middleware.IdentityResolver
	APIKeys  []string

	// RateLimitCache nil ou RateLimit 0 desligam o rate limit.
	RateLimitCache  cache.Client
	RateLimit       int
	RateLimitPeriod time.Duration

	CORSAllowedOrigins []string
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, opts Options) *gin.Engine {
	validation.Register()

	r := gin.New()

	// --- 1. Middlewares globais ---
	r.Use(gin.Recovery(), middleware.RequestLogger(opts.Logger), corsMiddleware(opts.CORSAllowedOrigins))
	if opts.RateLimitCache != nil && opts.RateLimit > 0 {
		r.Use(middleware.RateLimiter(opts.RateLimitCache, opts.RateLimit, opts.RateLimitPeriod, opts.Logger))
	}
	r.Use(middleware.Authenticate(opts.Tokens, opts.Logger), middleware.ResolveIdentity(opts.Identity, opts.Logger))

	requireAuth := middleware.RequirePolicy(domain.AuthPolicy, opts.APIKeys, opts.Logger)
	requireAdmin := middleware.RequirePolicy(domain.AdminPolicy, opts.APIKeys, opts.Logger)

	// --- 2. Health Check ---
	r.GET("/ping", PingHandler)

	v1 := r.Group("/v1")

	// --- 3. Autenticação ---
	auth := v1.Group("/auth")
	auth.POST("/signup", h.User.Signup)
	auth.POST("/verify", h.User.Verify)
	auth.POST("/login", h.User.Login)

	// --- 4. Conta do usuário atual ---
	me := v1.Group("/users/me", requireAuth)
	me.GET("", h.User.Me)
	me.PUT("/password", h.User.ChangePassword)
	me.POST("/tokens/invalidate", h.User.InvalidateTokens)
	me.GET("/ratings", h.User.MyRatings)

	// --- 5. Administração ---
	adm := v1.Group("/admin", requireAdmin)
	adm.GET("/users", h.Admin.ListUsers)
	adm.PATCH("/users/:id", h.Admin.UpdateUser)
	adm.POST("/users/:id/tokens", h.Admin.IssueToken)
	adm.POST("/users/:id/tokens/invalidate", h.Admin.InvalidateTokens)

	// --- 6. Filmes e avaliações ---
	movies := v1.Group("/movies")
	movies.GET("", h.Movie.ListMovies)
	movies.GET("/:id", h.Movie.GetMovie)
	movies.POST("", requireAuth, h.Movie.CreateMovie)
	movies.PUT("/:id", requireAuth, h.Movie.UpdateMovie)
	movies.DELETE("/:id", requireAdmin, h.Movie.DeleteMovie)

	movies.GET("/:id/ratings", h.Rating.ListMovieRatings)
	movies.GET("/:id/rating", requireAuth, h.Rating.GetRating)
	movies.PUT("/:id/rating", requireAuth, h.Rating.RateMovie)
	movies.DELETE("/:id/rating", requireAuth, h.Rating.DeleteRating)

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader},
		ExposeHeaders: []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// PingHandler é o health check.
func PingHandler(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
