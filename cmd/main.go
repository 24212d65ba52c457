package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	// Infraestrutura e utilitários
	"gomovies/config"
	"gomovies/internal/pkg/cache"
	"gomovies/internal/pkg/database"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"gomovies/internal/api/admin"
	"gomovies/internal/api/movie"
	"gomovies/internal/api/rating"
	"gomovies/internal/api/router"
	"gomovies/internal/api/user"
	"gomovies/internal/repository/movierepo"
	"gomovies/internal/repository/ratingrepo"
	"gomovies/internal/repository/userrepo"
	"gomovies/internal/service/identityservice"
	"gomovies/internal/service/movieservice"
	"gomovies/internal/service/ratingservice"
	"gomovies/internal/service/userservice"
)

func main() {
	// 0. Variáveis de ambiente (.env é opcional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Logger
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	appLog, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ falha ao iniciar o logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("⚡ Inicializando serviço GoMovies...", map[string]interface{}{"env": cfg.Environment, "db_driver": cfg.DBDriver})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Infraestrutura

	// A. Banco de Dados
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer database.Close(db)
	appLog.Info("Conexão com o banco estabelecida.", map[string]interface{}{"driver": cfg.DBDriver})

	// B. Cache: Redis quando configurado, senão memória do processo
	var cacheClient cache.Client
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg.RedisAddr)
		if err != nil {
			appLog.Fatal("Falha ao conectar ao Redis.", err)
		}
		defer redisClient.Close()
		cacheClient = redisClient
		appLog.Info("Conexão Redis estabelecida.", map[string]interface{}{"addr": cfg.RedisAddr})
	} else {
		cacheClient = cache.NewMemoryClient()
		appLog.Warn("REDIS_ADDR vazio: usando cache em memória (não compartilhado entre instâncias).", nil)
	}

	// 3. Injeção de dependências: Repository -> Service -> Handler
	tokenSvc := token.NewService(token.Config{
		SecretKey: cfg.JWTSecretKey,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		Expiry:    cfg.TokenExpiry,
	})

	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)
	movieRepo := movierepo.NewMovieRepository(db, cacheClient, cfg.CacheTTL, cfg.DBTimeout, appLog)
	ratingRepo := ratingrepo.NewRatingRepository(db, cfg.DBTimeout, appLog)
	appLog.Debug("Repositórios inicializados.", nil)

	userSvc := userservice.NewService(userRepo, tokenSvc, appLog)
	identitySvc := identityservice.NewService(userRepo, appLog)
	movieSvc := movieservice.NewService(movieRepo, appLog)
	ratingSvc := ratingservice.NewService(ratingRepo, movieRepo, cfg.RatingEligibility, appLog)
	appLog.Debug("Serviços inicializados.", map[string]interface{}{"rating_eligibility": string(cfg.RatingEligibility)})

	handlers := router.Handlers{
		User:   user.NewHandler(userSvc, ratingSvc, appLog),
		Admin:  admin.NewHandler(userSvc, appLog),
		Movie:  movie.NewHandler(movieSvc, appLog),
		Rating: rating.NewHandler(ratingSvc, movieSvc, appLog),
	}

	// 4. Roteador e servidor
	r := router.NewRouter(handlers, router.Options{
		Logger:             appLog,
		Tokens:             tokenSvc,
		Identity:           identitySvc,
		APIKeys:            cfg.APIKeys,
		RateLimitCache:     cacheClient,
		RateLimit:          cfg.RateLimitMaxRequests,
		RateLimitPeriod:    cfg.RateLimitPeriod,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor GoMovies ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
