package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"letthemcook/internal/config"
	recipeservice "letthemcook/internal/recipe/service"
	recipehttp "letthemcook/internal/recipe/transport/http"
	reviewservice "letthemcook/internal/review/service"
	reviewhttp "letthemcook/internal/review/transport/http"
	"letthemcook/internal/token"
	userservice "letthemcook/internal/user/service"
	userhttp "letthemcook/internal/user/transport/http"

	recipepostgres "letthemcook/internal/recipe/repository"
	reviewpostgres "letthemcook/internal/review/repository"
	tokenrepository "letthemcook/internal/token/repository"
	userrepository "letthemcook/internal/user/repository"

	"letthemcook/pkg/db"
	"letthemcook/pkg/middleware"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Info().Msg("letthemcook API starting")

	cfg := config.Load()
	if cfg.TokenSecret == "" {
		log.Fatal().Msg("TOKEN_SECRET is not set")
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := db.EnsureSchema(database); err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}
	log.Info().Msg("connected to PostgreSQL")

	// --- ИНИЦИАЛИЗАЦИЯ СЛОЁВ ---
	tokenRepo := tokenrepository.NewPostgresTokenRepository(database)
	codec := token.NewCodec(cfg.TokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tokenManager := token.NewManager(codec, tokenRepo)
	gate := middleware.NewGate(tokenManager)

	userRepo := userrepository.NewPostgresUserRepository(database)
	userService := userservice.NewUserService(userRepo)
	userHandler := userhttp.NewHandler(userService, tokenManager, gate)

	recipeRepo := recipepostgres.NewPostgresRecipeRepository(database)
	recipeService := recipeservice.NewRecipeService(recipeRepo)
	recipeHandler := recipehttp.NewHandler(recipeService)

	reviewRepo := reviewpostgres.NewPostgresReviewRepository(database)
	reviewService := reviewservice.NewReviewService(reviewRepo)
	reviewHandler := reviewhttp.NewHandler(reviewService)

	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// --- РОУТЕР ---
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Refresh-Token", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.ValidateRequest)

	// Публичные роуты
	r.Group(func(pr chi.Router) {
		pr.Use(authLimiter.Middleware)
		pr.Post("/auth/register", userHandler.Register)
		pr.Post("/auth/login", userHandler.Login)
		pr.Get("/auth/check_at", userHandler.CheckAccessToken)
		pr.Get("/auth/check_rt", userHandler.CheckRefreshToken)
		pr.Get("/auth/refresh_tokens", userHandler.RefreshTokens)
	})

	// Защищённая группа маршрутов
	r.Group(func(pr chi.Router) {
		pr.Use(gate.RequireAccess)

		pr.Get("/users/{id}", userHandler.GetUser)
		pr.Put("/users/{id}", userHandler.UpdateUser)
		pr.Put("/users/{id}/password", userHandler.ChangePassword)
		pr.Delete("/users/{id}", userHandler.DeleteUser)

		pr.Post("/recipes", recipeHandler.Create)
		pr.Get("/recipes", recipeHandler.List)
		pr.Get("/recipes/{id}", recipeHandler.Get)
		pr.Put("/recipes/{id}", recipeHandler.Update)
		pr.Delete("/recipes/{id}", recipeHandler.Delete)

		pr.Post("/recipes/{id}/reviews", reviewHandler.Create)
		pr.Get("/recipes/{id}/reviews", reviewHandler.ListByRecipe)
		pr.Delete("/reviews/{id}", reviewHandler.Delete)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if cfg.MetricsUser != "" {
		r.With(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass)).
			Get("/metrics", promhttp.Handler().ServeHTTP)
	}

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	// Graceful shutdown на сигналы ОС
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Info().Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("server running")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped unexpectedly")
	}

	log.Info().Msg("server stopped")
}
