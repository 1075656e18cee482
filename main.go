package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"

	"github.com/testifyhq/testify/apikeys"
	"github.com/testifyhq/testify/auth"
	"github.com/testifyhq/testify/config"
	"github.com/testifyhq/testify/email"
	"github.com/testifyhq/testify/handlers"
	authMiddleware "github.com/testifyhq/testify/middleware"
	"github.com/testifyhq/testify/models"
	"github.com/testifyhq/testify/notifier"
	"github.com/testifyhq/testify/store"
)

const (
	jwtSecretConfigKey    = "jwt_secret"
	apiKeySecretConfigKey = "api_key_secret"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize store (PostgreSQL if configured, otherwise memory)
	var st store.Store
	var closeDB func()

	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		conn, err := pgStore.Pool().Acquire(context.Background())
		if err != nil {
			log.Fatalf("Failed to acquire database connection: %v", err)
		}

		if err := store.RunMigrations(context.Background(), conn.Conn()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		conn.Release()

		st = pgStore
		closeDB = func() { pgStore.Close() }
		log.Println("Using PostgreSQL storage")
	} else {
		st = store.NewMemoryStore()
		log.Println("Using in-memory storage")
	}

	// Signing secrets survive restarts through the store; env vars override
	jwtSecret, err := initSecret(st, jwtSecretConfigKey, cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	apiKeySecret, err := initSecret(st, apiKeySecretConfigKey, cfg.APIKeySecret)
	if err != nil {
		log.Fatalf("Failed to initialize API key secret: %v", err)
	}

	jwtService := auth.NewJWTService(jwtSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)

	keyService, err := apikeys.NewService(st, apikeys.Config{
		DisplayPrefix:   cfg.APIKeyDisplayPrefix,
		PrefixBodyChars: cfg.APIKeyPrefixBodyChars,
		SecretLength:    cfg.APIKeySecretLength,
		Secret:          []byte(apiKeySecret),
	})
	if err != nil {
		log.Fatalf("Failed to initialize API key service: %v", err)
	}

	notificationManager := notifier.NewNotificationManager(
		cfg.NotificationWebhookURL,
		cfg.NotificationTimeout,
	)

	// Email service is optional; stays nil without SMTP configuration
	var emailService *email.EmailService
	if cfg.SMTPHost != "" {
		emailService = email.NewEmailService(email.EmailConfig{
			SMTPHost:   cfg.SMTPHost,
			SMTPPort:   cfg.SMTPPort,
			SMTPUser:   cfg.SMTPUser,
			SMTPPass:   cfg.SMTPPass,
			FromEmail:  cfg.FromEmail,
			AppBaseURL: cfg.AppBaseURL,
		})
		log.Println("Email service initialized")
	} else {
		log.Println("SMTP not configured, review emails disabled")
	}

	authMw := authMiddleware.NewAuthMiddleware(jwtService, keyService)

	authHandler := handlers.NewAuthHandler(st, jwtService)
	apiKeyHandler := handlers.NewAPIKeyHandler(st, keyService)
	testimonialHandler := handlers.NewTestimonialHandler(st, notificationManager, emailService)
	taxonomyHandler := handlers.NewTaxonomyHandler(st)
	userHandler := handlers.NewUserHandler(st)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.HealthCheck)

	// Auth routes (public, rate limited)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, 1*time.Minute))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
	})

	// Public submission endpoint, authenticated by API key
	r.Route("/api/submit", func(r chi.Router) {
		r.Use(httprate.LimitByIP(60, 1*time.Minute))
		r.Use(authMw.RequireAPIKey)
		r.Post("/", testimonialHandler.Submit)
	})

	// Protected API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(authMw.RequireAuth)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/me", authHandler.Me)

		r.Route("/api-keys", func(r chi.Router) {
			r.Get("/", apiKeyHandler.List)
			r.Post("/", apiKeyHandler.Create)
			r.With(authMw.RequireRole(models.RoleAdmin)).Delete("/{id}", apiKeyHandler.Revoke)
		})

		r.Route("/testimonials", func(r chi.Router) {
			r.Get("/", testimonialHandler.List)
			r.Get("/{id}", testimonialHandler.Get)
			r.Patch("/{id}", testimonialHandler.Update)
			r.With(authMw.RequireRole(models.RoleModerator)).Put("/{id}/status", testimonialHandler.UpdateStatus)
			r.With(authMw.RequireRole(models.RoleModerator)).Delete("/{id}", testimonialHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authMw.RequireRole(models.RoleAdmin))
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.CreateMember)
			r.Get("/{id}", userHandler.Get)
			r.Patch("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", taxonomyHandler.ListCategories)
			r.Post("/", taxonomyHandler.CreateCategory)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", taxonomyHandler.ListTags)
			r.Post("/", taxonomyHandler.CreateTag)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Drain pending notifications before closing the server
	notifyShutdownCtx, notifyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer notifyCancel()

	if err := notificationManager.Shutdown(notifyShutdownCtx); err != nil {
		log.Printf("Warning: Notification manager shutdown error: %v", err)
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if closeDB != nil {
		closeDB()
	}

	log.Println("Server exited")
}

// initSecret resolves a signing secret: an explicit config value wins and is
// persisted, otherwise the stored value is reused, otherwise a fresh secret
// is generated and saved
func initSecret(st store.Store, configKey, configSecret string) (string, error) {
	if configSecret != "" {
		if err := st.SetConfig(configKey, configSecret); err != nil {
			return "", fmt.Errorf("failed to persist secret: %w", err)
		}
		return configSecret, nil
	}

	stored, err := st.GetConfig(configKey)
	if err == nil && stored != "" {
		return stored, nil
	}
	if err != nil && err != store.ErrNotFound {
		return "", fmt.Errorf("failed to read stored secret: %w", err)
	}

	secret, err := generateRandomSecret(32)
	if err != nil {
		return "", err
	}

	if err := st.SetConfig(configKey, secret); err != nil {
		return "", fmt.Errorf("failed to persist secret: %w", err)
	}

	return secret, nil
}

// generateRandomSecret generates a base64-encoded random secret
func generateRandomSecret(numBytes int) (string, error) {
	bytes := make([]byte, numBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}
