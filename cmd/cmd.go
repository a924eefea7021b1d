package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-social-backend/internal/auth"
	"photo-social-backend/internal/config"
	"photo-social-backend/internal/db"
	"photo-social-backend/internal/handlers"
	"photo-social-backend/internal/middleware"
	"photo-social-backend/internal/repository"
	"photo-social-backend/internal/services"
	"photo-social-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "photo-social",
	Short: "Backend for a social photo-sharing app",
	Long: `photo-social serves the HTTP API for posts, photos, likes, comments,
collections and accounts, backed by PostgreSQL and S3 compatible storage.`,
	SilenceUsage: true,
}

// serveCmd starts the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return Run(cmd.Context(), cfg)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.Log)
	return cfg, nil
}

// Run wires the application and serves until SIGINT or SIGTERM
func Run(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Connect to database
	pool, err := db.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info().Msg("Database connection established")

	store, err := storage.NewS3Store(ctx, cfg.AWS)
	if err != nil {
		return fmt.Errorf("failed to create content store: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	locationRepo := repository.NewLocationRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	photoRepo := repository.NewPhotoRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	likeRepo := repository.NewLikeRepository(pool)
	collectionRepo := repository.NewCollectionRepository(pool)

	// Initialize services
	locationService, err := services.NewLocationService(locationRepo, cfg.Cache.LocationSize, cfg.Cache.LocationTTL)
	if err != nil {
		return err
	}
	photoService := services.NewPhotoService(photoRepo, store)
	likeService := services.NewLikeService(likeRepo)
	commentService := services.NewCommentService(commentRepo)
	postService := services.NewPostService(postRepo, userRepo, locationService, photoService, commentService, likeService)
	collectionService := services.NewCollectionService(collectionRepo, postRepo, userRepo, photoService)
	userService := services.NewUserService(
		userRepo,
		auth.NewBcryptHasher(0),
		auth.NewJWTIssuer(cfg.JWT.Secret),
		cfg.JWT.TokenTTL,
	)
	permissionService := services.NewPermissionService(userRepo, postRepo, photoRepo, commentRepo, collectionRepo)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, permissionService)
	postHandler := handlers.NewPostHandler(postService, likeService, commentService, permissionService)
	photoHandler := handlers.NewPhotoHandler(photoService, permissionService)
	collectionHandler := handlers.NewCollectionHandler(collectionService, permissionService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.Register)
		r.Post("/users/ghost", userHandler.CreateGhost)
		r.Post("/auth/login", userHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Route("/users/{user_id}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Delete("/", userHandler.DeleteUser)
				r.Post("/upgrade", userHandler.Upgrade)
				r.Patch("/display-name", userHandler.UpdateDisplayName)
				r.Get("/collections", collectionHandler.ListUserCollections)
			})

			r.Get("/posts", postHandler.ListPosts)
			r.Post("/posts", postHandler.CreatePost)
			r.Route("/posts/{post_id}", func(r chi.Router) {
				r.Get("/", postHandler.GetPost)
				r.Put("/", postHandler.UpdatePost)
				r.Delete("/", postHandler.DeletePost)
				r.Get("/likes", postHandler.GetLikes)
				r.Post("/likes", postHandler.LikePost)
				r.Delete("/likes", postHandler.UnlikePost)
				r.Get("/comments", postHandler.ListComments)
				r.Post("/comments", postHandler.CreateComment)
				r.Get("/photos", photoHandler.ListPhotos)
			})

			r.Delete("/comments/{comment_id}", postHandler.DeleteComment)
			r.Patch("/photos/{photo_id}/order", photoHandler.UpdateOrder)
			r.Delete("/photos/{photo_id}", photoHandler.DeletePhoto)

			r.Post("/collections", collectionHandler.CreateCollection)
			r.Route("/collections/{collection_id}", func(r chi.Router) {
				r.Get("/", collectionHandler.GetCollection)
				r.Put("/", collectionHandler.UpdateCollection)
				r.Delete("/", collectionHandler.DeleteCollection)
			})
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let background photo removals finish before the process exits
	photoService.Wait()

	log.Info().Msg("Server exited")
	return nil
}

// setupLogger configures zerolog logger
func setupLogger(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// requestLogger logs each request through zerolog
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", chiMiddleware.GetReqID(r.Context())).
			Msg("Request handled")
	})
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
