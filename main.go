// This is the main entry point of the vidtube application.
// It loads configuration, opens the database pool, builds services and handlers,
// mounts them on the chi router and serves HTTP until SIGINT/SIGTERM. The `migrate`
// command applies or rolls back the embedded schema migrations without starting the server.
// @title VidTube API
// @version 1.0
// @description Video sharing backend: users, videos, comments, likes, playlists, subscriptions, tweets and a channel dashboard.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/urfave/cli/v2"

	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/background"
	"github.com/user/vidtube-go/comments"
	"github.com/user/vidtube-go/config"
	"github.com/user/vidtube-go/dashboard"
	"github.com/user/vidtube-go/db"
	_ "github.com/user/vidtube-go/docs" // Registers the Swagger spec
	"github.com/user/vidtube-go/healthcheck"
	"github.com/user/vidtube-go/likes"
	"github.com/user/vidtube-go/logger"
	"github.com/user/vidtube-go/media"
	"github.com/user/vidtube-go/playlists"
	"github.com/user/vidtube-go/response"
	"github.com/user/vidtube-go/subscriptions"
	"github.com/user/vidtube-go/tweets"
	"github.com/user/vidtube-go/upload"
	"github.com/user/vidtube-go/users"
	"github.com/user/vidtube-go/videos"
)

func main() {
	// .env is a development convenience; in production variables are set directly.
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:       cfg.Server.LogLevel,
		Development: cfg.Server.IsDevelopment(),
	})
	if envErr != nil {
		log.Debug().Err(envErr).Msg(".env file not loaded")
	}

	app := &cli.App{
		Name:  "vidtube",
		Usage: "video sharing REST API",
		// Running the binary without a command starts the server.
		Action: func(c *cli.Context) error {
			return serve(c.Context, cfg, log)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "apply pending migrations and start the HTTP server",
				Action: func(c *cli.Context) error {
					return serve(c.Context, cfg, log)
				},
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply every pending migration",
						Action: func(c *cli.Context) error {
							return db.RunMigrations(log.WithContext(c.Context), cfg.Database.DSN())
						},
					},
					{
						Name:      "down",
						Usage:     "roll back migrations",
						ArgsUsage: "[steps]",
						Action: func(c *cli.Context) error {
							steps := 1
							if c.Args().Present() {
								n, err := strconv.Atoi(c.Args().First())
								if err != nil || n < 0 {
									return cli.Exit("steps must be a non-negative integer (0 rolls back everything)", 2)
								}
								steps = n
							}
							return db.RollbackMigrations(log.WithContext(c.Context), cfg.Database.DSN(), steps)
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("vidtube exited with error")
	}
}

// serve runs migrations, wires every module and blocks until the process is signalled.
func serve(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) error {
	ctx = log.WithContext(ctx)

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	store, err := media.NewStore(ctx, cfg.Media)
	if err != nil {
		return fmt.Errorf("create media store: %w", err)
	}
	mediaClient := media.NewClient(store, cfg.Media.PublicBaseURL)

	if err := os.MkdirAll(cfg.Upload.Dir, 0o750); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	// Scratch files left behind by crashed requests are swept in the background.
	sweeperStop := make(chan struct{})
	var sweeperDone interface{ Wait() }
	if cfg.Upload.SweepInterval > 0 {
		sweeper := &background.ScratchSweeper{
			Dir:      cfg.Upload.Dir,
			Interval: cfg.Upload.SweepInterval,
			MaxAge:   cfg.Upload.MaxAge,
			Log:      log.With().Str("component", "scratch_sweeper").Logger(),
		}
		sweeperDone = sweeper.Start(sweeperStop)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      newRouter(cfg, log, pool, mediaClient),
		ReadTimeout:  cfg.Upload.Timeout, // video uploads are large
		WriteTimeout: cfg.Upload.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("server shutting down")
	case err := <-serverErr:
		if err != nil {
			close(sweeperStop)
			return fmt.Errorf("listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	close(sweeperStop)
	shutdownErr := srv.Shutdown(shutdownCtx)
	if sweeperDone != nil {
		sweeperDone.Wait()
	}
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown: %w", shutdownErr)
	}

	log.Info().Msg("server stopped gracefully")
	return nil
}

func newRouter(cfg *config.AppConfig, log zerolog.Logger, pool *pgxpool.Pool, mediaClient *media.Client) http.Handler {
	authService := auth.NewService(pool, *cfg.Auth)
	authHandler := auth.NewHandler(authService, mediaClient, *cfg.Auth)
	userHandlers := users.NewUserHandlers(users.NewUserService(pool), mediaClient)
	videoHandlers := videos.NewVideoHandlers(videos.NewVideoService(pool), mediaClient)
	commentHandler := comments.NewCommentHandler(comments.NewCommentService(pool))
	likeHandlers := likes.NewLikeHandlers(likes.NewLikeService(pool))
	playlistHandlers := playlists.NewPlaylistHandlers(playlists.NewPlaylistService(pool))
	subscriptionHandlers := subscriptions.NewSubscriptionHandlers(subscriptions.NewSubscriptionService(pool))
	tweetHandlers := tweets.NewTweetHandlers(tweets.NewTweetService(pool))
	dashboardHandlers := dashboard.NewDashboardHandlers(dashboard.NewDashboardService(pool))
	healthHandler := healthcheck.NewHandler(pool)

	requireAuth := auth.Middleware(authService)
	optionalAuth := auth.OptionalMiddleware(authService)
	mw := newRouteMiddleware(cfg.Server, cfg.Upload)

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes. The request
	// timeout is not global: upload routes carry their own, longer one.
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log)...)
	r.Use(response.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(response.NotFound)
	r.MethodNotAllowed(response.MethodNotAllowed)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.With(mw.standard).Get("/healthcheck", healthHandler.HandleHealthcheck())

		r.Route("/users", func(r chi.Router) {
			r.With(mw.uploads(upload.Field{Name: "avatar", MaxCount: 1}, upload.Field{Name: "coverImage", MaxCount: 1})).
				Post("/register", authHandler.HandleRegister())
			r.With(mw.standard).Post("/login", authHandler.HandleLogin())
			r.With(mw.standard).Post("/refresh-token", authHandler.HandleRefreshToken())

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(mw.uploads(upload.Field{Name: "avatar", MaxCount: 1})).
					Patch("/avatar", userHandlers.HandleUpdateAvatar())
				r.With(mw.uploads(upload.Field{Name: "coverImage", MaxCount: 1})).
					Patch("/cover-image", userHandlers.HandleUpdateCoverImage())

				r.Group(func(r chi.Router) {
					r.Use(mw.standard)
					r.Post("/logout", authHandler.HandleLogout())
					r.Post("/change-password", authHandler.HandleChangePassword())
					r.Get("/current-user", userHandlers.HandleGetCurrentUser())
					r.Patch("/update-account", userHandlers.HandleUpdateAccount())
					r.Get("/c/{username}", userHandlers.HandleGetChannelProfile())
					r.Get("/history", userHandlers.HandleGetWatchHistory())
				})
			})
		})

		r.Route("/videos", func(r chi.Router) {
			// Anonymous callers may browse; owners additionally see their unpublished videos.
			r.With(mw.standard, optionalAuth).Get("/", videoHandlers.HandleListVideos())
			r.With(mw.standard, optionalAuth).Get("/{videoId}", videoHandlers.HandleGetVideo())

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(mw.uploads(upload.Field{Name: "videoFile", MaxCount: 1}, upload.Field{Name: "thumbnail", MaxCount: 1})).
					Post("/", videoHandlers.HandlePublishVideo())
				r.With(mw.uploads(upload.Field{Name: "thumbnail", MaxCount: 1})).
					Patch("/{videoId}", videoHandlers.HandleUpdateVideo())
				r.With(mw.standard).Delete("/{videoId}", videoHandlers.HandleDeleteVideo())
				r.With(mw.standard).Patch("/toggle/publish/{videoId}", videoHandlers.HandleTogglePublish())
			})
		})

		protected := map[string]interface{ RegisterRoutes(chi.Router) }{
			"/comments":      commentHandler,
			"/likes":         likeHandlers,
			"/playlist":      playlistHandlers,
			"/subscriptions": subscriptionHandlers,
			"/tweets":        tweetHandlers,
			"/dashboard":     dashboardHandlers,
		}
		for prefix, h := range protected {
			r.Route(prefix, func(r chi.Router) {
				r.Use(mw.standard, requireAuth)
				h.RegisterRoutes(r)
			})
		}
	})

	return r
}

// routeMiddleware holds the per-route deadline chains.
type routeMiddleware struct {
	// standard bounds ordinary requests by the server's request timeout.
	standard func(http.Handler) http.Handler
	// uploads saves the named multipart fields under the upload deadline, so a slow
	// video body does not reach the media host with an expired context.
	uploads func(fields ...upload.Field) func(http.Handler) http.Handler
}

func newRouteMiddleware(server *config.ServerConfig, up *config.UploadConfig) routeMiddleware {
	return routeMiddleware{
		standard: middleware.Timeout(server.RequestTimeout),
		uploads: func(fields ...upload.Field) func(http.Handler) http.Handler {
			deadline := middleware.Timeout(up.Timeout)
			save := upload.Fields(up.Dir, up.MaxBytes, fields...)
			return func(next http.Handler) http.Handler {
				return deadline(save(next))
			}
		},
	}
}
