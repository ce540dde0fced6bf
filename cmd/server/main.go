package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"storyshare/internal/auth"
	"storyshare/internal/config"
	"storyshare/internal/email"
	"storyshare/internal/httpapi"
	"storyshare/internal/service"
	"storyshare/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL)

	var (
		authSvc    *service.AuthService
		friendsSvc *service.FriendsService
		storySvc   *service.StoryService
		commentSvc *service.CommentService
		ratingSvc  *service.RatingService
		usersSvc   *service.UsersService
		resetSvc   *service.PasswordResetService
		dbPing     func(context.Context) error
	)

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		users := postgres.NewUsersStore(pgPool)
		friendships := postgres.NewFriendshipsStore(pgPool)
		stories := postgres.NewStoriesStore(pgPool)
		comments := postgres.NewCommentsStore(pgPool)
		ratings := postgres.NewRatingsStore(pgPool)
		resets := postgres.NewPasswordResetStore(pgPool)

		authSvc = &service.AuthService{
			Users:  users,
			Tokens: tokens,
		}
		friendsSvc = &service.FriendsService{
			Users:       users,
			Friendships: friendships,
		}
		storySvc = &service.StoryService{
			Stories:  stories,
			Comments: comments,
			Friends:  friendsSvc,
		}
		commentSvc = &service.CommentService{
			Comments: comments,
			Stories:  storySvc,
		}
		ratingSvc = &service.RatingService{
			Ratings:  ratings,
			Stories:  storySvc,
			Comments: comments,
		}
		usersSvc = &service.UsersService{Store: users}
		resetSvc = &service.PasswordResetService{
			Store: resets,
			Users: users,
		}
		dbPing = pgPool.Ping
	}

	emailSvc := &service.EmailService{
		Settings: email.Settings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			TLSMode:  cfg.SMTP.TLSMode,
		},
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:         logger,
		IsProd:         cfg.IsProd(),
		DBPing:         dbPing,
		Auth:           authSvc,
		Friends:        friendsSvc,
		Stories:        storySvc,
		Comments:       commentSvc,
		Ratings:        ratingSvc,
		Users:          usersSvc,
		Reset:          resetSvc,
		Email:          emailSvc,
		PublicURL:      cfg.PublicURL,
		CookieSecure:   cfg.CookieSecure(),
		TokenTTL:       cfg.JWTTTL,
		CORSOrigin:     cfg.CORSOrigin,
		GoogleClientID: cfg.GoogleClientID,
		AppleServiceID: cfg.AppleServiceID,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
