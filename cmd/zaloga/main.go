package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/zaloga/internal/api"
	"github.com/erazemk/zaloga/internal/config"
	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/events"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/stock"
	"github.com/erazemk/zaloga/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging and returns the logger. If
// logPath is non-empty, all levels are also written to that file; the
// returned cleanup closes it.
func setupLogger(logPath string) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	cleanup := func() {}
	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	logger := slog.New(&levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	})
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			config.Usage(os.Stdout)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		config.Usage(os.Stderr)
		os.Exit(1)
	}

	logger, closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, logger); err != nil {
		slog.Error("server failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DBPath)

	ctx := context.Background()
	if err := bootstrapAdmin(ctx, database, cfg.AdminUser); err != nil {
		return err
	}

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}
	if n, err := store.PurgeRevokedTokens(ctx, database, time.Now()); err != nil {
		slog.Warn("failed to purge revoked tokens", "error", err)
	} else if n > 0 {
		slog.Info("purged expired token revocations", "count", n)
	}

	prevMode, err := store.RecordTransferMode(ctx, database, string(cfg.TransferMode))
	if err != nil {
		return err
	}
	if prevMode != "" && prevMode != string(cfg.TransferMode) {
		slog.Warn("transfer mode changed since last start", "previous", prevMode, "current", cfg.TransferMode)
	}

	dispatcher := events.NewDispatcher(logger,
		store.EventJournal{DB: database},
		events.LogHandler{Logger: logger},
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			slog.Warn("redis unavailable, events will not be published", "addr", cfg.RedisAddr, "error", err)
		} else {
			publisher := events.NewRedisPublisher(client, cfg.RedisChannel)
			dispatcher.Register(publisher)
			slog.Info("publishing events to redis", "addr", cfg.RedisAddr, "channel", publisher.Channel())
		}
	}

	svc := stock.NewService(
		store.NewInventoryStore(database),
		store.Catalog{DB: database},
		dispatcher,
		stock.Options{MaxRetries: cfg.MaxRetries, TransferMode: cfg.TransferMode, Logger: logger},
	)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(api.NewRouter(database, svc, jwtSecret)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "transfer_mode", svc.TransferMode(), "max_retries", cfg.MaxRetries)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// bootstrapAdmin creates the admin account when the database has no users
// and prints its generated password.
func bootstrapAdmin(ctx context.Context, database *sql.DB, username string) error {
	count, err := store.CountUsers(ctx, database)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if _, err := store.CreateUser(ctx, database, username, string(hash), model.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("It can be changed after logging in.")
	fmt.Println()
	return nil
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
