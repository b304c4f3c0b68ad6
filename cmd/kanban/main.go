// Command kanban runs the kanban board: a fiber server for browser
// frontends and a terminal renderer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/kanban-board/internal/api/http"
	"github.com/spec-kit/kanban-board/internal/api/http/handlers"
	"github.com/spec-kit/kanban-board/internal/auth"
	"github.com/spec-kit/kanban-board/internal/config"
	"github.com/spec-kit/kanban-board/internal/domain"
	"github.com/spec-kit/kanban-board/internal/observability"
	"github.com/spec-kit/kanban-board/internal/render"
	apperrors "github.com/spec-kit/kanban-board/pkg/util/errorutil"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kanban",
		Short:         "Kanban board for a REST ticket backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serveCmd(), boardCmd(), tokenCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kanban version %s\n", version)
		},
	})
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the board API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), serve)
		},
	}
}

func boardCmd() *cobra.Command {
	var (
		groupBy string
		sortBy  string
		width   int
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the board to the terminal",
		Long: `Loads tickets and users from the backend and prints the board.

--group-by and --sort-by change the stored view preferences before printing,
so the next run (and the served board) use them too.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				loadErr := app.board.Initialize(ctx)

				if groupBy != "" {
					if err := app.board.SetGroupBy(ctx, domain.GroupBy(groupBy)); err != nil {
						return err
					}
				}
				if sortBy != "" {
					if err := app.board.SetSortBy(ctx, domain.SortBy(sortBy)); err != nil {
						return err
					}
				}

				var message string
				if loadErr != nil {
					message = apperrors.ToDomainError(loadErr).Message
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, render.NewTerminal(out, width).Render(app.board.View(), message))
				return loadErr
			})
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "", "Group columns by status, user or priority")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "Order cards by priority or title")
	cmd.Flags().IntVar(&width, "width", 0, "Column width in cells")
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the board API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tm := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
			token, expiresAt, err := tm.GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nexpires %s\n", token, expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "board-ui", "Token subject")
	return cmd
}

func withApplication(ctx context.Context, fn func(context.Context, *application) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}

func serve(ctx context.Context, app *application) error {
	cfg, logger := app.cfg, app.logger

	if err := app.board.Initialize(ctx); err != nil {
		logger.Warn("initial board load failed; serving with the error set", zap.Error(err))
	}

	var authMiddleware *auth.AuthMiddleware
	if cfg.Auth.Enabled {
		authMiddleware = auth.NewAuthMiddleware(auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes))
	}

	server := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(server, logger, app.metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"preferences": app.preferences,
		}),
		Board:          handlers.NewBoardHandler(app.board, app.activity),
		Metrics:        handlers.NewMetricsHandler(app.metrics),
		AuthMiddleware: authMiddleware,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("backend", cfg.API.Endpoint()))
		listenErr <- server.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("fiber listen: %w", err)
		}
		return nil
	case sig := <-shutdownSignal():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	return server.ShutdownWithTimeout(10 * time.Second)
}

func shutdownSignal() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
