package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/expense-insight/internal/api"
	"github.com/insightdelivered/expense-insight/internal/client"
	"github.com/insightdelivered/expense-insight/internal/upload"
)

func newServeCommand() *cobra.Command {
	var addr, serviceURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web front-end",
		Example: `  # Front-end on :5173 talking to the service on localhost:8000
  expense-insight serve

  # Custom listener and service
  expense-insight serve --addr :8080 --service http://analysis:8000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if serviceURL != "" {
				cfg.Service.URL = serviceURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			previews := upload.NewPreviews()
			sessions := api.NewSessions(previews, cfg.Session.IdleTimeout)
			go sessions.Run(ctx, cfg.Session.SweepInterval)

			h := &api.Handler{
				Analyzer: client.New(cfg.Service.URL, cfg.Service.Timeout),
				Sessions: sessions,
				Previews: previews,
				Store: session.New(session.Config{
					Expiration:     cfg.Session.IdleTimeout,
					CookieHTTPOnly: true,
					CookieSameSite: "Lax",
				}),
				Version: version,
			}
			app := api.NewApp(h, api.Options{
				BodyLimit: cfg.Upload.MaxBytes + 1<<20,
				AccessLog: cfg.Server.AccessLog,
			})

			errCh := make(chan error, 1)
			go func() {
				log.Infof("listening on %s, analysis service %s", cfg.Server.Addr, cfg.Service.URL)
				errCh <- app.Listen(cfg.Server.Addr)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server stopped: %w", err)
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			sessions.CloseAll()
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&serviceURL, "service", "", "analysis service origin (overrides service.url)")
	return cmd
}
