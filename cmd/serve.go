/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/keytrans/internal/config"
	"github.com/valpere/keytrans/internal/server"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP translation endpoint",
	Long: `Run an HTTP server exposing:

  POST /translate   {"text": "..."} -> {"translation": "...", "keywords": [...]}
  GET  /health

CORS is wide open (any origin, credentials allowed); do not expose it publicly.
The server refuses to start without API_KEY.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		gin.SetMode(gin.ReleaseMode)

		svc := buildService(cfg, logger)
		r := server.New(svc, logger)

		srv := &http.Server{
			Addr:        cfg.Server.Addr(),
			Handler:     r,
			ReadTimeout: 15 * time.Second,
			// A request may legitimately wait for the full upstream timeout.
			WriteTimeout: cfg.Upstream.Timeout + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case sig := <-quit:
			logger.Info("Shutting down server...", zap.String("signal", sig.String()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		logger.Info("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Listen host (overrides SERVER_HOST, default 0.0.0.0)")
	serveCmd.Flags().Int("port", 0, "Listen port (overrides SERVER_PORT, default 8000)")
	serveCmd.Flags().String("model", "", "Model identifier (overrides MODEL)")
	serveCmd.Flags().String("base-url", "", "OpenAI-compatible API base URL (overrides BASE_URL)")
	serveCmd.Flags().Bool("lenient", false, "Strip code fences and lead-in text from model replies (overrides LENIENT_PARSE)")
}
