package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/handlers"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/logging"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/models/serviceresponse"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP job trigger",
	Long:  "Exposes POST /jobs/<job> so an HTTP scheduler (Cloud Scheduler, etc.) can trigger jobs.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(os.Stdout)
		if err != nil {
			return err
		}
		defer a.logger.Sync()
		return runServer(cmd.Context(), a)
	},
}

func newMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler(a))
	handlers.NewJobsHandler(a.runner).Register(mux)
	return mux
}

// runServer bloquea hasta que ctx se cancela y el servidor termina
func runServer(ctx context.Context, a *app) error {
	server := &http.Server{
		Addr:         ":" + a.cfg.App.Port,
		Handler:      withLogging(newMux(a)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Minute, // un job puede tardar hasta 2 minutos
		IdleTimeout:  120 * time.Second,
	}

	// GRACEFUL SHUTDOWN
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()

		zap.L().Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	zap.L().Info("Server started", zap.String("port", a.cfg.App.Port))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().Error("Server stopped unexpectedly", zap.Error(err))
		return err
	}

	<-done
	zap.L().Info("Server exited")
	return nil
}

// MIDDLEWARE: Logging con Trace ID compatible con GCP
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Formato: TRACE_ID/SPAN_ID;o=TRACE_TRUE
		traceID := r.Header.Get("X-Cloud-Trace-Context")
		if slashIdx := strings.IndexByte(traceID, '/'); slashIdx != -1 {
			traceID = traceID[:slashIdx]
		}
		if traceID == "" {
			traceID = fmt.Sprintf("%d-%d", time.Now().UnixNano(), os.Getpid())
		}

		projectID := os.Getenv("GCP_PROJECT")
		if projectID == "" {
			projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
		}

		ctx := logging.WithTraceID(r.Context(), traceID)

		traceFields := []zap.Field{}
		if projectID != "" {
			traceFields = append(traceFields, zap.String("logging.googleapis.com/trace", fmt.Sprintf("projects/%s/traces/%s", projectID, traceID)))
		}

		zap.L().Info("Request started", append([]zap.Field{
			zap.String("httpRequest.requestMethod", r.Method),
			zap.String("httpRequest.requestUrl", r.URL.Path),
			zap.String("httpRequest.remoteIp", r.RemoteAddr),
			zap.String("httpRequest.userAgent", r.UserAgent()),
			zap.String("trace_id", traceID),
		}, traceFields...)...)

		next.ServeHTTP(w, r.WithContext(ctx))

		duration := time.Since(start)
		zap.L().Info("Request completed", append([]zap.Field{
			zap.String("httpRequest.requestMethod", r.Method),
			zap.String("httpRequest.requestUrl", r.URL.Path),
			zap.Int64("httpRequest.latency.milliseconds", duration.Milliseconds()),
			zap.Float64("httpRequest.latency.seconds", duration.Seconds()),
			zap.String("trace_id", traceID),
		}, traceFields...)...)
	})
}

// HEALTH CHECK
func healthHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := serviceresponse.HealthResponse{
			Status:  "healthy",
			Service: serviceName,
			Version: version,
			Breaker: a.client.BreakerState(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
