package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/config"
	apperrors "github.com/juancollazo-ch/crm-scheduled-jobs/internal/errors"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/logfile"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/logging"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/models"
)

const (
	// HeartbeatLayout DD/MM/YYYY-HH:MM:SS
	HeartbeatLayout = "02/01/2006-15:04:05"
	// TimestampLayout YYYY-MM-DD HH:MM:SS, usado por el resto de los jobs
	TimestampLayout = "2006-01-02 15:04:05"
)

// CRMAPI es lo que los jobs necesitan de la API GraphQL
type CRMAPI interface {
	Hello(ctx context.Context) (*models.HelloResponse, error)
	UpdateLowStockProducts(ctx context.Context) (*models.LowStockUpdate, error)
	FetchReportData(ctx context.Context) (*models.ReportData, error)
}

// Service agrupa los jobs y el contexto explícito que necesitan.
// Ningún método devuelve error: toda falla termina en una línea de log.
type Service struct {
	client CRMAPI
	logger *zap.Logger
	now    func() time.Time
	stdout io.Writer

	heartbeatLog   *logfile.Appender
	lowStockLog    *logfile.Appender
	reportLog      *logfile.Appender
	reportErrorLog *logfile.Appender
	selfTestLog    *logfile.Appender
}

type Option func(*Service)

// WithClock reemplaza time.Now (tests)
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStdout reemplaza os.Stdout como destino de los prints y del fallback
func WithStdout(w io.Writer) Option {
	return func(s *Service) { s.stdout = w }
}

func NewService(client CRMAPI, paths config.LogPaths, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	reportErrorPath := paths.ReportError
	if reportErrorPath == "" {
		reportErrorPath = paths.Report
	}

	s := &Service{
		client:         client,
		logger:         logger,
		now:            time.Now,
		stdout:         os.Stdout,
		heartbeatLog:   logfile.NewAppender(paths.Heartbeat),
		lowStockLog:    logfile.NewAppender(paths.LowStock),
		reportLog:      logfile.NewAppender(paths.Report),
		reportErrorLog: logfile.NewAppender(reportErrorPath),
		selfTestLog:    logfile.NewAppender(paths.SelfTest),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Heartbeat escribe "<ts> CRM is alive" anotado con el resultado de { hello }.
// Devuelve la línea escrita.
func (s *Service) Heartbeat(ctx context.Context) string {
	logger := logging.FromContext(ctx, s.logger)

	msg := fmt.Sprintf("%s CRM is alive", s.now().Format(HeartbeatLayout))

	// El chequeo GraphQL es opcional: si falla, el heartbeat igual se escribe
	resp, err := s.client.Hello(ctx)
	if err != nil {
		logger.Warn("heartbeat graphql check failed", zap.Error(err))
		msg += " - GraphQL check failed: " + err.Error()
	} else {
		hello := "No response"
		if resp.Hello != nil {
			hello = *resp.Hello
		}
		msg += " - GraphQL hello: " + hello
	}

	if err := logfile.WriteOrPrint(s.heartbeatLog, s.stdout, "Failed to write heartbeat log", msg); err != nil {
		logger.Error("heartbeat log write failed", zap.String("path", s.heartbeatLog.Path()), zap.Error(err))
	}
	return msg
}

// UpdateLowStock dispara updateLowStockProducts y registra el resultado.
// Todas las líneas de una invocación comparten el mismo timestamp.
func (s *Service) UpdateLowStock(ctx context.Context) []string {
	logger := logging.FromContext(ctx, s.logger)
	ts := s.now().Format(TimestampLayout)

	var lines []string
	update, err := s.client.UpdateLowStockProducts(ctx)
	switch {
	case err == nil:
		lines = append(lines, stamp(ts, *update.Message))
		for _, p := range update.UpdatedProducts {
			lines = append(lines, stamp(ts, fmt.Sprintf("%s restocked to %d", *p.Name, *p.Stock)))
		}
		logger.Info("low stock products updated", zap.Int("products", len(update.UpdatedProducts)))

	case apperrors.KindOf(err) == apperrors.KindPayload:
		logger.Error("low stock response invalid", zap.Error(err))
		lines = append(lines, stamp(ts, "Error parsing response: "+err.Error()))

	default:
		// protocolo: "<status> <body>"; transporte: texto del error de red
		logger.Error("low stock request failed",
			zap.String("kind", apperrors.KindOf(err).String()),
			zap.Int("status", apperrors.GetStatusCode(err)),
			zap.Error(err),
		)
		lines = append(lines, stamp(ts, "Request failed: "+err.Error()))
	}

	if err := logfile.WriteOrPrint(s.lowStockLog, s.stdout, "Failed to write low stock log", lines...); err != nil {
		logger.Error("low stock log write failed", zap.String("path", s.lowStockLog.Path()), zap.Error(err))
	}
	return lines
}

// GenerateReport cuenta clientes, órdenes y suma revenue. Devuelve la línea
// del reporte, o la línea de error si cualquier paso falla.
func (s *Service) GenerateReport(ctx context.Context) string {
	logger := logging.FromContext(ctx, s.logger)

	totals, err := s.fetchTotals(ctx)
	ts := s.now().Format(TimestampLayout)

	if err == nil {
		line := fmt.Sprintf("%s - Report: %d customers, %d orders, %.2f revenue",
			ts, totals.Customers, totals.Orders, totals.Revenue)

		if err = s.reportLog.Append(line); err == nil {
			logger.Info("crm report generated",
				zap.Int("customers", totals.Customers),
				zap.Int("orders", totals.Orders),
				zap.Float64("revenue", totals.Revenue),
			)
			fmt.Fprintf(s.stdout, "CRM Report generated: %s\n", line)
			return line
		}
	}

	logger.Error("crm report failed", zap.String("kind", apperrors.KindOf(err).String()), zap.Error(err))

	line := fmt.Sprintf("%s - ERROR generating CRM report: %v", ts, err)
	if werr := s.reportErrorLog.Append(line); werr != nil {
		fmt.Fprintf(s.stdout, "Failed to write error log: %v\n", werr)
	}
	fmt.Fprintln(s.stdout, line)
	return line
}

func (s *Service) fetchTotals(ctx context.Context) (models.ReportTotals, error) {
	data, err := s.client.FetchReportData(ctx)
	if err != nil {
		return models.ReportTotals{}, err
	}
	totals, err := data.Totals()
	if err != nil {
		return models.ReportTotals{}, apperrors.ErrPayload("", err)
	}
	return totals, nil
}

// SelfTest escribe una línea fija para verificar que el trigger funciona
func (s *Service) SelfTest(ctx context.Context) string {
	msg := fmt.Sprintf("%s - Celery test task executed successfully", s.now().Format(TimestampLayout))

	if err := s.selfTestLog.Append(msg); err != nil {
		fmt.Fprintf(s.stdout, "Failed to write test log: %v\n", err)
		logging.FromContext(ctx, s.logger).Error("self test log write failed", zap.Error(err))
	}
	fmt.Fprintln(s.stdout, msg)
	return msg
}

// errorLog devuelve el archivo donde el job registra sus fallas; nil si el
// job no es uno de los propios del servicio.
func (s *Service) errorLog(job string) *logfile.Appender {
	switch job {
	case JobHeartbeat:
		return s.heartbeatLog
	case JobLowStock:
		return s.lowStockLog
	case JobReport:
		return s.reportErrorLog
	case JobSelfTest:
		return s.selfTestLog
	}
	return nil
}

// recordFailure deja line en el log del job o, si no tiene o no se puede
// escribir, en stdout.
func (s *Service) recordFailure(job, line string) {
	a := s.errorLog(job)
	if a == nil {
		fmt.Fprintln(s.stdout, line)
		return
	}
	if err := logfile.WriteOrPrint(a, s.stdout, "Failed to write "+job+" log", line); err != nil {
		s.logger.Error("job failure log write failed", zap.String("job", job), zap.String("path", a.Path()), zap.Error(err))
	}
}

func stamp(ts, text string) string {
	return "[" + ts + "] " + text
}
