package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/logging"
)

// Nombres con los que se invocan los jobs desde el CLI y el servidor HTTP
const (
	JobHeartbeat = "heartbeat"
	JobLowStock  = "lowstock"
	JobReport    = "report"
	JobSelfTest  = "selftest"
)

var ErrUnknownJob = errors.New("unknown job")

// JobFunc es el contrato de un job: sin argumentos, nunca falla
type JobFunc func(ctx context.Context) string

// Result describe una ejecución
type Result struct {
	Job       string
	RunID     string
	Output    string
	StartedAt time.Time
	Duration  time.Duration
}

type Runner struct {
	svc    *Service
	jobs   map[string]JobFunc
	logger *zap.Logger
}

func NewRunner(svc *Service, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		svc:    svc,
		jobs:   make(map[string]JobFunc),
		logger: logger,
	}
	r.Register(JobHeartbeat, svc.Heartbeat)
	r.Register(JobLowStock, func(ctx context.Context) string {
		return strings.Join(svc.UpdateLowStock(ctx), "\n")
	})
	r.Register(JobReport, svc.GenerateReport)
	r.Register(JobSelfTest, svc.SelfTest)
	return r
}

// Register agrega o reemplaza un job
func (r *Runner) Register(name string, fn JobFunc) {
	r.jobs[name] = fn
}

// Names devuelve los jobs registrados ordenados
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run ejecuta un job de forma síncrona. El único error posible es
// ErrUnknownJob; un panic dentro del job se convierte en línea de error
// escrita en el log del job.
func (r *Runner) Run(ctx context.Context, name string) (res Result, err error) {
	fn, ok := r.jobs[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}

	res = Result{
		Job:       name,
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	ctx = logging.WithJobFields(ctx, name, res.RunID)
	logger := logging.FromContext(ctx, r.logger)

	logger.Info("job started")

	defer func() {
		res.Duration = time.Since(res.StartedAt)
		if rec := recover(); rec != nil {
			logger.Error("job panicked", zap.Any("panic", rec), zap.Stack("stack"))
			res.Output = fmt.Sprintf("%s - ERROR running %s: %v", r.svc.now().Format(TimestampLayout), name, rec)
			r.svc.recordFailure(name, res.Output)
			return
		}
		logger.Info("job completed", zap.Duration("duration", res.Duration))
	}()

	res.Output = fn(ctx)
	return res, nil
}
