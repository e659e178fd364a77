package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/logging"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/models/serviceresponse"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/service"
	"go.uber.org/zap"
)

// jobTimeout acota una ejecución disparada por HTTP
const jobTimeout = 2 * time.Minute

// JobRunner es la parte del service.Runner que usa el handler
type JobRunner interface {
	Run(ctx context.Context, name string) (service.Result, error)
	Names() []string
}

type JobsHandler struct {
	runner JobRunner
}

func NewJobsHandler(runner JobRunner) *JobsHandler {
	return &JobsHandler{runner: runner}
}

// Register monta las rutas del trigger en mux
func (h *JobsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /jobs", h.ListJobs)
	mux.HandleFunc("POST /jobs/{name}", h.RunJob)
}

func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, serviceresponse.JobList{Jobs: h.runner.Names()})
}

// RunJob ejecuta el job de forma síncrona. Un job que registró un error
// igual responde 200: el error ya está en su log y en output.
func (h *JobsHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	ctx, cancel := context.WithTimeout(r.Context(), jobTimeout)
	defer cancel()

	logger := logging.FromContext(ctx, zap.L())

	result, err := h.runner.Run(ctx, name)
	if err != nil {
		if errors.Is(err, service.ErrUnknownJob) {
			logger.Warn("Unknown job requested", zap.String("job", name))
			writeJSON(w, http.StatusNotFound, serviceresponse.ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Job trigger error", zap.String("job", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, serviceresponse.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, serviceresponse.JobResponse{
		Job:        result.Job,
		RunID:      result.RunID,
		Output:     result.Output,
		StartedAt:  result.StartedAt,
		DurationMS: result.Duration.Milliseconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
