package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/config"
	apperrors "github.com/juancollazo-ch/crm-scheduled-jobs/internal/errors"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/logging"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/retry"
)

// Documentos GraphQL fijos que usan los jobs
const (
	HelloQuery       = `{ hello }`
	LowStockMutation = `mutation { updateLowStockProducts { updatedProducts { name stock } message } }`
	ReportQuery      = `query { allCustomers { edges { node { id } } } allOrders { edges { node { id totalAmount } } } }`
)

// maxErrorBody limita el cuerpo que se copia en un error de protocolo
const maxErrorBody = 512

// maxResponseBody evita leer respuestas sin límite
const maxResponseBody = 10 << 20

type GraphQLClient struct {
	http      *http.Client
	endpoint  string
	attempts  int
	baseDelay time.Duration
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

func NewGraphQLClient(cfg config.GraphQLConfig, logger *zap.Logger) (*GraphQLClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("graphql endpoint is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	maxFailures := cfg.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	c := &GraphQLClient{
		http:      &http.Client{Timeout: cfg.Timeout},
		endpoint:  cfg.Endpoint,
		attempts:  cfg.Attempts,
		baseDelay: cfg.RetryBaseDelay,
		logger:    logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "graphql",
		MaxRequests: 1,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Solo fallos de transporte y 5xx indican que la API está caída
		IsSuccessful: func(err error) bool {
			return err == nil || !apperrors.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c, nil
}

// Do envía un documento GraphQL y decodifica data en dest.
// Todos los errores devueltos son *errors.JobError.
func (c *GraphQLClient) Do(
	ctx context.Context,
	query string,
	variables map[string]interface{},
	dest interface{},
) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return apperrors.ErrPayload("error encoding request", err)
	}

	logger := logging.FromContext(ctx, c.logger)

	var raw []byte
	err = retry.WithRetry(ctx, c.attempts, c.baseDelay, apperrors.IsRetryable, func() error {
		start := time.Now()
		out, err := c.breaker.Execute(func() (interface{}, error) {
			return c.post(ctx, body)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				err = apperrors.ErrTransport("", err).WithRetryable(false)
			}
			logger.Warn("graphql request failed",
				zap.String("endpoint", c.endpoint),
				zap.Int("status", apperrors.GetStatusCode(err)),
				zap.Duration("latency", time.Since(start)),
				zap.Error(err),
			)
			return err
		}
		raw = out.([]byte)
		logger.Debug("graphql request completed",
			zap.String("endpoint", c.endpoint),
			zap.Int("bytes", len(raw)),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	})
	if err != nil {
		// cancelación del context durante el backoff
		if apperrors.KindOf(err) == 0 {
			return apperrors.ErrTransport("", err).WithRetryable(false)
		}
		return err
	}

	return decodeEnvelope(raw, dest)
}

func (c *GraphQLClient) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ErrTransport("error building request", err).WithRetryable(false)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.ErrTransport("", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, apperrors.ErrTransport("error reading response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ErrProtocol(resp.StatusCode, truncate(string(data), maxErrorBody))
	}

	return data, nil
}

// truncate corta s a lo sumo en n bytes sin partir una runa UTF-8
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && cut > n-utf8.UTFMax && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func decodeEnvelope(raw []byte, dest interface{}) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apperrors.ErrPayload("malformed JSON", err)
	}

	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return apperrors.ErrPayload("graphql errors", errors.New(strings.Join(msgs, "; ")))
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return apperrors.ErrPayload("missing key data", nil)
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return apperrors.ErrPayload("unexpected data shape", err)
	}
	return nil
}

// BreakerState expone el estado del circuit breaker (para /health)
func (c *GraphQLClient) BreakerState() string {
	return c.breaker.State().String()
}
