package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefija todas las variables de entorno (CRM_GRAPHQL_ENDPOINT, ...)
const EnvPrefix = "CRM"

// Config configuración global
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	GraphQL GraphQLConfig `mapstructure:"graphql"`
	Logs    LogPaths      `mapstructure:"logs"`
}

// AppConfig configuración del proceso
type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	Port     string `mapstructure:"port"`
}

// GraphQLConfig configuración del cliente GraphQL
type GraphQLConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Attempts       int           `mapstructure:"attempts"`         // 1 = un solo intento
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"` // base del backoff exponencial
	Breaker        BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configuración del circuit breaker
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"` // fallos consecutivos para abrir
	OpenTimeout time.Duration `mapstructure:"open_timeout"` // tiempo abierto antes de half-open
}

// LogPaths rutas de los archivos append-only de cada job.
// ReportError usa por defecto el mismo archivo que Report.
type LogPaths struct {
	Heartbeat   string `mapstructure:"heartbeat"`
	LowStock    string `mapstructure:"low_stock"`
	Report      string `mapstructure:"report"`
	ReportError string `mapstructure:"report_error"`
	SelfTest    string `mapstructure:"self_test"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "crm-scheduled-jobs")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", "8080")

	v.SetDefault("graphql.endpoint", "http://localhost:8000/graphql")
	v.SetDefault("graphql.timeout", 30*time.Second)
	v.SetDefault("graphql.attempts", 1)
	v.SetDefault("graphql.retry_base_delay", 500*time.Millisecond)
	v.SetDefault("graphql.breaker.max_failures", 5)
	v.SetDefault("graphql.breaker.open_timeout", 30*time.Second)

	v.SetDefault("logs.heartbeat", "/tmp/crm_heartbeat_log.txt")
	v.SetDefault("logs.low_stock", "/tmp/lowstockupdates_log.txt")
	v.SetDefault("logs.report", "/tmp/crm_report_log.txt")
	v.SetDefault("logs.report_error", "")
	v.SetDefault("logs.self_test", "/tmp/celery_test_log.txt")
}

// Load carga defaults, el archivo YAML opcional y las variables CRM_*.
// configPath vacío significa solo defaults y entorno.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	// Puerto para Cloud Run / local
	if cfg.App.Port == "8080" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.App.Port = port
		}
	}
	if cfg.Logs.ReportError == "" {
		cfg.Logs.ReportError = cfg.Logs.Report
	}

	return &cfg, nil
}

// Validate valida la configuración antes de construir dependencias
func (c *Config) Validate() error {
	u, err := url.Parse(c.GraphQL.Endpoint)
	if err != nil {
		return fmt.Errorf("graphql.endpoint is invalid: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("graphql.endpoint must be an absolute http(s) URL, got %q", c.GraphQL.Endpoint)
	}
	if c.GraphQL.Timeout <= 0 {
		return fmt.Errorf("graphql.timeout must be positive")
	}
	if c.GraphQL.Attempts < 1 {
		return fmt.Errorf("graphql.attempts must be at least 1")
	}

	paths := []struct {
		key, path string
	}{
		{"logs.heartbeat", c.Logs.Heartbeat},
		{"logs.low_stock", c.Logs.LowStock},
		{"logs.report", c.Logs.Report},
		{"logs.report_error", c.Logs.ReportError},
		{"logs.self_test", c.Logs.SelfTest},
	}
	for _, p := range paths {
		if p.path == "" {
			return fmt.Errorf("%s is required", p.key)
		}
	}
	return nil
}
