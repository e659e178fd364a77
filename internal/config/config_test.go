package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.GraphQL.Endpoint != "http://localhost:8000/graphql" {
		t.Errorf("endpoint = %q", cfg.GraphQL.Endpoint)
	}
	if cfg.GraphQL.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", cfg.GraphQL.Attempts)
	}
	if cfg.GraphQL.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.GraphQL.Timeout)
	}
	if cfg.Logs.Heartbeat != "/tmp/crm_heartbeat_log.txt" {
		t.Errorf("heartbeat path = %q", cfg.Logs.Heartbeat)
	}
	if cfg.Logs.LowStock != "/tmp/lowstockupdates_log.txt" {
		t.Errorf("low stock path = %q", cfg.Logs.LowStock)
	}
	if cfg.Logs.ReportError != cfg.Logs.Report {
		t.Errorf("report error path %q should default to report path %q", cfg.Logs.ReportError, cfg.Logs.Report)
	}
	if cfg.Logs.SelfTest != "/tmp/celery_test_log.txt" {
		t.Errorf("self test path = %q", cfg.Logs.SelfTest)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CRM_GRAPHQL_ENDPOINT", "https://crm.example.com/graphql/")
	t.Setenv("CRM_GRAPHQL_ATTEMPTS", "3")
	t.Setenv("CRM_GRAPHQL_TIMEOUT", "5s")
	t.Setenv("CRM_LOGS_HEARTBEAT", "/var/log/hb.txt")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.GraphQL.Endpoint != "https://crm.example.com/graphql/" {
		t.Errorf("endpoint = %q", cfg.GraphQL.Endpoint)
	}
	if cfg.GraphQL.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", cfg.GraphQL.Attempts)
	}
	if cfg.GraphQL.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.GraphQL.Timeout)
	}
	if cfg.Logs.Heartbeat != "/var/log/hb.txt" {
		t.Errorf("heartbeat path = %q", cfg.Logs.Heartbeat)
	}
	if cfg.App.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.App.Port)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "crmjobs.yaml")
	content := []byte(`app:
  log_level: debug
graphql:
  endpoint: http://crm:8000/graphql/
  breaker:
    max_failures: 2
logs:
  report: /data/report.txt
  report_error: /data/report_errors.txt
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.App.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.App.LogLevel)
	}
	if cfg.GraphQL.Endpoint != "http://crm:8000/graphql/" {
		t.Errorf("endpoint = %q", cfg.GraphQL.Endpoint)
	}
	if cfg.GraphQL.Breaker.MaxFailures != 2 {
		t.Errorf("breaker max failures = %d", cfg.GraphQL.Breaker.MaxFailures)
	}
	if cfg.Logs.Report != "/data/report.txt" || cfg.Logs.ReportError != "/data/report_errors.txt" {
		t.Errorf("report paths = %q / %q", cfg.Logs.Report, cfg.Logs.ReportError)
	}
	// no definido en el archivo: conserva el default
	if cfg.Logs.Heartbeat != "/tmp/crm_heartbeat_log.txt" {
		t.Errorf("heartbeat path = %q", cfg.Logs.Heartbeat)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			GraphQL: GraphQLConfig{Endpoint: "http://localhost:8000/graphql", Timeout: time.Second, Attempts: 1},
			Logs: LogPaths{
				Heartbeat: "a", LowStock: "b", Report: "c", ReportError: "c", SelfTest: "d",
			},
		}
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"relative endpoint", func(c *Config) { c.GraphQL.Endpoint = "/graphql" }, "absolute"},
		{"ftp endpoint", func(c *Config) { c.GraphQL.Endpoint = "ftp://host/graphql" }, "absolute"},
		{"zero timeout", func(c *Config) { c.GraphQL.Timeout = 0 }, "timeout"},
		{"zero attempts", func(c *Config) { c.GraphQL.Attempts = 0 }, "attempts"},
		{"missing heartbeat log", func(c *Config) { c.Logs.Heartbeat = "" }, "logs.heartbeat"},
		{"missing self test log", func(c *Config) { c.Logs.SelfTest = "" }, "logs.self_test"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}
}
