package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/api"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/config"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/logging"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/service"
)

const serviceName = "crm-scheduled-jobs"

// version se sobreescribe con -ldflags "-X main.version=..."
var version = "dev"

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "crmjobs",
	Short:        "CRM scheduled jobs (heartbeat, low stock, report)",
	Long:         "crmjobs runs the CRM jobs once per invocation (for cron) or serves an HTTP trigger (for HTTP schedulers).",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file; CRM_* env vars override it")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// app es el contexto explícito de la aplicación: se construye una vez y
// se pasa a los jobs, sin estado global implícito.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *api.GraphQLClient
	runner *service.Runner
}

func buildApp(stdout io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Inicializar Zap Logger con formato compatible con GCP Cloud Logging
	logger, err := logging.New(cfg.App.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	client, err := api.NewGraphQLClient(cfg.GraphQL, logger)
	if err != nil {
		return nil, err
	}

	svc := service.NewService(client, cfg.Logs, logger, service.WithStdout(stdout))

	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		runner: service.NewRunner(svc, logger),
	}, nil
}

// --- Run ---

var runCmd = &cobra.Command{
	Use:   "run <job>",
	Short: "Run one job once",
	Long:  "Runs a job synchronously. Job failures are written to the job's log file and never change the exit code.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		_, err = a.runner.Run(cmd.Context(), args[0])
		return err
	},
}

// --- List ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		for _, name := range a.runner.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// --- Version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "crmjobs %s\n", version)
	},
}
