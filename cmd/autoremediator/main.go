package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"autoremediator/internal/config"
	"autoremediator/internal/handler"
	"autoremediator/internal/metrics"
	"autoremediator/internal/orchestrator"
	aws "autoremediator/internal/providers/aws"
	"autoremediator/internal/remediation"
	"autoremediator/internal/report"
	"autoremediator/internal/terraform"
	"autoremediator/pkg/logging"
)

// app holds what both commands share
type app struct {
	cfg        *config.Config
	logger     *logging.DefaultLogger
	registry   *prometheus.Registry
	dispatcher *remediation.Dispatcher
}

func newApp(ctx context.Context, configPath, terraformPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if terraformPath != "" {
		cfg.TerraformPath = terraformPath
	}

	logger := logging.NewDefaultLogger()
	logger.SetLevel(logging.StringToLogLevel(cfg.LogLevel))

	settings, err := cfg.ResolveSettings(terraform.NewParserWithLogger(logger))
	if err != nil {
		return nil, err
	}
	if len(settings.ApprovedAMIs) == 0 {
		logger.Warn("no approved AMIs configured, RunInstances events will fail")
	}

	ec2, err := aws.NewServiceWithDefaultConfig(ctx, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AWS service: %w", err)
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	return &app{
		cfg:        cfg,
		logger:     logger,
		registry:   registry,
		dispatcher: remediation.NewDefaultDispatcher(ec2, settings, logger, recorder),
	}, nil
}

// runReplay returns the process exit code: 1 when setup fails or any event
// was not remediated.
func runReplay(cmd *cobra.Command, args []string, configPath, terraformPath, outputFormat string, concurrencyLimit int) int {
	ctx := cmd.Context()
	a, err := newApp(ctx, configPath, terraformPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer a.logger.Sync()

	service := orchestrator.NewService(orchestrator.Config{
		EventPaths:       args,
		OutputFormat:     outputFormat,
		ConcurrencyLimit: concurrencyLimit,
	}, a.dispatcher, report.DefaultPrinter{Out: cmd.OutOrStdout()}, a.logger)

	anyFailed, err := service.Run(ctx)
	if pushErr := metrics.Push(ctx, a.cfg.PushgatewayURL, "autoremediator", a.registry); pushErr != nil {
		a.logger.Warn("failed to push metrics", "error", pushErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if anyFailed {
		return 1
	}
	return 0
}

func main() {
	var configPath string
	var terraformPath string

	rootCmd := &cobra.Command{
		Use:          "autoremediator",
		Short:        "Remediate risky EC2 changes reported by CloudTrail",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to an optional YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&terraformPath, "terraform-path", "", "Terraform file or directory to read approved AMIs from")

	lambdaCmd := &cobra.Command{
		Use:   "lambda",
		Short: "Serve EventBridge deliveries as an AWS Lambda function",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath, terraformPath)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			h := handler.New(a.dispatcher, a.registry, a.cfg.PushgatewayURL, a.logger)
			lambda.Start(h.Handle)
			return nil
		},
	}

	var outputFormat string
	var concurrencyLimit int
	replayCmd := &cobra.Command{
		Use:   "replay EVENT_FILE_OR_DIR...",
		Short: "Dispatch recorded CloudTrail events and print the results",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(runReplay(cmd, args, configPath, terraformPath, outputFormat, concurrencyLimit))
		},
	}
	replayCmd.Flags().StringVar(&outputFormat, "output", "table", "Output format: table, json or yaml")
	replayCmd.Flags().IntVar(&concurrencyLimit, "concurrency", runtime.NumCPU(), "Maximum number of events to dispatch concurrently")

	rootCmd.AddCommand(lambdaCmd, replayCmd)
	// The Lambda bootstrap runs the binary without arguments
	rootCmd.RunE = lambdaCmd.RunE

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
