package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"autoremediator/internal/event"
	"autoremediator/internal/remediation"
	"autoremediator/internal/report"
	"autoremediator/pkg/logging"
)

// Service replays recorded CloudTrail events through the dispatcher.
type Service struct {
	config        Config
	dispatcher    remediation.IDispatcher
	reportPrinter report.IPrinter
	logger        logging.Logger
}

// NewService creates a new orchestrator service with the given configuration.
func NewService(
	config Config,
	dispatcher remediation.IDispatcher,
	reportPrinter report.IPrinter,
	logger logging.Logger,
) *Service {
	return &Service{
		config:        config,
		dispatcher:    dispatcher,
		reportPrinter: reportPrinter,
		logger:        logger,
	}
}

// Run dispatches every event file and prints one report in input order.
// It reports whether any event failed; err is only set when the run itself
// could not complete.
func (s *Service) Run(ctx context.Context) (bool, error) {
	if err := s.validateConfig(); err != nil {
		return false, err
	}

	paths, err := expandPaths(s.config.EventPaths)
	if err != nil {
		return false, err
	}
	s.logger.Info("replaying events", "count", len(paths), "concurrency", s.config.ConcurrencyLimit)

	g, gctx := errgroup.WithContext(ctx)
	if s.config.ConcurrencyLimit > 0 {
		g.SetLimit(s.config.ConcurrencyLimit)
	}

	// Each goroutine owns one slot, so no locking is needed
	reports := make([]report.EventReport, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = report.EventReport{Source: path, Result: s.processEvent(gctx, path)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return true, fmt.Errorf("event replay interrupted: %w", err)
	}

	if err := s.reportPrinter.PrintReport(reports, s.getOutputFormat()); err != nil {
		return true, fmt.Errorf("error generating report: %w", err)
	}

	failed := countFailures(reports)
	if failed > 0 {
		s.logger.Warn("some events were not remediated", "failed", failed, "total", len(reports))
	}
	return failed > 0, nil
}

// processEvent reads, decodes and dispatches a single event file.
func (s *Service) processEvent(ctx context.Context, path string) remediation.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("failed to read event file", "path", path, "error", err)
		return remediation.Result{
			Status:   remediation.StatusError,
			Outcomes: []remediation.Outcome{},
			Error:    fmt.Sprintf("failed to read event file: %v", err),
		}
	}

	raw, err := event.Decode(data)
	if err != nil {
		s.logger.Error("failed to decode event file", "path", path, "error", err)
		return remediation.RejectedResult(err)
	}

	return s.dispatcher.Dispatch(ctx, raw)
}

// validateConfig checks if the required configuration is provided.
func (s *Service) validateConfig() error {
	if len(s.config.EventPaths) == 0 {
		return fmt.Errorf("at least one event file is required")
	}
	if s.config.ConcurrencyLimit < 0 {
		return fmt.Errorf("concurrency limit cannot be negative")
	}
	return nil
}

// getOutputFormat converts the string format to report.OutputFormatType.
func (s *Service) getOutputFormat() report.OutputFormatType {
	switch strings.ToUpper(s.config.OutputFormat) {
	case "JSON":
		return report.OutputFormatTypeJSON
	case "YAML", "YML":
		return report.OutputFormatTypeYAML
	default:
		return report.OutputFormatTypeTABLE
	}
}

// expandPaths replaces directories with the .json files they contain.
func expandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			// Missing files are reported per event
			out = append(out, p)
			continue
		}
		files, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("failed to list events in %s: %w", p, err)
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no event files found")
	}
	return out, nil
}

// countFailures counts the events that failed or errored.
func countFailures(reports []report.EventReport) int {
	count := 0
	for _, r := range reports {
		if r.Result.Failed() {
			count++
		}
	}
	return count
}
