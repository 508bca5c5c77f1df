package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"autoremediator/internal/event"
	"autoremediator/internal/remediation"
	remediationMocks "autoremediator/internal/remediation/mocks"
	"autoremediator/internal/report"
	reportMocks "autoremediator/internal/report/mocks"
	"autoremediator/pkg/logging"
)

const ingressEvent = `{
  "id": "evt-ingress",
  "source": "aws.ec2",
  "detail": {
    "eventName": "AuthorizeSecurityGroupIngress",
    "requestParameters": {"groupId": "sg-1"}
  }
}`

const otherEvent = `{"id": "evt-other", "source": "aws.s3", "detail": {"eventName": "PutObject"}}`

// setupServiceWithMocks creates a new Service instance with the provided configuration and mocks
func setupServiceWithMocks(t *testing.T, config Config) (*Service, *remediationMocks.IDispatcher, *reportMocks.IPrinter) {
	dispatcherMock := remediationMocks.NewIDispatcher(t)
	reportMock := reportMocks.NewIPrinter(t)
	service := NewService(config, dispatcherMock, reportMock, logging.NewMockLogger())
	return service, dispatcherMock, reportMock
}

func writeEvent(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func eventID(id string) any {
	return mock.MatchedBy(func(raw event.RawEvent) bool { return raw["id"] == id })
}

// TestValidateConfig tests the configuration validation logic
func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "Valid config with single event",
			config:  Config{EventPaths: []string{"event.json"}},
			wantErr: false,
		},
		{
			name:    "Valid config with concurrency limit",
			config:  Config{EventPaths: []string{"a.json", "b.json"}, ConcurrencyLimit: 2},
			wantErr: false,
		},
		{
			name:    "Missing event paths",
			config:  Config{OutputFormat: "json"},
			wantErr: true,
		},
		{
			name:    "Negative concurrency",
			config:  Config{EventPaths: []string{"a.json"}, ConcurrencyLimit: -1},
			wantErr: true,
		},
		{
			name:    "Empty config",
			config:  Config{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := setupServiceWithMocks(t, tt.config)

			err := service.validateConfig()

			if tt.wantErr {
				assert.Error(t, err, "Expected an error for invalid config")
			} else {
				assert.NoError(t, err, "Expected no error for valid config")
			}
		})
	}
}

// TestCountFailures ensures failed and errored events are counted
func TestCountFailures(t *testing.T) {
	reports := []report.EventReport{
		{Result: remediation.Result{Status: remediation.StatusSuccess}},
		{Result: remediation.Result{Status: remediation.StatusFailed}},
		{Result: remediation.Result{Status: remediation.StatusNoActionTaken}},
		{Result: remediation.Result{Status: remediation.StatusError}},
		{Result: remediation.Result{Status: remediation.StatusSkipped}},
	}

	assert.Equal(t, 2, countFailures(reports), "Should count exactly 2 failed events")
}

// TestGetOutputFormat tests conversion of the format flag
func TestGetOutputFormat(t *testing.T) {
	tests := []struct {
		name         string
		formatString string
		expected     report.OutputFormatType
	}{
		{name: "JSON format", formatString: "json", expected: report.OutputFormatTypeJSON},
		{name: "JSON uppercase", formatString: "JSON", expected: report.OutputFormatTypeJSON},
		{name: "YAML format", formatString: "yaml", expected: report.OutputFormatTypeYAML},
		{name: "YML alias", formatString: "yml", expected: report.OutputFormatTypeYAML},
		{name: "Default to table when unrecognized", formatString: "unknown", expected: report.OutputFormatTypeTABLE},
		{name: "Empty string defaults to table", formatString: "", expected: report.OutputFormatTypeTABLE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := setupServiceWithMocks(t, Config{OutputFormat: tt.formatString})
			assert.Equal(t, tt.expected, service.getOutputFormat())
		})
	}
}

func TestRun_PreservesInputOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeEvent(t, dir, "1.json", ingressEvent)
	second := writeEvent(t, dir, "2.json", otherEvent)

	service, dispatcherMock, reportMock := setupServiceWithMocks(t, Config{
		EventPaths:       []string{first, second},
		OutputFormat:     "json",
		ConcurrencyLimit: 2,
	})

	dispatcherMock.On("Dispatch", mock.Anything, eventID("evt-ingress")).
		Return(remediation.Result{Status: remediation.StatusSuccess, EventID: "evt-ingress"})
	dispatcherMock.On("Dispatch", mock.Anything, eventID("evt-other")).
		Return(remediation.Result{Status: remediation.StatusNoActionTaken, EventID: "evt-other"})

	var printed []report.EventReport
	reportMock.On("PrintReport", mock.Anything, report.OutputFormatTypeJSON).
		Run(func(args mock.Arguments) { printed = args.Get(0).([]report.EventReport) }).
		Return(nil)

	anyFailed, err := service.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, anyFailed)
	require.Len(t, printed, 2)
	assert.Equal(t, first, printed[0].Source)
	assert.Equal(t, "evt-ingress", printed[0].Result.EventID)
	assert.Equal(t, second, printed[1].Source)
	assert.Equal(t, remediation.StatusNoActionTaken, printed[1].Result.Status)
}

func TestRun_Directory(t *testing.T) {
	dir := t.TempDir()
	writeEvent(t, dir, "b.json", otherEvent)
	writeEvent(t, dir, "a.json", ingressEvent)
	writeEvent(t, dir, "notes.txt", "ignored")

	service, dispatcherMock, reportMock := setupServiceWithMocks(t, Config{EventPaths: []string{dir}})

	dispatcherMock.On("Dispatch", mock.Anything, mock.Anything).
		Return(remediation.Result{Status: remediation.StatusSuccess}).Twice()
	reportMock.On("PrintReport", mock.MatchedBy(func(r []report.EventReport) bool {
		return len(r) == 2 && filepath.Base(r[0].Source) == "a.json"
	}), report.OutputFormatTypeTABLE).Return(nil)

	anyFailed, err := service.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, anyFailed)
}

func TestRun_BadFilesAreReportedAsFailures(t *testing.T) {
	dir := t.TempDir()
	bad := writeEvent(t, dir, "bad.json", `[1, 2]`)
	missing := filepath.Join(dir, "missing.json")

	service, _, reportMock := setupServiceWithMocks(t, Config{EventPaths: []string{bad, missing}})

	var printed []report.EventReport
	reportMock.On("PrintReport", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { printed = args.Get(0).([]report.EventReport) }).
		Return(nil)

	anyFailed, err := service.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, anyFailed)
	require.Len(t, printed, 2)
	assert.Equal(t, remediation.StatusFailed, printed[0].Result.Status)
	assert.Contains(t, printed[0].Result.Error, remediation.ErrMalformedEvent)
	assert.Equal(t, remediation.StatusError, printed[1].Result.Status)
}

func TestRun_FailedDispatch(t *testing.T) {
	path := writeEvent(t, t.TempDir(), "1.json", ingressEvent)
	service, dispatcherMock, reportMock := setupServiceWithMocks(t, Config{EventPaths: []string{path}})

	dispatcherMock.On("Dispatch", mock.Anything, mock.Anything).
		Return(remediation.Result{Status: remediation.StatusFailed})
	reportMock.On("PrintReport", mock.Anything, mock.Anything).Return(nil)

	anyFailed, err := service.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, anyFailed)
}

func TestRun_PrinterError(t *testing.T) {
	path := writeEvent(t, t.TempDir(), "1.json", otherEvent)
	service, dispatcherMock, reportMock := setupServiceWithMocks(t, Config{EventPaths: []string{path}})

	dispatcherMock.On("Dispatch", mock.Anything, mock.Anything).
		Return(remediation.Result{Status: remediation.StatusNoActionTaken})
	reportMock.On("PrintReport", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := service.Run(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRun_CancelledContext(t *testing.T) {
	path := writeEvent(t, t.TempDir(), "1.json", otherEvent)
	service, _, _ := setupServiceWithMocks(t, Config{EventPaths: []string{path}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	anyFailed, err := service.Run(ctx)
	assert.Error(t, err)
	assert.True(t, anyFailed)
}

func TestRun_InvalidConfig(t *testing.T) {
	service, _, _ := setupServiceWithMocks(t, Config{})

	_, err := service.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_EmptyDirectory(t *testing.T) {
	service, _, _ := setupServiceWithMocks(t, Config{EventPaths: []string{t.TempDir()}})

	_, err := service.Run(context.Background())
	assert.Error(t, err)
}
