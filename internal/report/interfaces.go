package report

// IPrinter is the interface for generating reports
//
//go:generate mockery --name=IPrinter --output=./mocks
type IPrinter interface {
	PrintReport(reports []EventReport, format OutputFormatType) error
}
