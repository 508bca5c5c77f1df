package orchestrator

// Config contains all the parameters needed to replay recorded events.
type Config struct {
	EventPaths       []string // Event files, or directories of .json event files
	OutputFormat     string   // Output format (json, yaml or table)
	ConcurrencyLimit int      // Maximum number of events dispatched at once (0 = unlimited)
}
