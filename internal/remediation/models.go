package remediation

// Status is the overall result of handling one event
type Status string

const (
	StatusSuccess       Status = "success"
	StatusFailed        Status = "failed"
	StatusNoActionTaken Status = "no_action_taken"
	StatusSkipped       Status = "skipped"
	StatusError         Status = "error"
)

// Action is what happened to one resource
type Action string

const (
	ActionRevoked    Action = "revoked"
	ActionStopped    Action = "stopped"
	ActionTerminated Action = "terminated"
	ActionSkipped    Action = "skipped"
	ActionApproved   Action = "approved"
	ActionFailed     Action = "failed"
)

// Outcome records the remediation of one matched entry.
type Outcome struct {
	Target string `json:"target" yaml:"target"`
	Action Action `json:"action" yaml:"action"`
	Detail string `json:"detail" yaml:"detail"`
}

// Result is returned for every dispatched event. Pipeline specific fields
// are omitted when empty.
type Result struct {
	Status              Status    `json:"status" yaml:"status"`
	Pipeline            string    `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
	EventID             string    `json:"event_id,omitempty" yaml:"event_id,omitempty"`
	Outcomes            []Outcome `json:"outcomes" yaml:"outcomes"`
	RevokedRules        []string  `json:"revoked_rules,omitempty" yaml:"revoked_rules,omitempty"`
	RemediatedInstances []string  `json:"remediated_instances,omitempty" yaml:"remediated_instances,omitempty"`
	AMIID               string    `json:"ami_id,omitempty" yaml:"ami_id,omitempty"`
	Message             string    `json:"message,omitempty" yaml:"message,omitempty"`
	Error               string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the result should be treated as a failure by callers
func (r Result) Failed() bool {
	return r.Status == StatusFailed || r.Status == StatusError
}

// aggregateStatus is failed when any outcome failed and success otherwise.
func aggregateStatus(outcomes []Outcome) Status {
	for _, o := range outcomes {
		if o.Action == ActionFailed {
			return StatusFailed
		}
	}
	return StatusSuccess
}
