package remediation

import (
	"context"
	"fmt"

	"autoremediator/internal/event"
	"autoremediator/internal/rules"
	"autoremediator/pkg/logging"
)

// AMIAction selects how instances launched from unapproved images are handled
type AMIAction string

const (
	// AMIActionTerminate stops the instance and then terminates it
	AMIActionTerminate AMIAction = "terminate"

	// AMIActionStop only stops the instance
	AMIActionStop AMIAction = "stop"
)

// Pipeline handles the events of one route.
type Pipeline interface {
	Name() string
	Run(ctx context.Context, env *event.Envelope) Result
}

// IngressPipeline revokes admin port rules opened to unrestricted sources.
type IngressPipeline struct {
	actions *Actions
	policy  rules.IngressPolicy
	logger  logging.Logger
}

// NewIngressPipeline creates the security group ingress pipeline
func NewIngressPipeline(actions *Actions, policy rules.IngressPolicy, logger logging.Logger) *IngressPipeline {
	return &IngressPipeline{actions: actions, policy: policy, logger: logger}
}

// Name implements Pipeline
func (p *IngressPipeline) Name() string { return "unrestricted_admin_ingress" }

// Run revokes each offending source range separately, so other ranges of
// the same permission are left in place.
func (p *IngressPipeline) Run(ctx context.Context, env *event.Envelope) Result {
	group := event.SecurityGroupRef(env)
	if group.IsZero() {
		p.logger.Info("no security group id in event, skipping")
		return Result{Status: StatusSkipped, Message: "No security group ID found in event."}
	}

	perms, diags := event.Permissions(env)
	for _, d := range diags {
		p.logger.Warn("unrecognized permission shape", "group", group.String(), "diagnostic", d)
	}
	if len(perms) == 0 {
		p.logger.Info("no IP permissions in event, skipping", "group", group.String())
		return Result{Status: StatusSkipped, Message: "No IP permissions found in event."}
	}

	result := Result{Outcomes: []Outcome{}}
	for _, perm := range perms {
		for _, cidr := range p.policy.OffendingRanges(perm) {
			outcome := p.actions.RevokeIngress(ctx, group, perm, cidr)
			result.Outcomes = append(result.Outcomes, outcome)
			if outcome.Action == ActionRevoked {
				result.RevokedRules = append(result.RevokedRules,
					fmt.Sprintf("Revoked %s on %s", outcome.Detail, group))
			}
		}
	}

	if len(result.Outcomes) == 0 {
		p.logger.Info("no unrestricted admin port rules in event", "group", group.String())
		result.Message = fmt.Sprintf("No unrestricted port %d rules found for %s.", p.policy.AdminPort, group)
	}
	result.Status = aggregateStatus(result.Outcomes)
	return result
}

// UnapprovedAMIPipeline remediates instances launched from images outside the allow-list.
type UnapprovedAMIPipeline struct {
	actions *Actions
	allow   rules.AMIAllowList
	mode    AMIAction
	logger  logging.Logger
}

// NewUnapprovedAMIPipeline creates the RunInstances pipeline
func NewUnapprovedAMIPipeline(actions *Actions, allow rules.AMIAllowList, mode AMIAction, logger logging.Logger) *UnapprovedAMIPipeline {
	if mode == "" {
		mode = AMIActionTerminate
	}
	return &UnapprovedAMIPipeline{actions: actions, allow: allow, mode: mode, logger: logger}
}

// Name implements Pipeline
func (p *UnapprovedAMIPipeline) Name() string { return "unapproved_ami" }

// Run checks every launched instance against the allow-list.
func (p *UnapprovedAMIPipeline) Run(ctx context.Context, env *event.Envelope) Result {
	if len(p.allow) == 0 {
		err := NewError(ErrConfiguration, "APPROVED_AMI_ID is not set", "", rules.ErrEmptyAllowList)
		p.logger.Error("remediation cannot proceed", "error", err)
		return Result{
			Status:   StatusFailed,
			Outcomes: []Outcome{},
			Message:  "Approved AMI ID not configured.",
			Error:    err.Error(),
		}
	}

	records, diags := event.LaunchRecords(env)
	for _, d := range diags {
		p.logger.Warn("unrecognized instance shape", "diagnostic", d)
	}
	if len(records) == 0 {
		p.logger.Info("no instances in event, skipping")
		return Result{Status: StatusSkipped, Message: "No instances found in event."}
	}

	result := Result{Outcomes: make([]Outcome, 0, len(records))}
	for _, rec := range records {
		unapproved, err := rules.IsUnapprovedAMI(rec, p.allow)
		if err != nil || !unapproved {
			detail := "AMI " + rec.AMIID + " approved"
			if rec.AMIID == "" {
				detail = "no AMI recorded"
			}
			p.logger.Info("no action needed", "instance_id", rec.InstanceID, "ami_id", rec.AMIID)
			result.Outcomes = append(result.Outcomes, Outcome{Target: rec.InstanceID, Action: ActionApproved, Detail: detail})
			continue
		}

		p.logger.Warn("instance launched from unapproved AMI", "instance_id", rec.InstanceID, "ami_id", rec.AMIID, "mode", string(p.mode))
		if result.AMIID == "" {
			result.AMIID = rec.AMIID
		}

		var outcome Outcome
		if p.mode == AMIActionStop {
			outcome = p.actions.StopInstance(ctx, rec.InstanceID)
		} else {
			outcome = p.actions.StopAndTerminateInstance(ctx, rec.InstanceID)
		}
		result.Outcomes = append(result.Outcomes, outcome)

		switch outcome.Action {
		case ActionStopped:
			result.RemediatedInstances = append(result.RemediatedInstances,
				fmt.Sprintf("Stopped instance %s (AMI: %s)", rec.InstanceID, rec.AMIID))
		case ActionTerminated:
			result.RemediatedInstances = append(result.RemediatedInstances,
				fmt.Sprintf("Terminated instance %s (AMI: %s)", rec.InstanceID, rec.AMIID))
		}
	}

	result.Status = aggregateStatus(result.Outcomes)
	return result
}
