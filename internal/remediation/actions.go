package remediation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"autoremediator/internal/event"
	awsprovider "autoremediator/internal/providers/aws"
	"autoremediator/pkg/logging"
)

const (
	// DefaultPollInterval is how often a stopping instance is re-described
	DefaultPollInterval = 10 * time.Second

	// DefaultStopTimeout bounds the wait for an instance to stop
	DefaultStopTimeout = 300 * time.Second

	// terminateReserve is left of the caller's deadline for the terminate call
	terminateReserve = 5 * time.Second

	// terminateTimeout bounds a terminate call detached from the caller's context
	terminateTimeout = 30 * time.Second
)

// Actions performs the remediation calls and turns each into an Outcome.
// Failures are recorded in the outcome and never returned.
type Actions struct {
	api          awsprovider.RemediationAPI
	logger       logging.Logger
	pollInterval time.Duration
	stopTimeout  time.Duration
}

// NewActions creates Actions. Non-positive durations use the defaults.
func NewActions(api awsprovider.RemediationAPI, logger logging.Logger, pollInterval, stopTimeout time.Duration) *Actions {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	return &Actions{
		api:          api,
		logger:       logger,
		pollInterval: pollInterval,
		stopTimeout:  stopTimeout,
	}
}

// RevokeIngress removes one source range of perm from the group.
// An already absent rule is a skipped outcome, not a failure.
func (a *Actions) RevokeIngress(ctx context.Context, group event.GroupRef, perm event.IngressPermission, cidr event.CIDREntry) Outcome {
	req := awsprovider.RevokeRequest{
		GroupID:   group.ID,
		GroupName: group.Name,
		Protocol:  perm.Protocol,
		FromPort:  perm.FromPort,
		ToPort:    perm.ToPort,
		CIDR:      cidr.CIDR,
		IPv6:      cidr.IPv6,
	}
	rule := describeRule(perm, cidr)
	logger := a.logger.With("group", group.String(), "rule", rule)

	err := a.api.RevokeIngress(ctx, req)
	switch {
	case err == nil:
		logger.Info("revoked ingress rule")
		return Outcome{Target: group.String(), Action: ActionRevoked, Detail: rule}
	case awsprovider.IsNotFound(err):
		logger.Info("ingress rule already absent", "error", err)
		return Outcome{Target: group.String(), Action: ActionSkipped, Detail: "rule already absent: " + rule}
	default:
		logger.Error("failed to revoke ingress rule", "error", err)
		return Outcome{Target: group.String(), Action: ActionFailed, Detail: classify(err, group.String()).Error()}
	}
}

// StopAndTerminateInstance drives an instance to terminated.
// A running instance is stopped first; when it does not stop within the
// timeout it is terminated anyway.
func (a *Actions) StopAndTerminateInstance(ctx context.Context, instanceID string) Outcome {
	logger := a.logger.With("instance_id", instanceID)

	state, err := a.api.DescribeInstanceState(ctx, instanceID)
	if err != nil {
		if awsprovider.IsNotFound(err) {
			logger.Info("instance not found, nothing to remediate")
			return Outcome{Target: instanceID, Action: ActionSkipped, Detail: "instance not found"}
		}
		logger.Warn("could not describe instance, terminating directly", "error", err)
		state = ""
	}

	switch types.InstanceStateName(state) {
	case types.InstanceStateNameTerminated, types.InstanceStateNameShuttingDown:
		logger.Info("instance already terminating", "state", state)
		return Outcome{Target: instanceID, Action: ActionSkipped, Detail: "instance already " + state}

	case types.InstanceStateNameRunning:
		if err := a.api.StopInstance(ctx, instanceID); err != nil {
			if awsprovider.IsNotFound(err) {
				return Outcome{Target: instanceID, Action: ActionSkipped, Detail: "instance not found"}
			}
			logger.Warn("stop failed, terminating directly", "error", err)
			return a.terminate(ctx, logger, instanceID, fmt.Sprintf("stop failed (%v); terminated", err))
		}
		logger.Info("stop requested")
		return a.waitAndTerminate(ctx, logger, instanceID)

	case types.InstanceStateNameStopping:
		return a.waitAndTerminate(ctx, logger, instanceID)

	case types.InstanceStateNamePending, types.InstanceStateNameStopped:
		return a.terminate(ctx, logger, instanceID, "terminated from state "+state)

	default:
		return a.terminate(ctx, logger, instanceID, "state unknown; terminated")
	}
}

// StopInstance only stops the instance, leaving it in place for inspection.
func (a *Actions) StopInstance(ctx context.Context, instanceID string) Outcome {
	logger := a.logger.With("instance_id", instanceID)

	state, err := a.api.DescribeInstanceState(ctx, instanceID)
	if err != nil && awsprovider.IsNotFound(err) {
		return Outcome{Target: instanceID, Action: ActionSkipped, Detail: "instance not found"}
	}

	switch types.InstanceStateName(state) {
	case types.InstanceStateNameStopped, types.InstanceStateNameStopping,
		types.InstanceStateNameTerminated, types.InstanceStateNameShuttingDown:
		logger.Info("instance not running, not stopping", "state", state)
		return Outcome{Target: instanceID, Action: ActionSkipped, Detail: "instance already " + state}
	}

	if err := a.api.StopInstance(ctx, instanceID); err != nil {
		logger.Error("failed to stop instance", "error", err)
		return Outcome{Target: instanceID, Action: ActionFailed, Detail: classify(err, instanceID).Error()}
	}
	logger.Info("stopped instance")
	return Outcome{Target: instanceID, Action: ActionStopped, Detail: "stop requested"}
}

// waitAndTerminate waits for the stop, bounded by the stop timeout and by the
// caller's deadline, then terminates whatever the wait returned.
func (a *Actions) waitAndTerminate(ctx context.Context, logger logging.Logger, instanceID string) Outcome {
	timeout := a.stopTimeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline) - terminateReserve
		if remaining <= 0 {
			logger.Warn("no time left to wait for stop, terminating now", "deadline", deadline.String())
			return a.terminate(ctx, logger, instanceID, "no time left to wait for stop; terminated")
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	err := a.api.WaitUntilStopped(ctx, instanceID, a.pollInterval, timeout)
	switch {
	case err == nil:
		return a.terminate(ctx, logger, instanceID, "stopped, then terminated")
	case awsprovider.IsErrorCategory(err, awsprovider.ErrWaitTimeout):
		logger.Warn("instance did not stop in time, forcing termination", "timeout", timeout.String(), "error", err)
		return a.terminate(ctx, logger, instanceID,
			fmt.Sprintf("not stopped within %s; force-terminated", timeout))
	default:
		logger.Warn("stop wait ended early, forcing termination", "error", err)
		return a.terminate(ctx, logger, instanceID,
			fmt.Sprintf("stop wait ended early (%s); force-terminated", waitFailure(err)))
	}
}

// terminate runs on a context detached from the caller so an expired
// invocation still terminates the instance.
func (a *Actions) terminate(ctx context.Context, logger logging.Logger, instanceID, detail string) Outcome {
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminateTimeout)
	defer cancel()

	err := a.api.TerminateInstance(tctx, instanceID)
	switch {
	case err == nil:
		logger.Info("terminated instance", "detail", detail)
		return Outcome{Target: instanceID, Action: ActionTerminated, Detail: detail}
	case awsprovider.IsNotFound(err):
		return Outcome{Target: instanceID, Action: ActionSkipped, Detail: "instance not found"}
	default:
		logger.Error("failed to terminate instance", "error", err)
		return Outcome{Target: instanceID, Action: ActionFailed, Detail: classify(err, instanceID).Error()}
	}
}

func waitFailure(err error) string {
	var awsErr *awsprovider.Error
	if errors.As(err, &awsErr) {
		return string(awsErr.Category)
	}
	return err.Error()
}

func describeRule(perm event.IngressPermission, cidr event.CIDREntry) string {
	ports := fmt.Sprintf("%d", perm.FromPort)
	if perm.FromPort != perm.ToPort {
		ports = fmt.Sprintf("%d-%d", perm.FromPort, perm.ToPort)
	}
	return fmt.Sprintf("%s/%s from %s", perm.Protocol, ports, cidr.CIDR)
}
