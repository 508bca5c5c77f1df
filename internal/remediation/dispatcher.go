package remediation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autoremediator/internal/event"
	"autoremediator/internal/metrics"
	awsprovider "autoremediator/internal/providers/aws"
	"autoremediator/internal/rules"
	"autoremediator/pkg/logging"
)

// SourceEC2 is the EventBridge source of EC2 CloudTrail events
const SourceEC2 = "aws.ec2"

// Route is the discriminant an event is dispatched on.
type Route struct {
	Source    string
	EventName string
}

// Settings configures the built-in pipelines.
type Settings struct {
	IngressPolicy rules.IngressPolicy
	ApprovedAMIs  rules.AMIAllowList
	AMIAction     AMIAction
	PollInterval  time.Duration
	StopTimeout   time.Duration
}

// Dispatcher routes events to the pipeline registered for their source and event name.
type Dispatcher struct {
	routes  map[Route]Pipeline
	logger  logging.Logger
	metrics *metrics.Recorder
}

// NewDispatcher creates a dispatcher with no routes
func NewDispatcher(logger logging.Logger, recorder *metrics.Recorder) *Dispatcher {
	return &Dispatcher{
		routes:  make(map[Route]Pipeline),
		logger:  logger,
		metrics: recorder,
	}
}

// NewDefaultDispatcher registers the security group ingress and unapproved
// AMI pipelines on aws.ec2 events.
func NewDefaultDispatcher(api awsprovider.RemediationAPI, settings Settings, logger logging.Logger, recorder *metrics.Recorder) *Dispatcher {
	actions := NewActions(api, logger, settings.PollInterval, settings.StopTimeout)
	d := NewDispatcher(logger, recorder)

	// Routes are distinct, registration cannot fail
	_ = d.Register(SourceEC2, "AuthorizeSecurityGroupIngress",
		NewIngressPipeline(actions, settings.IngressPolicy, logger))
	_ = d.Register(SourceEC2, "RunInstances",
		NewUnapprovedAMIPipeline(actions, settings.ApprovedAMIs, settings.AMIAction, logger))
	return d
}

// Register adds a pipeline for a source and event name
func (d *Dispatcher) Register(source, eventName string, p Pipeline) error {
	route := Route{Source: source, EventName: eventName}
	if existing, ok := d.routes[route]; ok {
		return fmt.Errorf("route %s/%s already handled by %s", source, eventName, existing.Name())
	}
	d.routes[route] = p
	return nil
}

// Routes returns the registered routes
func (d *Dispatcher) Routes() []Route {
	routes := make([]Route, 0, len(d.routes))
	for r := range d.routes {
		routes = append(routes, r)
	}
	return routes
}

// Dispatch handles one raw event. It always returns a Result; failures,
// including panics inside a pipeline, are reported through its status.
func (d *Dispatcher) Dispatch(ctx context.Context, raw event.RawEvent) (result Result) {
	start := time.Now()

	eventID, _ := raw["id"].(string)
	if eventID == "" {
		eventID = uuid.NewString()
	}
	source, eventName := event.Discriminant(raw)
	logger := d.logger.With("event_id", eventID, "source", source, "event_name", eventName)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("remediation panicked", "panic", fmt.Sprint(r))
			result = Result{
				Status:   StatusError,
				Pipeline: result.Pipeline,
				EventID:  eventID,
				Outcomes: []Outcome{},
				Error:    fmt.Sprintf("internal error: %v", r),
			}
		}
		d.metrics.ObserveDispatch(result.Pipeline, string(result.Status), time.Since(start))
	}()

	pipeline, ok := d.routes[Route{Source: source, EventName: eventName}]
	if !ok {
		logger.Info("no matching remediation for event")
		return Result{
			Status:   StatusNoActionTaken,
			EventID:  eventID,
			Outcomes: []Outcome{},
			Message:  "Event did not match any known remediation patterns.",
		}
	}
	result.Pipeline = pipeline.Name()

	env, err := event.Normalize(raw)
	if err != nil {
		classified := classify(err, "")
		logger.Error("cannot remediate malformed event", "error", classified)
		return Result{
			Status:   StatusFailed,
			Pipeline: pipeline.Name(),
			EventID:  eventID,
			Outcomes: []Outcome{},
			Error:    classified.Error(),
		}
	}

	logger.Info("dispatching event", "pipeline", pipeline.Name())
	result = pipeline.Run(ctx, env)
	result.Pipeline = pipeline.Name()
	result.EventID = eventID
	if result.Outcomes == nil {
		result.Outcomes = []Outcome{}
	}

	for _, o := range result.Outcomes {
		d.metrics.ObserveOutcome(pipeline.Name(), string(o.Action))
	}
	logger.Info("remediation finished", "status", string(result.Status), "outcomes", len(result.Outcomes))
	return result
}

// RejectedResult reports an event that could not be decoded and so never
// reached a pipeline.
func RejectedResult(err error) Result {
	return Result{
		Status:   StatusFailed,
		Outcomes: []Outcome{},
		Error:    classify(err, "").Error(),
	}
}
