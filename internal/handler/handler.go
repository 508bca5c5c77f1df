// Package handler adapts the dispatcher to the Lambda runtime.
package handler

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/prometheus/client_golang/prometheus"

	"autoremediator/internal/event"
	"autoremediator/internal/metrics"
	"autoremediator/internal/remediation"
	"autoremediator/pkg/logging"
)

const pushJob = "autoremediator"

// Handler receives EventBridge deliveries of CloudTrail events.
type Handler struct {
	dispatcher remediation.IDispatcher
	gatherer   prometheus.Gatherer
	pushURL    string
	logger     logging.Logger
}

// New creates a Handler. Metrics are pushed after every invocation when
// pushURL is set.
func New(dispatcher remediation.IDispatcher, gatherer prometheus.Gatherer, pushURL string, logger logging.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		gatherer:   gatherer,
		pushURL:    pushURL,
		logger:     logger,
	}
}

// Handle dispatches one event. The error is always nil so Lambda does not
// retry remediation that already ran; failures are in the result.
func (h *Handler) Handle(ctx context.Context, e events.CloudWatchEvent) (remediation.Result, error) {
	var result remediation.Result

	raw, err := event.FromCloudWatchEvent(e)
	if err != nil {
		h.logger.Error("failed to decode event", "event_id", e.ID, "error", err)
		result = remediation.RejectedResult(err)
		result.EventID = e.ID
	} else {
		result = h.dispatcher.Dispatch(ctx, raw)
	}

	if err := metrics.Push(ctx, h.pushURL, pushJob, h.gatherer); err != nil {
		h.logger.Warn("failed to push metrics", "error", err)
	}
	return result, nil
}
