package remediation

import (
	"context"

	"autoremediator/internal/event"
)

// IDispatcher handles raw events
//
//go:generate mockery --name=IDispatcher --output=./mocks
type IDispatcher interface {
	Dispatch(ctx context.Context, raw event.RawEvent) Result
}

var _ IDispatcher = (*Dispatcher)(nil)
