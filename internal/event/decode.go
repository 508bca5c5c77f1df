package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-lambda-go/events"
)

// ErrMalformedEvent is returned when an event lacks a required envelope field.
var ErrMalformedEvent = errors.New("malformed event")

// Decode parses a JSON document into a RawEvent, keeping numbers as json.Number.
func Decode(data []byte) (RawEvent, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw RawEvent
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: event is not a JSON object", ErrMalformedEvent)
	}
	return raw, nil
}

// FromCloudWatchEvent rebuilds a RawEvent from the typed EventBridge envelope
// handed to a Lambda function.
func FromCloudWatchEvent(e events.CloudWatchEvent) (RawEvent, error) {
	raw := RawEvent{
		"id":          e.ID,
		"source":      e.Source,
		"detail-type": e.DetailType,
		"region":      e.Region,
		"account":     e.AccountID,
	}

	if len(e.Detail) == 0 || string(e.Detail) == "null" {
		return raw, nil
	}

	dec := json.NewDecoder(bytes.NewReader(e.Detail))
	dec.UseNumber()
	var detail any
	if err := dec.Decode(&detail); err != nil {
		return nil, fmt.Errorf("%w: detail: %v", ErrMalformedEvent, err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	raw["detail"] = detail
	return raw, nil
}

// expectEOF rejects anything after the first JSON value
func expectEOF(dec *json.Decoder) error {
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: unexpected data after JSON value", ErrMalformedEvent)
	}
	return nil
}
