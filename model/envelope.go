package model

import "encoding/json"

// noDataText is rendered when upstream answered successfully with a
// literally empty body.
const noDataText = "No data returned from API"

// Envelope is the uniform success/failure wrapper returned for every
// dispatch. Exactly one of Payload/NoData/Failure is meaningful.
type Envelope struct {
	// Payload is the decoded upstream JSON value on success.
	Payload any
	// NoData marks a successful upstream response with an empty body.
	NoData bool
	// Failure is non-nil when the dispatch failed.
	Failure *Failure
}

// Success wraps a decoded upstream payload.
func Success(payload any) Envelope {
	return Envelope{Payload: payload}
}

// EmptySuccess wraps the "no data returned" sentinel.
func EmptySuccess() Envelope {
	return Envelope{NoData: true}
}

// Fail wraps a normalized failure.
func Fail(f *Failure) Envelope {
	return Envelope{Failure: f}
}

// OK reports whether the envelope carries a success.
func (e Envelope) OK() bool {
	return e.Failure == nil
}

// Render converts the envelope into the single text payload handed to the
// transport: pretty-printed JSON on success, an "Error: "-prefixed string
// on failure, and the no-data sentinel for an empty successful body.
func (e Envelope) Render() string {
	if e.Failure != nil {
		return "Error: " + e.Failure.Message
	}
	if e.NoData {
		return noDataText
	}
	b, err := json.MarshalIndent(e.Payload, "", "  ")
	if err != nil {
		// Payload always originates from json.Unmarshal, so this is
		// unreachable in practice.
		return "Error: " + NewMalformedResponseError().Message
	}
	return string(b)
}
