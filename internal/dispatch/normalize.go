package dispatch

import (
	"bytes"
	"encoding/json"

	"github.com/darkfeedlabs/leakwatch/model"
)

// normalize converts a raw upstream result into an envelope.
//
// A literally empty body on a successful status becomes the no-data
// sentinel. A decoded JSON value is a success regardless of its shape:
// empty arrays, empty objects, and null are all data. Error statuses keep
// the original status code and raw body text.
func normalize(result model.Result) model.Envelope {
	if result.StatusCode >= 400 {
		return model.Fail(model.NewUpstreamStatusError(result.StatusCode, bytes.TrimSpace(result.Body)))
	}

	body := bytes.TrimSpace(result.Body)
	if len(body) == 0 {
		return model.EmptySuccess()
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.Fail(model.NewMalformedResponseError())
	}
	return model.Success(payload)
}
