package event

import (
	"encoding/base64"
	"encoding/json"

	pkgerrors "csvreporter/pkg/errors"
)

// Decode extracts the FileChangeEvent from a push envelope. It must survive
// an adversarial or empty envelope: every failure path returns a classified
// error, never a panic.
func Decode(envelope *PushEnvelope) (FileChangeEvent, error) {
	var evt FileChangeEvent

	if envelope == nil || envelope.Message == nil {
		return evt, pkgerrors.ErrMalformedEnvelope.
			WithDetail("message", "No message found in envelope")
	}

	payload, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		return evt, pkgerrors.ErrMalformedPayload.
			WithCause(err).
			WithDetail("message", "Message data is not valid base64")
	}

	if err := json.Unmarshal(payload, &evt); err != nil {
		return evt, pkgerrors.ErrMalformedPayload.
			WithCause(err).
			WithDetail("message", "Message payload is not valid JSON")
	}

	return evt, nil
}
