package event

// PushEnvelope is the push-delivery wrapper posted to the webhook endpoint.
// The interesting part is the base64-encoded data field; everything else is
// delivery metadata.
type PushEnvelope struct {
	Message      *PushMessage `json:"message"`
	Subscription string       `json:"subscription,omitempty"`
}

type PushMessage struct {
	Data        string            `json:"data"`
	MessageID   string            `json:"messageId,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	PublishTime string            `json:"publishTime,omitempty"`
}

// FileChangeEvent is the decoded business event: a new object landed in a
// bucket. Both fields must be non-empty for the event to be actionable.
type FileChangeEvent struct {
	BucketName string `json:"bucket"`
	FilePath   string `json:"name"`
}

// ProcessingTarget holds the identifiers derived from a validated event.
// OutputArtifactPath is a pure function of the file name, which is what makes
// duplicate detection and idempotent writes possible.
type ProcessingTarget struct {
	FileName           string
	FileNameStem       string
	OutputArtifactPath string
}
