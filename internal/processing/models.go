package processing

// State is the orchestrator's position in the pipeline for one invocation.
// Terminal states are Responded and Failed; every transition is logged.
type State string

const (
	StateReceived  State = "received"
	StateValidated State = "validated"
	StateSkipped   State = "skipped"
	StateComputed  State = "computed"
	StatePersisted State = "persisted"
	StateResponded State = "responded"
	StateFailed    State = "failed"
)

// Response statuses on the webhook contract.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Outcome summarizes a completed (non-failed) pipeline run.
type Outcome struct {
	Status      string
	FileName    string
	InputFile   string
	OutputFile  string
	RowCount    int
	ColumnCount int
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SkippedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status         string         `json:"status"`
	InputFile      string         `json:"input_file"`
	OutputFile     string         `json:"output_file"`
	MetricsSummary MetricsSummary `json:"metrics_summary"`
}

type MetricsSummary struct {
	RowCount    int `json:"row_count"`
	ColumnCount int `json:"column_count"`
}
