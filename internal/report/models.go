package report

// MetricsReport is the computed summary for one CSV file. It is immutable
// after creation and serialized verbatim into the artifact store.
type MetricsReport struct {
	RowCount        int               `json:"row_count"`
	ColumnCount     int               `json:"column_count"`
	Columns         []string          `json:"columns"`
	NullCounts      map[string]int    `json:"null_counts"`
	DatatypeSummary map[string]string `json:"datatype_summary"`
}

// Detected column types. The heuristic is deliberately coarse; what matters
// is that it is deterministic for a given input.
const (
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeText    = "text"
)
