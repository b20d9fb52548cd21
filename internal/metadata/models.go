package metadata

import "time"

// CompletionRecord proves a file was fully processed. Identity is the file
// name: at most one record per file name exists, later writes overwrite it.
type CompletionRecord struct {
	FileName    string    `bson:"_id" json:"file_name"`
	FilePath    string    `bson:"file_path" json:"file_path"`
	ProcessedAt time.Time `bson:"processed_at" json:"processed_at"`
	RowCount    int       `bson:"row_count" json:"row_count"`
	ColumnCount int       `bson:"column_count" json:"column_count"`
}
