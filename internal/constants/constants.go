package constants

import "time"

const (
	DefaultBucketName          = "gcs-csv-reporter"
	DefaultRawDataFolder       = "raw-data"
	DefaultReportsFolder       = "reports"
	DefaultProcessedCollection = "processed_files"
)

const (
	RequiredExtension = ".csv"
	ReportSuffix      = "_metrics.json"
	ReportContentType = "application/json"
)

const (
	DefaultPort = 8080
)

const (
	DefaultMongoDBName = "csvreporter"
)

const (
	ShutdownTimeout = 5 * time.Second
)
