package processing

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvreporter/internal/logger"
	"csvreporter/internal/report"
)

func setupRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func postEvent(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func envelopeBody(t *testing.T, bucket, name string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"bucket": bucket, "name": name})
	require.NoError(t, err)
	body, err := json.Marshal(map[string]interface{}{
		"message": map[string]string{
			"data":      base64.StdEncoding.EncodeToString(payload),
			"messageId": "m-1",
		},
		"subscription": "projects/demo/subscriptions/csv-events",
	})
	require.NoError(t, err)
	return string(body)
}

func TestHandleEventSuccess(t *testing.T) {
	svc, artifacts, _, _ := newPipeline(t)
	artifacts.objects["raw-data/sales.csv"] = []byte("region,amount\neast,100\nwest,250\n")
	router := setupRouter(t, svc)

	w := postEvent(t, router, envelopeBody(t, "gcs-csv-reporter", "raw-data/sales.csv"))

	require.Equal(t, http.StatusOK, w.Code)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "raw-data/sales.csv", resp.InputFile)
	assert.Equal(t, "reports/sales_metrics.json", resp.OutputFile)
	assert.Equal(t, 2, resp.MetricsSummary.RowCount)
	assert.Equal(t, 2, resp.MetricsSummary.ColumnCount)

	// The report landed in the artifact store.
	payload, ok := artifacts.get("reports/sales_metrics.json")
	require.True(t, ok)
	var stored report.MetricsReport
	require.NoError(t, json.Unmarshal(payload, &stored))
	assert.Equal(t, []string{"region", "amount"}, stored.Columns)
}

func TestHandleEventAlreadyProcessed(t *testing.T) {
	svc, artifacts, _, _ := newPipeline(t)
	artifacts.objects["reports/sales_metrics.json"] = []byte(`{}`)
	router := setupRouter(t, svc)

	w := postEvent(t, router, envelopeBody(t, "gcs-csv-reporter", "raw-data/sales.csv"))

	require.Equal(t, http.StatusOK, w.Code)

	var resp SkippedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusSkipped, resp.Status)
	assert.Equal(t, "File sales.csv already processed", resp.Message)
}

func TestHandleEventValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains string
	}{
		{
			name:     "missing message key",
			body:     `{"subscription": "projects/demo/subscriptions/csv-events"}`,
			contains: "No message found",
		},
		{
			name: "wrong bucket",
			body: func() string {
				t.Helper()
				return envelopeBody(t, "some-other-bucket", "raw-data/sales.csv")
			}(),
			contains: "expected gcs-csv-reporter",
		},
		{
			name:     "not a csv in the raw folder",
			body:     envelopeBody(t, "gcs-csv-reporter", "archive/sales.csv"),
			contains: "Invalid file path",
		},
		{
			name:     "payload missing fields",
			body:     envelopeBody(t, "", ""),
			contains: "Missing bucket or file path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newPipeline(t)
			router := setupRouter(t, svc)

			w := postEvent(t, router, tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, StatusError, resp.Status)
			assert.Contains(t, resp.Message, tt.contains)
		})
	}
}

func TestHandleEventMalformedBody(t *testing.T) {
	svc, _, _, _ := newPipeline(t)
	router := setupRouter(t, svc)

	w := postEvent(t, router, "not json at all")

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "Invalid push message format", resp.Message)
}

func TestHandleEventSourceFailure(t *testing.T) {
	svc, _, _, _ := newPipeline(t)
	// Source object never seeded, so the read fails downstream.
	router := setupRouter(t, svc)

	w := postEvent(t, router, envelopeBody(t, "gcs-csv-reporter", "raw-data/sales.csv"))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusError, resp.Status)
}

func TestHandleEventPersistFailure(t *testing.T) {
	svc, artifacts, records, _ := newPipeline(t)
	artifacts.objects["raw-data/sales.csv"] = []byte("a\n1\n")
	records.upsertErr = assert.AnError
	router := setupRouter(t, svc)

	w := postEvent(t, router, envelopeBody(t, "gcs-csv-reporter", "raw-data/sales.csv"))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "Failed to record completion metadata", resp.Message)
}
