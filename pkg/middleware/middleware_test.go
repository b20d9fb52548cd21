package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvreporter/pkg/logging"
)

type capturingLogger struct {
	mu     sync.Mutex
	fields [][]interface{}
}

func (l *capturingLogger) Infow(msg string, keysAndValues ...interface{}) {}

func (l *capturingLogger) Errorw(msg string, keysAndValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fields = append(l.fields, keysAndValues)
}

func (l *capturingLogger) lastFields() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.fields) == 0 {
		return nil
	}
	kv := l.fields[len(l.fields)-1]
	out := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			out[key] = kv[i+1]
		}
	}
	return out
}

func TestRecoveryMiddlewarePanicYieldsErrorContract(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := &capturingLogger{}
	router := gin.New()
	router.Use(RecoveryMiddleware(log))
	router.GET("/boom", func(c *gin.Context) {
		panic("unexpected state")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, "internal server error", resp["message"])

	fields := log.lastFields()
	require.NotNil(t, fields)
	assert.Contains(t, fields, "stack_trace")
	assert.NotEmpty(t, fields["stack_trace"])

	err, ok := fields["error"].(error)
	require.True(t, ok)
	assert.Contains(t, err.Error(), "unexpected state")
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("generates an id and threads it through context", func(t *testing.T) {
		var seen string
		router := gin.New()
		router.Use(RequestIDMiddleware())
		router.GET("/", func(c *gin.Context) {
			seen = logging.GetRequestID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps a caller-supplied id", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestIDMiddleware())
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	})
}
