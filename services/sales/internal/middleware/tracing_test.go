package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/sales-console/pkg/logger"
)

// setupTracingRouter создаёт роутер с tracing middleware.
func setupTracingRouter(capture *struct{ traceID, sessionID string }) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewTracingMiddleware().Handle())
	r.GET("/cart/sessions/:id", func(c *gin.Context) {
		ctx := c.Request.Context()
		capture.traceID = logger.TraceIDFromContext(ctx)
		capture.sessionID = logger.SessionIDFromContext(ctx)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestTracingMiddleware(t *testing.T) {
	t.Run("trace_id генерируется при отсутствии", func(t *testing.T) {
		var capture struct{ traceID, sessionID string }
		r := setupTracingRouter(&capture)

		req := httptest.NewRequest(http.MethodGet, "/cart/sessions/sess-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, capture.traceID)
		assert.Equal(t, capture.traceID, w.Header().Get(HeaderTraceID))
	})

	t.Run("входящий trace_id сохраняется", func(t *testing.T) {
		var capture struct{ traceID, sessionID string }
		r := setupTracingRouter(&capture)

		req := httptest.NewRequest(http.MethodGet, "/cart/sessions/sess-1", nil)
		req.Header.Set(HeaderTraceID, "trace-abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "trace-abc", capture.traceID)
		assert.Equal(t, "trace-abc", w.Header().Get(HeaderTraceID))
	})

	t.Run("session_id берётся из path-параметра", func(t *testing.T) {
		var capture struct{ traceID, sessionID string }
		r := setupTracingRouter(&capture)

		req := httptest.NewRequest(http.MethodGet, "/cart/sessions/sess-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "sess-1", capture.sessionID)
	})

	t.Run("заголовок X-Session-ID имеет приоритет", func(t *testing.T) {
		var capture struct{ traceID, sessionID string }
		r := setupTracingRouter(&capture)

		req := httptest.NewRequest(http.MethodGet, "/cart/sessions/sess-1", nil)
		req.Header.Set(HeaderSessionID, "sess-override")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "sess-override", capture.sessionID)
	})
}
