package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"net/http"
	"net/http/httptest"
	"storybook-generator/application/ports/outbound"
	"strings"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) InfoWithFields(string, map[string]interface{}) {}
func (nopLogger) Error(error, string) {}
func (nopLogger) ErrorWithFields(error, string, map[string]interface{}) {}
func (nopLogger) Debug(string) {}
func (nopLogger) DebugWithFields(string, map[string]interface{}) {}
func (nopLogger) Warn(string) {}
func (nopLogger) WarnWithFields(string, map[string]interface{}) {}
func (n nopLogger) With(map[string]interface{}) outbound.LoggerPort { return n }

func newRouter(t *testing.T, handler gin.HandlerFunc) *gin.Engine {
	t.Helper()
	pool, err := ants.NewPool(4)
	if err != nil {
		t.Fatal("Failed to create worker pool:", err)
	}
	t.Cleanup(pool.Release)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/events", SSEMiddleware(pool, nopLogger{}, 5*time.Millisecond), handler)
	return router
}

func TestSSEMiddleware_HeartbeatBetweenEvents(t *testing.T) {
	router := newRouter(t, func(c *gin.Context) {
		stream := Stream(c)
		stream.Event("status", gin.H{"message": "first"})
		time.Sleep(40 * time.Millisecond)
		stream.Event("status", gin.H{"message": "second"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	body := w.Body.String()
	if !strings.Contains(w.Header().Get("Content-Type"), "text/event-stream") {
		t.Errorf("expected an event stream, got %q", w.Header().Get("Content-Type"))
	}
	first := strings.Index(body, "first")
	second := strings.Index(body, "second")
	ping := strings.Index(body, ": ping")
	if first < 0 || second < 0 {
		t.Fatalf("missing events in %q", body)
	}
	if ping < first || ping > second {
		t.Errorf("expected a heartbeat between the events, got %q", body)
	}
}

func TestSSEMiddleware_NoStreamBeforeFirstEvent(t *testing.T) {
	router := newRouter(t, func(c *gin.Context) {
		time.Sleep(20 * time.Millisecond)
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "busy"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "ping") {
		t.Errorf("heartbeat must not start without an event, got %q", w.Body.String())
	}
}
