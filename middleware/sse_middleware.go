package middleware

import (
	"github.com/gin-gonic/gin"
	"storybook-generator/application/ports/outbound"
	"sync"
	"time"
)

const sseStreamKey = "sse_stream"

const DefaultHeartbeatInterval = 15 * time.Second

// SSEStream serializes every write to an event stream so the heartbeat never interleaves with an event.
type SSEStream struct {
	mu      sync.Mutex
	c       *gin.Context
	started sync.Once
	start   func()
	closed  bool
}

// Event writes a named event and flushes it. The first event commits the stream headers and starts the heartbeat.
func (s *SSEStream) Event(name string, data interface{}) {
	s.started.Do(func() {
		s.mu.Lock()
		header := s.c.Writer.Header()
		header.Set("Content-Type", "text/event-stream")
		header.Set("Cache-Control", "no-cache")
		header.Set("Connection", "keep-alive")
		header.Set("Access-Control-Allow-Origin", "*")
		s.mu.Unlock()
		if s.start != nil {
			s.start()
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.c.SSEvent(name, data)
	s.c.Writer.Flush()
}

func (s *SSEStream) ping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if _, err := s.c.Writer.WriteString(": ping\n\n"); err != nil {
		return false
	}
	s.c.Writer.Flush()
	return true
}

func (s *SSEStream) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Stream returns the stream the middleware attached to c, or a bare one when the route has no middleware.
func Stream(c *gin.Context) *SSEStream {
	if v, ok := c.Get(sseStreamKey); ok {
		if stream, ok := v.(*SSEStream); ok {
			return stream
		}
	}
	stream := &SSEStream{c: c}
	c.Set(sseStreamKey, stream)
	return stream
}

// SSEMiddleware attaches an SSEStream to the request. Once the handler emits its first event, a comment
// heartbeat runs on the worker pool until the handler returns or the client goes away.
func SSEMiddleware(workerPool outbound.TaskDispatcher, logger outbound.LoggerPort, interval time.Duration) gin.HandlerFunc {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return func(c *gin.Context) {
		stop := make(chan struct{})
		stopped := make(chan struct{})
		running := false

		stream := &SSEStream{c: c}
		stream.start = func() {
			clientGone := c.Request.Context().Done()
			err := workerPool.Submit(func() {
				defer close(stopped)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if !stream.ping() {
							return
						}
					case <-stop:
						return
					case <-clientGone:
						return
					}
				}
			})
			if err != nil {
				logger.Error(err, "failed to start sse heartbeat")
				return
			}
			running = true
		}
		c.Set(sseStreamKey, stream)

		c.Next()

		stream.close()
		close(stop)
		if running {
			<-stopped
		}
	}
}
