package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"paisatrack/internal/cache"
)

// bodyCaptureWriter tees the response body so successful responses can be
// stored in the cache after they are written.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCaptureWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}

// ResponseCache serves authenticated GET requests from the per-user cache
// and stores successful responses on miss. Only 200 responses are cached;
// errors always pass through uncached.
func ResponseCache(svc cache.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		userID := c.GetString(ContextUserIDKey)
		if userID == "" {
			c.Next()
			return
		}

		key := cache.Key(userID, c.Request.RequestURI)
		if entry, ok := svc.Get(key); ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, entry.ContentType, entry.Body)
			c.Abort()
			return
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		// An aborted handler may not have written anything yet; the error
		// middleware renders it after this point. Never cache those.
		if c.Writer.Status() == http.StatusOK && len(c.Errors) == 0 && writer.buf.Len() > 0 {
			svc.Set(key, cache.Entry{
				Body:        writer.buf.Bytes(),
				ContentType: writer.Header().Get("Content-Type"),
			})
		}
	}
}
