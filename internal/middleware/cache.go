package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/blogfeed/backend/internal/cache"
	"github.com/emilythestrangee/blogfeed/backend/internal/feed"
)

// bodyWriter keeps a copy of everything written to the response.
type bodyWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageKey is where a feed handler records the page number it actually
// served, after clamping out-of-range requests.
const PageKey = "feed_page"

// CachePage serves the global feed from pc, keyed by page number. Responses
// are stored under the page the handler reports in PageKey, so requests for
// out-of-range pages share the slot of the page they were served and the
// number of entries stays bounded by the number of real pages. Only
// successful responses are stored. Responses must not depend on the viewer.
func CachePage(pc *cache.PageCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := feed.ParsePage(c.Query("page"))
		ctx := c.Request.Context()

		if body, ok := pc.Get(ctx, page); ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		w := &bodyWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Header("X-Cache", "MISS")
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		if served, ok := c.Get(PageKey); ok {
			if number, ok := served.(int); ok {
				pc.Put(ctx, number, w.body.Bytes())
			}
		}
	}
}
