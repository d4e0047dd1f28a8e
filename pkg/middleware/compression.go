package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Compression levels
const (
	DefaultCompression = gzip.DefaultCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
)

// gzipWriter compresses the body once a status that allows one has been written.
type gzipWriter struct {
	gin.ResponseWriter
	writer    *gzip.Writer
	headerSet bool
	active    bool
}

func (g *gzipWriter) WriteHeader(code int) {
	if !g.headerSet {
		g.headerSet = true
		if bodyAllowed(code) {
			g.active = true
			g.Header().Set("Content-Encoding", "gzip")
			g.Header().Add("Vary", "Accept-Encoding")
			g.Header().Del("Content-Length")
		}
	}
	g.ResponseWriter.WriteHeader(code)
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	if !g.headerSet {
		g.WriteHeader(http.StatusOK)
	}
	if !g.active {
		return g.ResponseWriter.Write(data)
	}
	return g.writer.Write(data)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

var gzipWriterPools sync.Map // level -> *sync.Pool

func poolFor(level int) *sync.Pool {
	if pool, ok := gzipWriterPools.Load(level); ok {
		return pool.(*sync.Pool)
	}
	pool, _ := gzipWriterPools.LoadOrStore(level, &sync.Pool{
		New: func() interface{} {
			gz, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				gz = gzip.NewWriter(io.Discard)
			}
			return gz
		},
	})
	return pool.(*sync.Pool)
}

// Compression gzips responses for clients that accept it. Paths in skip, such as an
// endpoint that negotiates its own encoding, pass through untouched.
func Compression(level int, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	pool := poolFor(level)

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok || !acceptsGzip(c.Request) {
			c.Next()
			return
		}

		gz := pool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)

		gw := &gzipWriter{ResponseWriter: c.Writer, writer: gz}
		c.Writer = gw

		defer func() {
			if gw.active {
				_ = gz.Close()
			}
			gz.Reset(io.Discard)
			pool.Put(gz)
		}()

		c.Next()
	}
}

func acceptsGzip(req *http.Request) bool {
	if req.Method == http.MethodHead {
		return false
	}
	if strings.Contains(strings.ToLower(req.Header.Get("Connection")), "upgrade") {
		return false
	}
	return strings.Contains(req.Header.Get("Accept-Encoding"), "gzip")
}

func bodyAllowed(code int) bool {
	return code >= http.StatusOK && code != http.StatusNoContent && code != http.StatusNotModified
}
