package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize          int      // Minimum first write to compress (bytes)
	CompressionLevel int      // Gzip compression level (1-9, 9 is best compression)
	ContentTypes     []string // Content types to compress
}

// DefaultCompressionConfig compresses pages, the stylesheet and JSON. PDFs
// are already compressed by the renderer.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: gzip.DefaultCompression,
		ContentTypes: []string{
			"text/html",
			"text/css",
			"application/json",
			"text/plain",
		},
	}
}

// CompressionMiddleware provides gzip compression for HTTP responses
type CompressionMiddleware struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool // Pool of gzip writers for better performance
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	level := config.CompressionLevel
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	return &CompressionMiddleware{
		config: config,
		stats:  NewCompressionStats(),
		pool: sync.Pool{
			New: func() interface{} {
				gz, _ := gzip.NewWriterLevel(io.Discard, level)
				return gz
			},
		},
	}
}

// Handler wraps the response writer; whether to compress is decided on the
// first write, once the content type is known.
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead || !clientAcceptsGzip(c.Request) {
			c.Next()
			return
		}

		gzw := &gzipResponseWriter{ResponseWriter: c.Writer, cm: cm}
		c.Writer = gzw
		c.Header("Vary", "Accept-Encoding")

		c.Next()

		gzw.finish()
	}
}

// clientAcceptsGzip checks if the client accepts gzip compression
func clientAcceptsGzip(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.TrimSpace(strings.SplitN(enc, ";", 2)[0]) == "gzip" {
			return true
		}
	}
	return false
}

// shouldCompress checks if the content type should be compressed
func (cm *CompressionMiddleware) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.HasPrefix(contentType, ct) {
			return true
		}
	}
	return false
}

// gzipResponseWriter compresses the body when the first write qualifies
type gzipResponseWriter struct {
	gin.ResponseWriter
	cm       *CompressionMiddleware
	gz       *gzip.Writer
	decided  bool
	original int64
	counter  countingWriter
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func (gzw *gzipResponseWriter) decide(first []byte) {
	gzw.decided = true

	h := gzw.Header()
	status := gzw.Status()
	if len(first) < gzw.cm.config.MinSize ||
		h.Get("Content-Encoding") != "" ||
		status == http.StatusNoContent || status == http.StatusNotModified ||
		!gzw.cm.shouldCompress(h.Get("Content-Type")) {
		return
	}

	h.Set("Content-Encoding", "gzip")
	h.Del("Content-Length")

	gzw.counter = countingWriter{w: gzw.ResponseWriter}
	gzw.gz = gzw.cm.pool.Get().(*gzip.Writer)
	gzw.gz.Reset(&gzw.counter)
}

// Write writes data through the gzip writer
func (gzw *gzipResponseWriter) Write(data []byte) (int, error) {
	if !gzw.decided {
		gzw.decide(data)
	}
	gzw.original += int64(len(data))
	if gzw.gz == nil {
		return gzw.ResponseWriter.Write(data)
	}
	return gzw.gz.Write(data)
}

func (gzw *gzipResponseWriter) WriteString(s string) (int, error) {
	return gzw.Write([]byte(s))
}

// Flush flushes the gzip writer
func (gzw *gzipResponseWriter) Flush() {
	if gzw.gz != nil {
		_ = gzw.gz.Flush()
	}
	gzw.ResponseWriter.Flush()
}

// finish closes the gzip stream and returns the writer to the pool
func (gzw *gzipResponseWriter) finish() {
	if !gzw.decided {
		return
	}
	if gzw.gz == nil {
		gzw.cm.stats.RecordRequest(gzw.original, gzw.original, false)
		return
	}
	_ = gzw.gz.Close()
	gzw.cm.pool.Put(gzw.gz)
	gzw.gz = nil
	gzw.cm.stats.RecordRequest(gzw.original, gzw.counter.n, true)
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	TotalRequests      int64
	CompressedRequests int64
	TotalBytes         int64
	CompressedBytes    int64
	mutex              sync.RWMutex
}

// NewCompressionStats creates new compression statistics
func NewCompressionStats() *CompressionStats {
	return &CompressionStats{}
}

// RecordRequest records a request's compression stats
func (cs *CompressionStats) RecordRequest(originalSize, compressedSize int64, compressed bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.TotalRequests++
	cs.TotalBytes += originalSize

	if compressed {
		cs.CompressedRequests++
		cs.CompressedBytes += compressedSize
	} else {
		cs.CompressedBytes += originalSize
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	compressionRatio := float64(1)
	if cs.TotalBytes > 0 {
		compressionRatio = float64(cs.CompressedBytes) / float64(cs.TotalBytes)
	}

	return map[string]interface{}{
		"total_responses":      cs.TotalRequests,
		"compressed_responses": cs.CompressedRequests,
		"total_bytes":          cs.TotalBytes,
		"bytes_sent":           cs.CompressedBytes,
		"compression_ratio":    compressionRatio,
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	return cm.stats.GetStats()
}
