package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var page = "<html><body>" + strings.Repeat("<p>screening</p>", 200) + "</body></html>"

func newRouter(cm *CompressionMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(cm.Handler())
	r.GET("/page", func(c *gin.Context) { c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page)) })
	r.GET("/small", func(c *gin.Context) { c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<p>ok</p>")) })
	r.GET("/report", func(c *gin.Context) { c.Data(http.StatusOK, "application/pdf", []byte(strings.Repeat("%PDF", 1000))) })
	r.GET("/json", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"padding": strings.Repeat("x", 2048)}) })
	return r
}

func get(r http.Handler, path, acceptEncoding string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCompression_HTML(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	w := get(newRouter(cm), "/page", "gzip, deflate")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, page, string(body))

	stats := cm.GetStats()
	assert.Equal(t, int64(1), stats["compressed_responses"])
	assert.Less(t, stats["compression_ratio"].(float64), 1.0)
}

func TestCompression_Skipped(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		acceptEncoding string
	}{
		{name: "client without gzip", path: "/page", acceptEncoding: ""},
		{name: "other encodings only", path: "/page", acceptEncoding: "br"},
		{name: "below minimum size", path: "/small", acceptEncoding: "gzip"},
		{name: "pdf report", path: "/report", acceptEncoding: "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := NewCompressionMiddleware(DefaultCompressionConfig())
			w := get(newRouter(cm), tt.path, tt.acceptEncoding)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("Content-Encoding"))
		})
	}
}

func TestCompression_JSON(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	w := get(newRouter(cm), "/json", "gzip")

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"padding"`)
}

func TestClientAcceptsGzip(t *testing.T) {
	tests := map[string]bool{
		"gzip":              true,
		"deflate, gzip;q=1": true,
		"br":                false,
		"x-gzip-ish":        false,
		"":                  false,
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", header)
		assert.Equal(t, want, clientAcceptsGzip(req), header)
	}
}
