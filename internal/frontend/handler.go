package frontend

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// NewStaticHandler serves the embedded stylesheet under /static/. Directories are not listed.
func NewStaticHandler(assets fs.FS) gin.HandlerFunc {
	fileServer := http.StripPrefix("/static", http.FileServer(http.FS(assets)))

	return func(c *gin.Context) {
		name := strings.TrimPrefix(c.Param("filepath"), "/")
		info, err := fs.Stat(assets, name)
		if name == "" || err != nil || info.IsDir() {
			c.Status(http.StatusNotFound)
			return
		}

		c.Header("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
