package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shravani77747/ASD-Screening/internal/security"
)

var pages = []string{PageIntake, PageQuestionnaire, PageResult, PageError}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// Templates holds one parsed template set per page, each sharing the layout.
type Templates struct {
	pages map[string]*template.Template
}

// LoadTemplates parses the embedded layout and page templates
func LoadTemplates() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		t.pages[page] = tmpl
	}
	return t, nil
}

// Execute writes page to buf
func (t *Templates) Execute(buf *bytes.Buffer, page string, data PageData) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if err := tmpl.ExecuteTemplate(buf, "layout", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// Render writes page with the request's CSP nonce. Nothing is written on error.
func (t *Templates) Render(c *gin.Context, status int, page string, data PageData) error {
	data.Nonce = security.GetNonce(c)
	if data.Nonce == "" {
		slog.Warn("CSP nonce not found in context, generating new one")
		var err error
		data.Nonce, err = security.GenerateNonce()
		if err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, page, data); err != nil {
		return err
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
	return nil
}

// StatusPage renders a bare status response when the error template itself fails
func StatusPage(c *gin.Context, status int) {
	c.Data(status, "text/plain; charset=utf-8", []byte(http.StatusText(status)))
}
