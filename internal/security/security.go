package security

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxNameLength  int           `json:"max_name_length"`
	MaxBodyBytes   int64         `json:"max_body_bytes"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxNameLength:  100,
		MaxBodyBytes:   16 << 10,
		RequestTimeout: 15 * time.Second,
	}
}

// SecurityMiddleware validates and bounds inbound form submissions
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{config: config}
}

// MaxNameLength is the longest accepted applicant name, in characters
func (sm *SecurityMiddleware) MaxNameLength() int {
	return sm.config.MaxNameLength
}

var (
	ErrNameTooLong     = errors.New("name is too long")
	ErrNameInvalidUTF8 = errors.New("name contains invalid UTF-8 encoding")
	ErrNameControl     = errors.New("name contains invalid characters")
)

// ValidateName checks the free-text applicant name. Empty is allowed.
func (sm *SecurityMiddleware) ValidateName(name string) error {
	if !utf8.ValidString(name) {
		return ErrNameInvalidUTF8
	}
	if utf8.RuneCountInString(name) > sm.config.MaxNameLength {
		return fmt.Errorf("%w: maximum %d characters", ErrNameTooLong, sm.config.MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return ErrNameControl
		}
	}
	return nil
}

var (
	scriptPattern  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// SanitizeInput strips markup and collapses whitespace in free text
func (sm *SecurityMiddleware) SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = scriptPattern.ReplaceAllString(input, "")
	input = htmlTagPattern.ReplaceAllString(input, "")
	input = spacePattern.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// ValidateContentType rejects POST bodies that are not HTML form submissions
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Next()
		return
	}

	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil || (mediaType != "application/x-www-form-urlencoded" && mediaType != "multipart/form-data") {
		c.AbortWithStatus(http.StatusUnsupportedMediaType)
		return
	}

	c.Next()
}

// LimitBody caps request bodies at MaxBodyBytes
func (sm *SecurityMiddleware) LimitBody(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sm.config.MaxBodyBytes)
	}
	c.Next()
}

// RequestTimeout enforces request timeout
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}
