package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shravani77747/ASD-Screening/internal/model"
	"github.com/shravani77747/ASD-Screening/internal/report"
	"github.com/shravani77747/ASD-Screening/internal/resilience"
	"github.com/shravani77747/ASD-Screening/internal/screening"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCategory ErrorCategory
		wantStatus   int
	}{
		{
			name:         "incomplete input",
			err:          &screening.IncompleteInputError{Questions: []int{3, 7}},
			wantCategory: CategoryValidation,
			wantStatus:   http.StatusUnprocessableEntity,
		},
		{
			name:         "invalid transition",
			err:          fmt.Errorf("submit from intake: %w", screening.ErrInvalidTransition),
			wantCategory: CategoryConflict,
			wantStatus:   http.StatusConflict,
		},
		{
			name:         "render failure",
			err:          &report.RenderError{Err: errors.New("font missing")},
			wantCategory: CategoryRender,
			wantStatus:   http.StatusInternalServerError,
		},
		{
			name:         "model load",
			err:          &model.LoadError{Path: "m.json", Err: errors.New("layout mismatch")},
			wantCategory: CategoryConfiguration,
			wantStatus:   http.StatusInternalServerError,
		},
		{
			name:         "encoder category",
			err:          &screening.InvalidCategoryError{Field: "country", Value: "Mars"},
			wantCategory: CategoryInternal,
			wantStatus:   http.StatusInternalServerError,
		},
		{
			name:         "cancelled",
			err:          context.Canceled,
			wantCategory: CategoryTimeout,
			wantStatus:   http.StatusGatewayTimeout,
		},
		{
			name:         "redis down",
			err:          errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"),
			wantCategory: CategoryNetwork,
			wantStatus:   http.StatusServiceUnavailable,
		},
		{
			name:         "session store breaker open",
			err:          fmt.Errorf("save session: %w", &resilience.CircuitBreakerError{State: resilience.StateOpen}),
			wantCategory: CategoryNetwork,
			wantStatus:   http.StatusServiceUnavailable,
		},
		{
			name:         "unknown",
			err:          errors.New("boom"),
			wantCategory: CategoryInternal,
			wantStatus:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantCategory, appErr.Category)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
		})
	}

	assert.Nil(t, ToAppError(nil))
}

func TestToAppError_PassThrough(t *testing.T) {
	original := NewValidationError("bad age")
	wrapped := fmt.Errorf("intake: %w", original)

	assert.Same(t, original, ToAppError(wrapped))
}

func TestAppError_Messages(t *testing.T) {
	assert.Equal(t, "[VALIDATION_ERROR] bad age", NewValidationError("bad age", "age=0").Error())
	assert.Equal(t, "[INVALID_TRANSITION] This action is not available at the current step",
		NewConflictError(screening.ErrInvalidTransition).Error())
	assert.Equal(t, "[RATE_LIMIT_EXCEEDED] Rate limit exceeded", NewRateLimitError(1500*time.Millisecond).Error())

	incomplete := &screening.IncompleteInputError{Questions: []int{2}}
	appErr := NewIncompleteInputError(incomplete)
	assert.ErrorIs(t, appErr, incomplete)

	body := appErr.Response()
	assert.Equal(t, "VALIDATION_ERROR", body["error"])
	assert.Equal(t, http.StatusUnprocessableEntity, body["status"])
}

func TestErrorHandler(t *testing.T) {
	t.Run("json fallback", func(t *testing.T) {
		r := gin.New()
		r.Use(ErrorHandler(nil))
		r.GET("/", func(c *gin.Context) {
			_ = c.Error(screening.ErrInvalidTransition)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")
	})

	t.Run("custom renderer", func(t *testing.T) {
		var rendered *AppError
		r := gin.New()
		r.Use(ErrorHandler(func(c *gin.Context, appErr *AppError) {
			rendered = appErr
			c.String(appErr.HTTPStatus, "page")
		}))
		r.GET("/", func(c *gin.Context) {
			_ = c.Error(&report.RenderError{Err: errors.New("x")})
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotNil(t, rendered)
		assert.Equal(t, CategoryRender, rendered.Category)
		assert.Equal(t, "page", w.Body.String())
	})

	t.Run("already written", func(t *testing.T) {
		r := gin.New()
		r.Use(ErrorHandler(nil))
		r.GET("/", func(c *gin.Context) {
			c.String(http.StatusOK, "result page with notice")
			_ = c.Error(&report.RenderError{Err: errors.New("x")})
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "result page with notice", w.Body.String())
	})
}

func TestRecoveryHandler(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "kaboom")
}

type failingCloser struct{ closed bool }

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("already closed")
}

func TestSafeClose(t *testing.T) {
	c := &failingCloser{}
	assert.NotPanics(t, func() { SafeClose(c, "redis") })
	assert.True(t, c.closed)
	assert.NotPanics(t, func() { SafeClose(nil, "nothing") })
}
