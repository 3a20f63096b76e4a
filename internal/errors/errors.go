package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"

	"github.com/shravani77747/ASD-Screening/internal/model"
	"github.com/shravani77747/ASD-Screening/internal/report"
	"github.com/shravani77747/ASD-Screening/internal/resilience"
	"github.com/shravani77747/ASD-Screening/internal/screening"
)

// ErrorCategory defines the type of error for proper handling
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryConflict      ErrorCategory = "conflict"
	CategoryRender        ErrorCategory = "render"
	CategoryNetwork       ErrorCategory = "network"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryRateLimit     ErrorCategory = "rate_limit"
	CategoryInternal      ErrorCategory = "internal"
	CategoryConfiguration ErrorCategory = "configuration"
)

// AppError wraps errbuilder error with a category and the HTTP status it maps to
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
	StackTrace string        `json:"-"`
}

// Error renders "[CODE] message"
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code(), e.ErrBuilder.Msg)
}

// Code is the display code for the category
func (e *AppError) Code() string {
	switch e.Category {
	case CategoryValidation:
		return "VALIDATION_ERROR"
	case CategoryConflict:
		return "INVALID_TRANSITION"
	case CategoryRender:
		return "RENDER_ERROR"
	case CategoryNetwork:
		return "NETWORK_ERROR"
	case CategoryTimeout:
		return "TIMEOUT_ERROR"
	case CategoryRateLimit:
		return "RATE_LIMIT_EXCEEDED"
	case CategoryInternal:
		return "INTERNAL_ERROR"
	case CategoryConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// Response is the client-facing body; causes and stack traces stay in the logs
func (e *AppError) Response() gin.H {
	return gin.H{
		"error":   e.Code(),
		"message": e.ErrBuilder.Msg,
		"status":  e.HTTPStatus,
	}
}

// NewAppError creates an AppError from errbuilder with additional context
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

func errorMapOf(pairs map[string]string) errbuilder.ErrorMap {
	errorMap := errbuilder.ErrorMap{}
	for key, value := range pairs {
		errorMap.Set(key, errors.New(value))
	}
	return errorMap
}

// NewValidationError reports a malformed form submission
func NewValidationError(message string, details ...interface{}) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)

	if len(details) > 0 {
		builder = builder.WithDetails(errbuilder.NewErrDetails(errorMapOf(map[string]string{
			"validation_details": fmt.Sprintf("%v", details[0]),
		})))
	}

	return NewAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewIncompleteInputError lists what must still be answered before scoring
func NewIncompleteInputError(cause *screening.IncompleteInputError) *AppError {
	pairs := map[string]string{}
	if len(cause.Questions) > 0 {
		keys := make([]string, len(cause.Questions))
		for i, q := range cause.Questions {
			keys[i] = screening.QuestionKey(q)
		}
		pairs["questions"] = strings.Join(keys, ",")
	}
	if len(cause.Fields) > 0 {
		pairs["fields"] = strings.Join(cause.Fields, ",")
	}

	msg := "Please answer every question before continuing"
	if len(cause.Questions) == 0 && len(cause.Fields) > 0 {
		msg = "Please complete every intake field before continuing"
	}

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg).
		WithCause(cause).
		WithDetails(errbuilder.NewErrDetails(errorMapOf(pairs)))

	return NewAppError(builder, CategoryValidation, http.StatusUnprocessableEntity)
}

// NewConflictError reports an action that is not allowed at the current step
func NewConflictError(cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("This action is not available at the current step").
		WithCause(cause)

	return NewAppError(builder, CategoryConflict, http.StatusConflict)
}

// NewRenderError reports a failed report generation
func NewRenderError(cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("Report generation failed").
		WithCause(cause)

	return NewAppError(builder, CategoryRender, http.StatusInternalServerError)
}

// NewNetworkError reports an unreachable backing service such as Redis
func NewNetworkError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryNetwork, http.StatusServiceUnavailable)
}

// NewTimeoutError creates a timeout error using errbuilder
func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryTimeout, http.StatusGatewayTimeout)
}

// NewRateLimitError creates a rate limit error using errbuilder
func NewRateLimitError(retryAfter time.Duration) *AppError {
	seconds := int(retryAfter.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("Rate limit exceeded").
		WithDetails(errbuilder.NewErrDetails(errorMapOf(map[string]string{"retry_after": strconv.Itoa(seconds)})))

	return NewAppError(builder, CategoryRateLimit, http.StatusTooManyRequests)
}

// NewInternalError creates an internal server error using errbuilder
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("Internal server error").
		WithDetails(errbuilder.NewErrDetails(errorMapOf(map[string]string{"internal_details": message})))

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	appErr := NewAppError(builder, CategoryInternal, http.StatusInternalServerError)

	// Capture stack trace in development/debug mode
	if gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode {
		appErr.StackTrace = captureStackTrace()
	}

	return appErr
}

// NewConfigurationError reports unusable startup configuration, such as a bad model artifact
func NewConfigurationError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("Configuration error").
		WithDetails(errbuilder.NewErrDetails(errorMapOf(map[string]string{"config_details": message})))

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// captureStackTrace captures a stack trace for debugging
func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// ErrorRenderer writes the error page for a request
type ErrorRenderer func(c *gin.Context, appErr *AppError)

// ErrorHandler logs the last error attached to the context and, unless the
// handler already wrote a response, renders it. A nil renderer writes JSON.
func ErrorHandler(render ErrorRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := ToAppError(c.Errors.Last().Err)
		LogError(c, appErr)

		if c.Writer.Written() {
			return
		}
		if render != nil {
			render(c, appErr)
			return
		}
		c.JSON(appErr.HTTPStatus, appErr.Response())
	}
}

// RecoveryHandler provides panic recovery with structured error responses
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		appErr := NewInternalError(
			fmt.Sprintf("Panic recovered: %v", err),
			fmt.Errorf("%v", err),
		)

		// Capture stack trace
		appErr.StackTrace = captureStackTrace()

		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
	})
}

// ToAppError converts any error to an AppError
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var incomplete *screening.IncompleteInputError
	if errors.As(err, &incomplete) {
		return NewIncompleteInputError(incomplete)
	}

	if errors.Is(err, screening.ErrInvalidTransition) {
		return NewConflictError(err)
	}

	var renderErr *report.RenderError
	if errors.As(err, &renderErr) {
		return NewRenderError(err)
	}

	var loadErr *model.LoadError
	if errors.As(err, &loadErr) {
		return NewConfigurationError("model artifact could not be loaded", err)
	}

	// An out-of-domain value that reached the encoder slipped past form validation
	var category *screening.InvalidCategoryError
	if errors.As(err, &category) {
		return NewInternalError("feature encoding rejected "+category.Field, err)
	}

	if errors.Is(err, context.Canceled) {
		return NewTimeoutError("Request cancelled", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("Request deadline exceeded", err)
	}

	var ebErr *errbuilder.ErrBuilder
	if errors.As(err, &ebErr) {
		return NewAppError(ebErr, CategoryInternal, http.StatusInternalServerError)
	}

	if errors.Is(err, resilience.ErrOpen) {
		return NewNetworkError("Session store unavailable", err)
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no such host") ||
		strings.Contains(errMsg, "network is unreachable") {
		return NewNetworkError("Session store unavailable", err)
	}

	// Default to internal error
	return NewInternalError("An unexpected error occurred", err)
}

// LogError logs an error with appropriate level and context
func LogError(c *gin.Context, err *AppError) {
	errorCode := err.ErrBuilder.ErrCode()
	errorMsg := err.ErrBuilder.Msg
	errorDetails := err.ErrBuilder.Details

	logEntry := slog.With(
		"error_category", err.Category,
		"error_code", errorCode,
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader("X-Request-ID"),
	)

	switch err.Category {
	case CategoryValidation, CategoryRateLimit, CategoryConflict:
		if len(errorDetails.Errors) > 0 {
			logEntry.Warn(errorMsg, "details", errorDetails.Errors)
		} else {
			logEntry.Warn(errorMsg)
		}
	case CategoryNetwork, CategoryTimeout:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Info(errorMsg, "cause", cause)
		} else {
			logEntry.Info(errorMsg)
		}
	default:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Error(errorMsg, "cause", cause)
		} else {
			logEntry.Error(errorMsg)
		}
	}

	// Log stack trace in development
	if err.StackTrace != "" && (gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode) {
		logEntry.Debug("stack_trace", "trace", err.StackTrace)
	}
}

// SafeClose safely closes a resource and logs any errors
func SafeClose(closer interface{ Close() error }, resourceName string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		slog.Warn("Failed to close resource",
			"resource", resourceName,
			"error", err)
	}
}
