package web

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/shravani77747/ASD-Screening/internal/errors"
	"github.com/shravani77747/ASD-Screening/internal/frontend"
	"github.com/shravani77747/ASD-Screening/internal/report"
	"github.com/shravani77747/ASD-Screening/internal/screening"
)

const renderFailedNotice = "Report generation failed. Your result is unchanged, please try the download again."

// fail attaches err for the error handler, counting rejected transitions
func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, screening.ErrInvalidTransition) {
		s.deps.Metrics.IncrementInvalidTransition()
	}
	_ = c.Error(err)
}

// index shows the screen for the session's current step
func (s *Server) index(c *gin.Context) {
	sess, err := s.current(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	switch sess.Step {
	case screening.StepQuestionnaire:
		s.render(c, http.StatusOK, frontend.PageQuestionnaire, frontend.NewQuestionnaireView(s.deps.Catalog, sess.Responses, nil))
	case screening.StepResult:
		s.render(c, http.StatusOK, frontend.PageResult, frontend.NewResultView(*sess.Demographics, *sess.Result))
	default:
		s.render(c, http.StatusOK, frontend.PageIntake, frontend.NewIntakeView(s.deps.Catalog, sess.Demographics, s.deps.Security.MaxNameLength()))
	}
}

// intake records demographics and moves on to the questionnaire
func (s *Server) intake(c *gin.Context) {
	sess, err := s.current(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	// checked before binding so a late resubmission is a conflict, not a 400
	if sess.Step != screening.StepIntake {
		s.fail(c, fmt.Errorf("%w: cannot record demographics during %s step", screening.ErrInvalidTransition, sess.Step))
		return
	}

	var form intakeForm
	var messages []string
	var d screening.Demographics
	if err := c.ShouldBind(&form); err != nil {
		messages = bindingMessages(err, s.deps.Catalog)
	} else {
		d, messages = form.demographics(s.deps.Security, s.deps.Catalog)
	}
	if len(messages) > 0 {
		_ = c.Error(apperrors.NewValidationError("Invalid intake form", strings.Join(messages, "; ")))
		view := frontend.NewIntakeView(s.deps.Catalog, nil, s.deps.Security.MaxNameLength()).WithValues(submittedValues(c))
		view.Errors = messages
		s.render(c, http.StatusBadRequest, frontend.PageIntake, view)
		return
	}

	if err := sess.RecordDemographics(d); err != nil {
		s.fail(c, err)
		return
	}
	if err := sess.Proceed(); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.save(c, sess); err != nil {
		s.fail(c, err)
		return
	}

	s.deps.Logger.TransitionLogger(sess.ID, string(screening.StepIntake), string(sess.Step))
	c.Redirect(http.StatusSeeOther, "/")
}

// submit records answers and, once all ten are present, scores the session
func (s *Server) submit(c *gin.Context) {
	sess, err := s.current(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	var form questionnaireForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, apperrors.NewValidationError("Answers must be Yes or No", err.Error()))
		return
	}

	if err := sess.RecordResponses(form.responses()); err != nil {
		s.fail(c, err)
		return
	}

	start := time.Now()
	result, err := sess.Submit(s.deps.Evaluator, s.now())

	var incomplete *screening.IncompleteInputError
	if errors.As(err, &incomplete) {
		s.deps.Metrics.IncrementIncompleteSubmission()
		// keep what was answered so far
		if err := s.save(c, sess); err != nil {
			s.fail(c, err)
			return
		}
		_ = c.Error(apperrors.NewIncompleteInputError(incomplete))
		s.render(c, http.StatusUnprocessableEntity, frontend.PageQuestionnaire,
			frontend.NewQuestionnaireView(s.deps.Catalog, sess.Responses, incomplete.Questions))
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	s.deps.Metrics.RecordScreening(string(result.Severity))
	s.deps.Logger.ScreeningLogger(sess.ID, string(result.Severity), result.Probability, result.Label, time.Since(start))

	if err := s.save(c, sess); err != nil {
		s.fail(c, err)
		return
	}

	s.deps.Logger.TransitionLogger(sess.ID, string(screening.StepQuestionnaire), string(sess.Step))
	c.Redirect(http.StatusSeeOther, "/")
}

// report streams the PDF for a finished session. On failure the result page
// is shown again with a notice and the session is left as it was.
func (s *Server) report(c *gin.Context) {
	sess, err := s.current(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if sess.Step != screening.StepResult {
		s.fail(c, fmt.Errorf("%w: no result to report during %s step", screening.ErrInvalidTransition, sess.Step))
		return
	}

	data := report.NewData(*sess.Demographics, *sess.Result, s.deps.Catalog.Disclaimer)

	start := time.Now()
	pdf, err := s.deps.Renderer.Render(c.Request.Context(), data)
	s.deps.Logger.ReportLogger(sess.ID, len(pdf), time.Since(start), err)
	s.deps.Metrics.RecordReport(err == nil)

	if err != nil {
		var renderErr *report.RenderError
		if !errors.As(err, &renderErr) {
			err = &report.RenderError{Err: err}
		}
		_ = c.Error(err)

		view := frontend.NewResultView(*sess.Demographics, *sess.Result)
		view.Notice = renderFailedNotice
		s.render(c, http.StatusInternalServerError, frontend.PageResult, view)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": report.Filename}))
	c.Data(http.StatusOK, report.MIMEType, pdf)
}

// restart discards the session and starts a new one under a new id
func (s *Server) restart(c *gin.Context) {
	old, err := s.lookup(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	from := screening.StepIntake
	if old != nil {
		from = old.Step
		if err := s.delete(c, old.ID); err != nil {
			s.fail(c, err)
			return
		}
	}

	sess, err := s.start(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.deps.Metrics.IncrementRestart()
	s.deps.Logger.TransitionLogger(sess.ID, string(from), string(sess.Step))
	c.Redirect(http.StatusSeeOther, "/")
}
