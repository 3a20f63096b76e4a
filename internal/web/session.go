package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shravani77747/ASD-Screening/internal/screening"
	"github.com/shravani77747/ASD-Screening/internal/sessions"
)

const cookieName = "asd_session"

// lookup returns the caller's stored session, or nil when the cookie is
// missing, invalid or points at an expired session.
func (s *Server) lookup(c *gin.Context) (*screening.Session, error) {
	token, err := c.Cookie(cookieName)
	if err != nil || token == "" {
		return nil, nil
	}

	id, err := s.deps.Signer.Verify(token)
	if err != nil {
		s.deps.Logger.SecurityLogger("invalid_session_token", c.ClientIP(), c.GetHeader("User-Agent"), map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}

	start := time.Now()
	sess, err := s.deps.Store.Get(c.Request.Context(), id)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, nil
	}
	s.deps.Logger.StoreLogger("get", time.Since(start), err)
	if err != nil {
		s.deps.Metrics.IncrementSessionStoreError()
		return nil, err
	}
	return sess, nil
}

// current returns the caller's session, starting a new one if needed
func (s *Server) current(c *gin.Context) (*screening.Session, error) {
	sess, err := s.lookup(c)
	if err != nil || sess != nil {
		return sess, err
	}
	return s.start(c)
}

func (s *Server) start(c *gin.Context) (*screening.Session, error) {
	sess := screening.NewSession(sessions.NewID(), s.now())
	if err := s.save(c, sess); err != nil {
		return nil, err
	}
	s.deps.Metrics.IncrementSessionStarted()
	return sess, nil
}

// save stores the session and reissues the cookie, so both expire together
func (s *Server) save(c *gin.Context, sess *screening.Session) error {
	start := time.Now()
	err := s.deps.Store.Save(c.Request.Context(), sess)
	s.deps.Logger.StoreLogger("save", time.Since(start), err)
	if err != nil {
		s.deps.Metrics.IncrementSessionStoreError()
		return err
	}

	token, err := s.deps.Signer.Issue(sess.ID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, token, int(s.deps.Signer.TTL().Seconds()), "/", "", s.opts.SecureCookie, true)
	return nil
}

func (s *Server) delete(c *gin.Context, id string) error {
	start := time.Now()
	err := s.deps.Store.Delete(c.Request.Context(), id)
	s.deps.Logger.StoreLogger("delete", time.Since(start), err)
	if err != nil {
		s.deps.Metrics.IncrementSessionStoreError()
	}
	return err
}
