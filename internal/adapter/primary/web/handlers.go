package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fasttrack/internal/domain"
	"fasttrack/internal/logging"
	"fasttrack/internal/usecase"
)

// selectRequest needs the methodId key; its value, even "", is opaque.
type selectRequest struct {
	MethodID *string `json:"methodId" binding:"required"`
}

type startRequest struct {
	MethodID  string     `json:"methodId"`
	StartTime *time.Time `json:"startTime"`
}

type endRequest struct {
	EndTime *time.Time `json:"endTime"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMethods(c *gin.Context) {
	c.JSON(http.StatusOK, s.usecase.Methods())
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.usecase.Snapshot())
}

func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, s.usecase.History())
}

func (s *Server) handleProgress(c *gin.Context) {
	c.JSON(http.StatusOK, s.usecase.Status(s.usecase.Now()))
}

func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	st, err := s.usecase.SelectMethod(c.Request.Context(), *req.MethodID)
	if err != nil {
		s.respondError(c, "select_method_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleStart(c *gin.Context) {
	var req startRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if !checkExplicitTime(c, "startTime", req.StartTime) {
		return
	}
	in := usecase.StartInput{MethodID: req.MethodID}
	if req.StartTime != nil {
		in.StartTime = *req.StartTime
	}
	st, err := s.usecase.StartFast(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, "start_fast_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleEnd(c *gin.Context) {
	var req endRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if !checkExplicitTime(c, "endTime", req.EndTime) {
		return
	}
	var in usecase.EndInput
	if req.EndTime != nil {
		in.EndTime = *req.EndTime
	}
	st, err := s.usecase.EndFast(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, "end_fast_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// bindOptionalJSON accepts an empty body as "no arguments".
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return false
	}
	return true
}

// checkExplicitTime rejects a supplied zero timestamp, which would otherwise
// read as "now".
func checkExplicitTime(c *gin.Context, field string, t *time.Time) bool {
	if t != nil && t.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " must not be the zero time; omit it to use now"})
		return false
	}
	return true
}

func (s *Server) respondError(c *gin.Context, logKey string, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidEvent):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrManagerNotRunning),
		errors.Is(err, domain.ErrManagerStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		code = http.StatusServiceUnavailable
	}
	logging.L().Errorw(logKey, "err", err, "status", code)
	c.JSON(code, gin.H{"error": err.Error()})
}
